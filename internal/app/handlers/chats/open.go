package chats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/outbox"
	domainchat "skillswap/internal/domain/chat"
	domainswap "skillswap/internal/domain/swap"
)

const openChatKey = "chats.open_for_swap"

type OpenChatForSwapCommand struct {
	SwapID string `validate:"required"`
}

func (c OpenChatForSwapCommand) Key() string { return openChatKey }

type OpenChatResult struct {
	ChatID  string `json:"chat_id"`
	Created bool   `json:"created"`
}

type OpenChatForSwapHandler struct {
	Base
}

// Handle creates the chat of an accepted swap. A swap already holding a chat returns
// that chat unchanged.
func (h *OpenChatForSwapHandler) Handle(ctx context.Context, cmd OpenChatForSwapCommand) (OpenChatResult, error) {
	unit, err := unitFrom(ctx)
	if err != nil {
		return OpenChatResult{}, err
	}
	swapID := domainswap.ID(cmd.SwapID)
	existing, err := unit.Chats().BySwapID(ctx, swapID)
	if err == nil {
		return OpenChatResult{ChatID: string(existing.ID)}, nil
	}
	if !errors.Is(err, domainchat.ErrNotFound) {
		return OpenChatResult{}, err
	}
	swap, err := unit.Swaps().ByID(ctx, swapID)
	if err != nil {
		return OpenChatResult{}, err
	}
	if swap.Status != domainswap.StatusAccepted {
		return OpenChatResult{}, domainswap.ErrInvalidState
	}
	chat, err := domainchat.Open(domainchat.OpenParams{
		ID:           domainchat.ID(h.id()),
		SwapID:       swap.ID,
		Participants: swap.Participants(),
		Now:          h.now(),
	})
	if err != nil {
		return OpenChatResult{}, err
	}
	if err := unit.Chats().Save(ctx, chat); err != nil {
		return OpenChatResult{}, err
	}
	if err := h.publish(ctx, chat); err != nil {
		return OpenChatResult{}, err
	}
	h.info(ctx, "chat opened", "chat_id", chat.ID, "swap_id", swap.ID)
	return OpenChatResult{ChatID: string(chat.ID), Created: true}, nil
}

// OpenOnSwapAccepted returns the subscriber that opens a chat whenever a swap is
// accepted.
func OpenOnSwapAccepted(bus commands.Bus) outbox.Subscriber {
	return func(ctx context.Context, rec outbox.EventRecord) error {
		var ev domainswap.Accepted
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return fmt.Errorf("chats: decode %s: %w", rec.Name, err)
		}
		if ev.SwapID == "" {
			ev.SwapID = domainswap.ID(rec.Aggregate)
		}
		_, err := commands.Dispatch[OpenChatForSwapCommand, OpenChatResult](ctx, bus, OpenChatForSwapCommand{SwapID: string(ev.SwapID)})
		return err
	}
}
