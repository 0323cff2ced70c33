package swaps

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	handlersupport "skillswap/internal/app/handlers/support"
	"skillswap/internal/app/outbox"
	"skillswap/internal/app/queries"
	"skillswap/internal/app/uow"
	domainswap "skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

const (
	requestSwapKey = "swaps.request"
	respondSwapKey = "swaps.respond"
	rateSwapKey    = "swaps.rate"
	listSwapsKey   = "swaps.list"
	getSwapKey     = "swaps.get"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

type Handler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
	NewID      func() string
}

type SkillInput struct {
	Name        string `validate:"required,max=100"`
	Description string
}

type RequestSwapCommand struct {
	RequesterID     string `validate:"required"`
	RecipientID     string `validate:"required,nefield=RequesterID"`
	RequestedSkill  SkillInput
	OfferedSkill    SkillInput
	Message         string
	ScheduledDate   time.Time
	IdempotencyKeyV string
}

func (c RequestSwapCommand) Key() string            { return requestSwapKey }
func (c RequestSwapCommand) Actor() user.ID         { return user.ID(c.RequesterID) }
func (c RequestSwapCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c RequestSwapCommand) ResultPrototype() any   { return &dto.Swap{} }

// RespondSwapCommand moves a swap through its lifecycle on behalf of one party.
type RespondSwapCommand struct {
	SwapID string `validate:"required"`
	UserID string `validate:"required"`
	Action Action `validate:"required,oneof=accept reject complete cancel"`
}

func (c RespondSwapCommand) Key() string    { return respondSwapKey }
func (c RespondSwapCommand) Actor() user.ID { return user.ID(c.UserID) }

type RateSwapCommand struct {
	SwapID  string `validate:"required"`
	UserID  string `validate:"required"`
	Score   int    `validate:"min=1,max=5"`
	Comment string
}

func (c RateSwapCommand) Key() string    { return rateSwapKey }
func (c RateSwapCommand) Actor() user.ID { return user.ID(c.UserID) }

type ListSwapsQuery struct {
	UserID string `validate:"required"`
	Status string
}

func (q ListSwapsQuery) Key() string { return listSwapsKey }

type GetSwapQuery struct {
	SwapID   string `validate:"required"`
	ViewerID string `validate:"required"`
}

func (q GetSwapQuery) Key() string { return getSwapKey }

func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, h *Handler) {
	commands.RegisterHandler[RequestSwapCommand, dto.Swap](cmdBus, commands.HandlerFunc[RequestSwapCommand, dto.Swap](h.Request))
	commands.RegisterHandler[RespondSwapCommand, dto.Swap](cmdBus, commands.HandlerFunc[RespondSwapCommand, dto.Swap](h.Respond))
	commands.RegisterHandler[RateSwapCommand, dto.Swap](cmdBus, commands.HandlerFunc[RateSwapCommand, dto.Swap](h.Rate))
	queries.RegisterHandler[ListSwapsQuery, dto.SwapList](queryBus, queries.HandlerFunc[ListSwapsQuery, dto.SwapList](h.List))
	queries.RegisterHandler[GetSwapQuery, dto.Swap](queryBus, queries.HandlerFunc[GetSwapQuery, dto.Swap](h.Get))
}

func (h *Handler) Request(ctx context.Context, cmd RequestSwapCommand) (dto.Swap, error) {
	var out dto.Swap
	err := handlersupport.Within(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		swap, err := domainswap.NewSwap(domainswap.CreateParams{
			ID:             domainswap.ID(h.id()),
			Requester:      user.ID(cmd.RequesterID),
			Recipient:      user.ID(cmd.RecipientID),
			RequestedSkill: domainswap.Skill{Name: cmd.RequestedSkill.Name, Description: cmd.RequestedSkill.Description},
			OfferedSkill:   domainswap.Skill{Name: cmd.OfferedSkill.Name, Description: cmd.OfferedSkill.Description},
			Message:        cmd.Message,
			ScheduledDate:  cmd.ScheduledDate,
			CreatedAt:      h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Swaps().Save(ctx, swap); err != nil {
			return err
		}
		if err := h.publish(ctx, swap); err != nil {
			return err
		}
		out = dto.MapSwap(swap)
		return nil
	})
	if err != nil {
		return dto.Swap{}, err
	}
	h.info(ctx, "swap requested", "swap_id", out.ID, "requester", out.Requester, "recipient", out.Recipient)
	return out, nil
}

func (h *Handler) Respond(ctx context.Context, cmd RespondSwapCommand) (dto.Swap, error) {
	var out dto.Swap
	err := handlersupport.Within(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		swap, err := unit.Swaps().ByID(ctx, domainswap.ID(cmd.SwapID))
		if err != nil {
			return err
		}
		actor := user.ID(cmd.UserID)
		now := h.now()
		switch cmd.Action {
		case ActionAccept:
			err = swap.Accept(actor, now)
		case ActionReject:
			err = swap.Reject(actor, now)
		case ActionComplete:
			err = swap.Complete(actor, now)
		case ActionCancel:
			err = swap.Cancel(actor, now)
		default:
			err = domainswap.ErrInvalidState
		}
		if err != nil {
			return err
		}
		if err := unit.Swaps().Save(ctx, swap); err != nil {
			return err
		}
		if err := h.publish(ctx, swap); err != nil {
			return err
		}
		out = dto.MapSwap(swap)
		return nil
	})
	if err != nil {
		return dto.Swap{}, err
	}
	h.info(ctx, "swap updated", "swap_id", out.ID, "action", cmd.Action, "status", out.Status)
	return out, nil
}

func (h *Handler) Rate(ctx context.Context, cmd RateSwapCommand) (dto.Swap, error) {
	var out dto.Swap
	err := handlersupport.Within(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		swap, err := unit.Swaps().ByID(ctx, domainswap.ID(cmd.SwapID))
		if err != nil {
			return err
		}
		if err := swap.Rate(user.ID(cmd.UserID), cmd.Score, cmd.Comment, h.now()); err != nil {
			return err
		}
		if err := unit.Swaps().Save(ctx, swap); err != nil {
			return err
		}
		out = dto.MapSwap(swap)
		return nil
	})
	return out, err
}

// List returns the user's swaps, newest first, optionally narrowed to one status.
func (h *Handler) List(ctx context.Context, q ListSwapsQuery) (dto.SwapList, error) {
	out := dto.SwapList{Items: []dto.Swap{}}
	err := handlersupport.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		swaps, err := unit.Swaps().ListByUser(ctx, user.ID(q.UserID))
		if err != nil {
			return err
		}
		for _, s := range swaps {
			if q.Status != "" && string(s.Status) != q.Status {
				continue
			}
			out.Items = append(out.Items, dto.MapSwap(s))
		}
		return nil
	})
	sort.SliceStable(out.Items, func(i, j int) bool {
		return out.Items[i].CreatedAt.After(out.Items[j].CreatedAt)
	})
	return out, err
}

func (h *Handler) Get(ctx context.Context, q GetSwapQuery) (dto.Swap, error) {
	var out dto.Swap
	err := handlersupport.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		swap, err := unit.Swaps().ByID(ctx, domainswap.ID(q.SwapID))
		if err != nil {
			return err
		}
		if !swap.IsParticipant(user.ID(q.ViewerID)) {
			return domainswap.ErrNotParticipant
		}
		out = dto.MapSwap(swap)
		return nil
	})
	return out, err
}

func (h *Handler) publish(ctx context.Context, swap *domainswap.Swap) error {
	return outbox.Publisher{Outbox: h.Outbox, Encoder: h.Encoder}.Collect(ctx, swap)
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *Handler) id() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *Handler) info(ctx context.Context, msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, msg, args...)
	}
}
