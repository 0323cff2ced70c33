package chats

import (
	"context"

	"skillswap/internal/app/dto"
	handlersupport "skillswap/internal/app/handlers/support"
	"skillswap/internal/app/uow"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
)

const (
	listChatsKey   = "chats.list"
	getChatKey     = "chats.get"
	listFlaggedKey = "chats.admin.flagged"
)

// DefaultFlaggedPageLimit is the page size used when a request names none.
const DefaultFlaggedPageLimit = 10

type ListChatsQuery struct {
	UserID string `validate:"required"`
}

func (q ListChatsQuery) Key() string { return listChatsKey }

type ListChatsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle lists the active chats of the user, most recent activity first.
func (h *ListChatsHandler) Handle(ctx context.Context, q ListChatsQuery) (dto.ChatList, error) {
	viewer := user.ID(q.UserID)
	out := dto.ChatList{Items: []dto.ChatSummary{}}
	err := handlersupport.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		chats, err := unit.Chats().ListByParticipant(ctx, viewer)
		if err != nil {
			return err
		}
		for _, c := range chats {
			out.Items = append(out.Items, dto.MapChatSummary(c, viewer))
		}
		return nil
	})
	return out, err
}

type GetChatQuery struct {
	ChatID   string `validate:"required"`
	ViewerID string `validate:"required"`
}

func (q GetChatQuery) Key() string { return getChatKey }

type GetChatHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetChatHandler) Handle(ctx context.Context, q GetChatQuery) (dto.ChatDetail, error) {
	var out dto.ChatDetail
	err := handlersupport.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		chat, err := loadForParticipant(ctx, unit, q.ChatID, q.ViewerID)
		if err != nil {
			return err
		}
		out = dto.MapChatDetail(chat, user.ID(q.ViewerID), false)
		return nil
	})
	return out, err
}

type ListFlaggedQuery struct {
	Page  int `validate:"gte=0"`
	Limit int `validate:"gte=0,lte=100"`
}

func (q ListFlaggedQuery) Key() string { return listFlaggedKey }

type ListFlaggedHandler struct {
	UoWFactory   uow.UoWFactory
	DefaultLimit int
}

// Handle pages over chats with flagged messages and flattens their flagged entries.
// Totals count chats, not messages.
func (h *ListFlaggedHandler) Handle(ctx context.Context, q ListFlaggedQuery) (dto.FlaggedMessageList, error) {
	limit := h.DefaultLimit
	if limit <= 0 {
		limit = DefaultFlaggedPageLimit
	}
	page := domainchat.Page{Number: q.Page, Limit: q.Limit}.Normalized(limit)
	var out dto.FlaggedMessageList
	err := handlersupport.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		chats, total, err := unit.Chats().ListFlagged(ctx, page)
		if err != nil {
			return err
		}
		out = dto.FlaggedMessageList{
			Items:      dto.MapFlaggedMessages(chats),
			Pagination: dto.NewPagination(page.Number, page.Limit, total),
		}
		return nil
	})
	return out, err
}
