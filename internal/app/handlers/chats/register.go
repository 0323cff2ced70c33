package chats

import (
	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	"skillswap/internal/app/queries"
	"skillswap/internal/app/uow"
)

type Options struct {
	Base
	UoWFactory       uow.UoWFactory
	MaxContentLength int
	FlaggedPageLimit int
}

// Register wires every chat use case into the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, opts Options) {
	base := opts.Base
	commands.RegisterHandler[SendMessageCommand, dto.SendMessageResult](cmdBus, &SendMessageHandler{Base: base, MaxContentLength: opts.MaxContentLength})
	commands.RegisterHandler[MarkReadCommand, dto.Ack](cmdBus, &MarkReadHandler{Base: base})
	commands.RegisterHandler[FlagMessageCommand, dto.Ack](cmdBus, &FlagMessageHandler{Base: base})
	commands.RegisterHandler[DeleteMessageCommand, dto.Ack](cmdBus, &DeleteMessageHandler{Base: base})
	commands.RegisterHandler[StartSessionCommand, dto.StudySession](cmdBus, &StartSessionHandler{Base: base})
	commands.RegisterHandler[EndSessionCommand, dto.StudySession](cmdBus, &EndSessionHandler{Base: base})
	commands.RegisterHandler[AgreeGuidelinesCommand, dto.Ack](cmdBus, &AgreeGuidelinesHandler{Base: base})
	commands.RegisterHandler[RemindGuidelinesCommand, dto.Ack](cmdBus, &RemindGuidelinesHandler{Base: base})
	commands.RegisterHandler[AcknowledgeWarningCommand, dto.Warning](cmdBus, &AcknowledgeWarningHandler{Base: base})
	commands.RegisterHandler[BanUserCommand, dto.BanResult](cmdBus, &BanUserHandler{Base: base})
	commands.RegisterHandler[OpenChatForSwapCommand, OpenChatResult](cmdBus, &OpenChatForSwapHandler{Base: base})

	queries.RegisterHandler[ListChatsQuery, dto.ChatList](queryBus, &ListChatsHandler{UoWFactory: opts.UoWFactory})
	queries.RegisterHandler[GetChatQuery, dto.ChatDetail](queryBus, &GetChatHandler{UoWFactory: opts.UoWFactory})
	queries.RegisterHandler[GetGuidelinesQuery, dto.GuidelinesText](queryBus, GetGuidelinesHandler{})
	queries.RegisterHandler[ListFlaggedQuery, dto.FlaggedMessageList](queryBus, &ListFlaggedHandler{UoWFactory: opts.UoWFactory, DefaultLimit: opts.FlaggedPageLimit})
}
