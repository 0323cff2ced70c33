package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	chatsapp "skillswap/internal/app/handlers/chats"
	"skillswap/internal/app/queries"
	domainchat "skillswap/internal/domain/chat"
)

type ChatHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Guidelines(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkRead(c *gin.Context)
	Flag(c *gin.Context)
	DeleteMessage(c *gin.Context)
	StartSession(c *gin.Context)
	EndSession(c *gin.Context)
	AgreeGuidelines(c *gin.Context)
	RemindGuidelines(c *gin.Context)
	AcknowledgeWarning(c *gin.Context)
}

type ChatHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type sendMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
}

type flagMessageRequest struct {
	Reason string `json:"reason"`
}

type startSessionRequest struct {
	Topic string `json:"topic"`
}

type endSessionRequest struct {
	Notes string `json:"notes"`
}

func (h ChatHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	list, err := queries.Ask[chatsapp.ListChatsQuery, dto.ChatList](c.Request.Context(), h.Queries, chatsapp.ListChatsQuery{UserID: string(p.UserID)})
	if err != nil {
		respondError(c, h.Logger, "list chats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Items})
}

func (h ChatHandler) Get(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	q := chatsapp.GetChatQuery{ChatID: c.Param("chatId"), ViewerID: string(p.UserID)}
	detail, err := queries.Ask[chatsapp.GetChatQuery, dto.ChatDetail](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "get chat", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

func (h ChatHandler) Guidelines(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	text, err := queries.Ask[chatsapp.GetGuidelinesQuery, dto.GuidelinesText](c.Request.Context(), h.Queries, chatsapp.GetGuidelinesQuery{})
	if err != nil {
		respondError(c, h.Logger, "get guidelines", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": text})
}

// SendMessage answers 400 for filtered content even though the message is stored
// and flagged.
func (h ChatHandler) SendMessage(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := chatsapp.SendMessageCommand{
		ChatID:          c.Param("chatId"),
		SenderID:        string(p.UserID),
		Content:         req.Content,
		Type:            req.MessageType,
		FileURL:         req.FileURL,
		FileName:        req.FileName,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	res, err := commands.Dispatch[chatsapp.SendMessageCommand, dto.SendMessageResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "send message", err)
		return
	}
	if res.Rejected {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domainchat.ErrContentFiltered.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully", "data": res.Message})
}

func (h ChatHandler) MarkRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := chatsapp.MarkReadCommand{ChatID: c.Param("chatId"), MessageID: c.Param("messageId"), ReaderID: string(p.UserID)}
	h.ack(c, "mark read", func() (dto.Ack, error) {
		return commands.Dispatch[chatsapp.MarkReadCommand, dto.Ack](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ChatHandler) Flag(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req flagMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := chatsapp.FlagMessageCommand{ChatID: c.Param("chatId"), MessageID: c.Param("messageId"), UserID: string(p.UserID), Reason: req.Reason}
	h.ack(c, "flag message", func() (dto.Ack, error) {
		return commands.Dispatch[chatsapp.FlagMessageCommand, dto.Ack](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ChatHandler) DeleteMessage(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := chatsapp.DeleteMessageCommand{
		ChatID:    c.Param("chatId"),
		MessageID: c.Param("messageId"),
		UserID:    string(p.UserID),
		AsAdmin:   p.IsAdmin(),
	}
	h.ack(c, "delete message", func() (dto.Ack, error) {
		return commands.Dispatch[chatsapp.DeleteMessageCommand, dto.Ack](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ChatHandler) StartSession(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := chatsapp.StartSessionCommand{ChatID: c.Param("chatId"), UserID: string(p.UserID), Topic: req.Topic}
	session, err := commands.Dispatch[chatsapp.StartSessionCommand, dto.StudySession](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "start session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Study session started", "data": session})
}

func (h ChatHandler) EndSession(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := chatsapp.EndSessionCommand{ChatID: c.Param("chatId"), SessionID: c.Param("sessionId"), UserID: string(p.UserID), Notes: req.Notes}
	session, err := commands.Dispatch[chatsapp.EndSessionCommand, dto.StudySession](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "end session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Study session ended", "data": session})
}

func (h ChatHandler) AgreeGuidelines(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := chatsapp.AgreeGuidelinesCommand{ChatID: c.Param("chatId"), UserID: string(p.UserID)}
	h.ack(c, "agree guidelines", func() (dto.Ack, error) {
		return commands.Dispatch[chatsapp.AgreeGuidelinesCommand, dto.Ack](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ChatHandler) RemindGuidelines(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := chatsapp.RemindGuidelinesCommand{ChatID: c.Param("chatId"), UserID: string(p.UserID)}
	h.ack(c, "remind guidelines", func() (dto.Ack, error) {
		return commands.Dispatch[chatsapp.RemindGuidelinesCommand, dto.Ack](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ChatHandler) AcknowledgeWarning(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := chatsapp.AcknowledgeWarningCommand{ChatID: c.Param("chatId"), WarningID: c.Param("warningId"), UserID: string(p.UserID)}
	warning, err := commands.Dispatch[chatsapp.AcknowledgeWarningCommand, dto.Warning](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "acknowledge warning", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": warning})
}

func (h ChatHandler) ack(c *gin.Context, action string, run func() (dto.Ack, error)) {
	res, err := run()
	if err != nil {
		respondError(c, h.Logger, action, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message})
}

var _ ChatHTTP = ChatHandler{}
