package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	chatsapp "skillswap/internal/app/handlers/chats"
	"skillswap/internal/app/queries"
	"skillswap/internal/domain/user"
)

type AdminHTTP interface {
	FlaggedMessages(c *gin.Context)
	BanUser(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type banUserRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) FlaggedMessages(c *gin.Context) {
	if _, ok := requireRole(c, user.RoleAdmin); !ok {
		return
	}
	q := chatsapp.ListFlaggedQuery{
		Page:  parseIntWithDefault(c.Query("page"), 1),
		Limit: parseIntWithDefault(c.Query("limit"), 0),
	}
	list, err := queries.Ask[chatsapp.ListFlaggedQuery, dto.FlaggedMessageList](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "list flagged messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Items, "pagination": list.Pagination})
}

func (h AdminHandler) BanUser(c *gin.Context) {
	admin, ok := requireRole(c, user.RoleAdmin)
	if !ok {
		return
	}
	var req banUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := chatsapp.BanUserCommand{
		ChatID:  c.Param("chatId"),
		UserID:  c.Param("userId"),
		AdminID: string(admin.UserID),
		Reason:  req.Reason,
	}
	res, err := commands.Dispatch[chatsapp.BanUserCommand, dto.BanResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "ban user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User banned from chat successfully", "data": res})
}

func parseIntWithDefault(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return def
	}
	return value
}

var _ AdminHTTP = AdminHandler{}
