package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	swapsapp "skillswap/internal/app/handlers/swaps"
	"skillswap/internal/app/queries"
)

type SwapHTTP interface {
	Request(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Complete(c *gin.Context)
	Cancel(c *gin.Context)
	Rate(c *gin.Context)
}

type SwapHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type skillRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type requestSwapRequest struct {
	RecipientID    string       `json:"recipient_id"`
	RequestedSkill skillRequest `json:"requested_skill"`
	OfferedSkill   skillRequest `json:"offered_skill"`
	Message        string       `json:"message"`
	ScheduledDate  time.Time    `json:"scheduled_date"`
}

type rateSwapRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

func (h SwapHandler) Request(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req requestSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := swapsapp.RequestSwapCommand{
		RequesterID:     string(p.UserID),
		RecipientID:     req.RecipientID,
		RequestedSkill:  swapsapp.SkillInput{Name: req.RequestedSkill.Name, Description: req.RequestedSkill.Description},
		OfferedSkill:    swapsapp.SkillInput{Name: req.OfferedSkill.Name, Description: req.OfferedSkill.Description},
		Message:         req.Message,
		ScheduledDate:   req.ScheduledDate,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	swap, err := commands.Dispatch[swapsapp.RequestSwapCommand, dto.Swap](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "request swap", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": swap})
}

func (h SwapHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	q := swapsapp.ListSwapsQuery{UserID: string(p.UserID), Status: c.Query("status")}
	list, err := queries.Ask[swapsapp.ListSwapsQuery, dto.SwapList](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "list swaps", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list.Items})
}

func (h SwapHandler) Get(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	q := swapsapp.GetSwapQuery{SwapID: c.Param("swapId"), ViewerID: string(p.UserID)}
	swap, err := queries.Ask[swapsapp.GetSwapQuery, dto.Swap](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "get swap", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": swap})
}

func (h SwapHandler) Accept(c *gin.Context)   { h.respond(c, swapsapp.ActionAccept) }
func (h SwapHandler) Reject(c *gin.Context)   { h.respond(c, swapsapp.ActionReject) }
func (h SwapHandler) Complete(c *gin.Context) { h.respond(c, swapsapp.ActionComplete) }
func (h SwapHandler) Cancel(c *gin.Context)   { h.respond(c, swapsapp.ActionCancel) }

func (h SwapHandler) respond(c *gin.Context, action swapsapp.Action) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := swapsapp.RespondSwapCommand{SwapID: c.Param("swapId"), UserID: string(p.UserID), Action: action}
	swap, err := commands.Dispatch[swapsapp.RespondSwapCommand, dto.Swap](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, string(action)+" swap", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": swap})
}

func (h SwapHandler) Rate(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req rateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cmd := swapsapp.RateSwapCommand{SwapID: c.Param("swapId"), UserID: string(p.UserID), Score: req.Score, Comment: req.Comment}
	swap, err := commands.Dispatch[swapsapp.RateSwapCommand, dto.Swap](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "rate swap", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": swap})
}

var _ SwapHTTP = SwapHandler{}
