package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"skillswap/internal/infra/config"
	"skillswap/internal/infra/obs"
)

type Handlers struct {
	Chat           ChatHTTP
	Swap           SwapHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	if h.Chat != nil {
		chats := api.Group("/chats")
		chats.GET("", h.Chat.List)
		chats.GET("/guidelines", h.Chat.Guidelines)
		chats.GET("/:chatId", h.Chat.Get)
		chats.POST("/:chatId/messages", h.Chat.SendMessage)
		chats.PUT("/:chatId/messages/:messageId/read", h.Chat.MarkRead)
		chats.POST("/:chatId/messages/:messageId/flag", h.Chat.Flag)
		chats.DELETE("/:chatId/messages/:messageId", h.Chat.DeleteMessage)
		chats.POST("/:chatId/sessions/start", h.Chat.StartSession)
		chats.PUT("/:chatId/sessions/:sessionId/end", h.Chat.EndSession)
		chats.POST("/:chatId/guidelines/agree", h.Chat.AgreeGuidelines)
		chats.POST("/:chatId/guidelines/remind", h.Chat.RemindGuidelines)
		chats.POST("/:chatId/warnings/:warningId/acknowledge", h.Chat.AcknowledgeWarning)
	}
	if h.Admin != nil {
		admin := api.Group("/chats/admin")
		admin.GET("/flagged-messages", h.Admin.FlaggedMessages)
		admin.POST("/:chatId/users/:userId/ban", h.Admin.BanUser)
	}
	if h.Swap != nil {
		swaps := api.Group("/swaps")
		swaps.POST("", h.Swap.Request)
		swaps.GET("", h.Swap.List)
		swaps.GET("/:swapId", h.Swap.Get)
		swaps.PUT("/:swapId/accept", h.Swap.Accept)
		swaps.PUT("/:swapId/reject", h.Swap.Reject)
		swaps.PUT("/:swapId/complete", h.Swap.Complete)
		swaps.PUT("/:swapId/cancel", h.Swap.Cancel)
		swaps.POST("/:swapId/rate", h.Swap.Rate)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
