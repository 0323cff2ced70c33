package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"skillswap/internal/app/middleware"
	"skillswap/internal/domain/user"
	"skillswap/internal/infra/security"
)

const principalContextKey = "skillswap.principal"

type TokenVerifier interface {
	Verify(token string) (security.Principal, error)
}

// AuthMiddleware resolves the bearer token into a principal. Requests without a
// valid token continue anonymously and are rejected by requireRole.
type AuthMiddleware struct {
	Verifier TokenVerifier
	Bans     middleware.BanChecker
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Verifier == nil {
		c.Next()
		return
	}
	p, err := m.Verifier.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	if m.Bans != nil {
		banned, err := m.Bans.IsBanned(c.Request.Context(), p.UserID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("ban lookup failed", "user_id", p.UserID, "error", err)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			return
		}
	}
	c.Set(principalContextKey, p)
	c.Set("user_id", string(p.UserID))
	c.Next()
}

func currentPrincipal(c *gin.Context) (security.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return security.Principal{}, false
	}
	p, ok := val.(security.Principal)
	return p, ok
}

// requireRole answers 401/403 and reports false when the caller lacks role.
// An empty role only requires authentication.
func requireRole(c *gin.Context, role user.Role) (security.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return security.Principal{}, false
	}
	if role != "" && p.Role != role {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return security.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
