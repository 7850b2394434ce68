package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusnest/internal/infra/identity"
)

const principalContextKey = "campusnest.principal"

// AuthMiddleware resolves bearer tokens against the identity directory and
// stashes the principal on the request context. Unauthenticated requests
// pass through; route handlers decide whether auth is required.
type AuthMiddleware struct {
	Directory *identity.Directory
	Logger    *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Directory == nil {
		c.Next()
		return
	}
	p, ok := m.Directory.Resolve(token)
	if !ok {
		if m.Logger != nil {
			m.Logger.Debug("unknown bearer token")
		}
		c.Next()
		return
	}
	setPrincipal(c, p)
	c.Next()
}

func setPrincipal(c *gin.Context, p identity.Principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (identity.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return identity.Principal{}, false
	}
	p, ok := val.(identity.Principal)
	return p, ok
}

func requireRole(c *gin.Context, role identity.Role) (identity.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return identity.Principal{}, false
	}
	if role != "" && p.Role != role && !p.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return identity.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
