package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mksolution/account-service/internal/domain/entity"
	"github.com/mksolution/account-service/pkg/helpers"
	"github.com/mksolution/account-service/pkg/response"
)

// Context keys set by BearerAuth.
const (
	CtxClaimsKey    = "claims"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// BearerAuth validates the Authorization: Bearer token on protected
// routes and checks the session has not been revoked. Claims land in
// the Gin context for handlers and the role gate.
func BearerAuth(jwt *helpers.JWTManager, sessions *helpers.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := jwt.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if !sessions.Alive(c.Request.Context(), claims.Subject) {
			response.Abort(c, http.StatusUnauthorized, "session revoked")
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserEmailKey, claims.Subject)
		c.Set(CtxUserRoleKey, string(claims.Role))
		c.Next()
	}
}

// RequireRole gates a route group on the role claim; runs after
// BearerAuth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.Get(CtxClaimsKey)
		parsed, ok := claims.(*helpers.Claims)
		if !ok || helpers.RequireRole(parsed, role) != nil {
			response.Abort(c, http.StatusForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}
