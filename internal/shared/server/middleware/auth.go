package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/shared/auth"
	"visaverse-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"
	claimsKey = "adminClaims"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AdminAuth requires a valid bearer token and stores its claims in context.
// Paths listed in public pass through without a token.
func AdminAuth(verifier TokenVerifier, public ...string) gin.HandlerFunc {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := open[c.FullPath()]; ok {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" || verifier == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRoles rejects requests whose claims carry none of the roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if !claims.HasRole(roles...) {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", gin.H{"required": roles})
			return
		}
		c.Next()
	}
}

// ClaimsFromContext fetches the claims stored by AdminAuth.
func ClaimsFromContext(c *gin.Context) *auth.Claims {
	if c == nil {
		return nil
	}
	val, _ := c.Get(claimsKey)
	if claims, ok := val.(*auth.Claims); ok {
		return claims
	}
	return nil
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
