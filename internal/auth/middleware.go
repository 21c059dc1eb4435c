package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

const (
	contextKeyUserID = "user_id"
	contextKeyRole   = "user_role"
)

// UserIDFromContext returns the current user ID set by RequireAuth. Empty if not set.
func UserIDFromContext(c *gin.Context) string {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// RoleFromContext returns the current user role set by RequireAuth.
func RoleFromContext(c *gin.Context) domain.Role {
	v, ok := c.Get(contextKeyRole)
	if !ok {
		return ""
	}
	role, _ := v.(domain.Role)
	return role
}

// RequireAuth returns a middleware that verifies the bearer access token
// and sets the current user ID and role in context. 401 if missing or invalid.
func RequireAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing or invalid authorization header",
			})
			return
		}
		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "), KindAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}
		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyRole, domain.Role(claims.Role))
		c.Next()
	}
}
