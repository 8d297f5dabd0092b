package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/auth"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/pkg/response"
)

const claimsKey = "session_claims"

// Session validates the bearer token and stashes its claims for handlers.
func Session(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := sessions.Parse(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireStaff rejects requests from non-staff sessions.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Claims(c).Role.IsStaff() {
			response.Forbidden(c, "staff only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin sessions.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Claims(c).Role != model.RoleAdmin {
			response.Forbidden(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Claims returns the session claims set by Session. Only valid on routes
// behind it.
func Claims(c *gin.Context) *auth.SessionClaims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.SessionClaims)
	if claims == nil {
		return &auth.SessionClaims{}
	}
	return claims
}
