package middleware

import (
	"net/http"
	"strings"

	"blogify/internal/auth"
	"blogify/internal/models"

	"github.com/gin-gonic/gin"
)

const ClaimsKey = "claims"

// extractToken reads the session token from the HTTP-only cookie, falling
// back to a bearer header for non-browser clients.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(auth.TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Authenticate verifies the session token before any domain operation runs.
// Missing, malformed or expired tokens all end the request with 401.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: No token provided!"})
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: Invalid Token!"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRoles rejects the request unless the caller holds every listed role.
// Must run after Authenticate.
func RequireRoles(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil || !claims.Roles.HasAll(required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: Permission denied!"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole rejects the request unless the caller holds at least one of
// the listed roles.
func RequireAnyRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil || !claims.Roles.HasAny(required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: Permission denied!"})
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the verified token claims, or nil on an
// unauthenticated request.
func CurrentClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// IsAdmin reports whether the caller holds the Admin role.
func IsAdmin(claims *auth.Claims) bool {
	return claims != nil && claims.Roles.Has(models.RoleAdmin)
}
