package middleware

import (
	"net/http"
	"strings"

	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie is the HttpOnly cookie holding the session JWT.
	TokenCookie = "token"

	claimsKey = "claims"
)

// TokenValidator is what the auth middleware needs from the token service.
type TokenValidator interface {
	Validate(token string) (*services.Claims, error)
}

// tokenFromRequest reads the JWT from the cookie, then the Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		claims, err := tokens.Validate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin is RequireAuth plus the admin role.
func RequireAdmin(tokens TokenValidator) gin.HandlerFunc {
	auth := RequireAuth(tokens)
	return func(c *gin.Context) {
		auth(c)
		if c.IsAborted() {
			return
		}
		if claims := ClaimsFrom(c); claims == nil || !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		}
	}
}

// ClaimsFrom returns the claims set by RequireAuth, or nil.
func ClaimsFrom(c *gin.Context) *services.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}

// OptionalAuth sets claims when a valid token is present and never rejects.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFromRequest(c); raw != "" {
			if claims, err := tokens.Validate(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}
