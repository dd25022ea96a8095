package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/auth"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
)

// Context keys set by BearerAuth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
)

// TokenLookup finds a stored courier access token; revoked or expired tokens return an error
type TokenLookup interface {
	GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error)
}

var allowedRoles = map[string]bool{
	models.RoleAdmin:   true,
	models.RoleUser:    true,
	models.RoleCourier: true,
}

// BearerAuth validates the Bearer JWT of a request and attaches the caller identity
// to the gin context. Courier tokens must also still exist in tokens, so deleting a
// courier client revokes its tokens immediately.
func BearerAuth(jwtSecret []byte, tokens TokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// RFC 6750: Extract Bearer token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_request",
				"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Bearer token is empty")
			return
		}

		claims, err := auth.ParseToken(jwtSecret, tokenString)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}

		if !allowedRoles[claims.Role] {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Token carries an unknown role")
			return
		}

		if claims.Role == models.RoleCourier {
			if tokens == nil {
				respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Courier tokens are not accepted")
				return
			}
			if _, err := tokens.GetByAccess(c.Request.Context(), tokenString); err != nil {
				respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Token has been revoked")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		if len(claims.Audience) > 0 {
			c.Set(ContextClientID, claims.Audience[0])
		}
		if claims.Scope != "" {
			c.Set(ContextScopes, claims.Scope)
		}

		c.Next()
	}
}

// UserID returns the authenticated user id attached by BearerAuth, or 0
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}
