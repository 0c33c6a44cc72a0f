package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/collab-api/internal/auth"
	"github.com/yukikurage/collab-api/internal/constants"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
)

// RequireAuth resolves the bearer token to a user and checks its role
// against roles. With no roles any authenticated user passes.
func RequireAuth(gate *auth.Gate, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := gate.Authorize(c.Request.Context(), ExtractToken(c), roles)
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireRole checks the role of a user already attached by RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Respond(c, auth.ErrMissingToken)
			c.Abort()
			return
		}
		if !auth.HasRole(user, roles) {
			apierrors.Respond(c, auth.ErrInsufficientRole)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ExtractToken reads the Authorization header, falling back to the token
// query parameter used by websocket clients.
func ExtractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > len(constants.BearerPrefix) && strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
			return strings.TrimSpace(header[len(constants.BearerPrefix):])
		}
		return ""
	}
	return c.Query(constants.TokenQueryParam)
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
