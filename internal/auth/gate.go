// Package auth resolves bearer tokens to users and checks role membership.
package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
)

var (
	ErrMissingToken     = apierrors.New(apierrors.ErrAuthentication, "Authorization token is required")
	ErrTokenRejected    = apierrors.New(apierrors.ErrAuthentication, "Invalid or expired token")
	ErrUnknownUser      = apierrors.New(apierrors.ErrAuthentication, "User not found")
	ErrInsufficientRole = apierrors.New(apierrors.ErrAuthorization, "Insufficient permissions")
)

// UserLookup is the part of the user store the gate needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Gate is a stateless guard evaluated before every protected operation.
type Gate struct {
	tokens *TokenManager
	users  UserLookup
}

func NewGate(tokens *TokenManager, users UserLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authorize resolves token to a user and checks the user's role against
// required. An empty required set admits any authenticated identity.
func (g *Gate) Authorize(ctx context.Context, token string, required []models.Role) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, ErrTokenRejected
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, apierrors.Storage("failed to resolve user", err)
	}

	if !HasRole(user, required) {
		return nil, ErrInsufficientRole
	}
	return user, nil
}

// HasRole reports whether user's role is in required. An empty set always matches.
func HasRole(user *models.User, required []models.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if user.Role == r {
			return true
		}
	}
	return false
}
