package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/collab-api/internal/auth"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/testutil"
)

func newAuthService(t *testing.T) (*AuthService, *auth.TokenManager) {
	t.Helper()
	db := testutil.NewDB(t)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(repository.NewUserRepository(db), tokens), tokens
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, tokens := newAuthService(t)
	ctx := context.Background()

	first, token, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "  Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.NotEqual(t, "secret1", first.PasswordHash)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, userID)

	second, _, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeamMember, second.Role)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input RegisterInput
		kind  error
	}{
		{"missing name", RegisterInput{Email: "x@example.com", Password: "secret"}, apierrors.ErrValidation},
		{"bad email", RegisterInput{Name: "X", Email: "not-an-email", Password: "secret"}, apierrors.ErrValidation},
		{"short password", RegisterInput{Name: "X", Email: "x@example.com", Password: "12345"}, apierrors.ErrValidation},
		{"duplicate email", RegisterInput{Name: "X", Email: "ADA@example.com", Password: "secret"}, apierrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apierrors.ErrAuthentication)

	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apierrors.ErrAuthentication)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong", "newsecret"), apierrors.ErrAuthentication)
	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "secret1", "123"), apierrors.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "ghost", "secret1", "newsecret"), apierrors.ErrNotFound)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret1", "newsecret"))

	_, _, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apierrors.ErrAuthentication)
	_, _, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}
