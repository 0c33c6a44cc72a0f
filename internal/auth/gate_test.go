package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/testutil"
)

func TestGate_Authorize(t *testing.T) {
	db := testutil.NewDB(t)
	tokens, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	gate := NewGate(tokens, repository.NewUserRepository(db))
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)
	pm := testutil.CreateUser(t, db, "PM", "pm@example.com", models.RoleProjectManager)
	member := testutil.CreateUser(t, db, "Member", "member@example.com", models.RoleTeamMember)

	tokenFor := func(u *models.User) string {
		tok, err := tokens.Issue(u.ID, string(u.Role))
		require.NoError(t, err)
		return tok
	}

	creators := []models.Role{models.RoleAdmin, models.RoleProjectManager}

	t.Run("any authenticated identity", func(t *testing.T) {
		for _, u := range []*models.User{admin, pm, member} {
			got, err := gate.Authorize(ctx, tokenFor(u), nil)
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
		}
	})

	t.Run("role in capability set", func(t *testing.T) {
		got, err := gate.Authorize(ctx, tokenFor(pm), creators)
		require.NoError(t, err)
		assert.Equal(t, pm.ID, got.ID)
	})

	t.Run("roles outside admin and project_manager cannot create", func(t *testing.T) {
		_, err := gate.Authorize(ctx, tokenFor(member), creators)
		assert.ErrorIs(t, err, apierrors.ErrAuthorization)
		assert.NotErrorIs(t, err, apierrors.ErrAuthentication)
	})

	t.Run("admin only", func(t *testing.T) {
		_, err := gate.Authorize(ctx, tokenFor(pm), []models.Role{models.RoleAdmin})
		assert.ErrorIs(t, err, apierrors.ErrAuthorization)
	})

	t.Run("missing and malformed tokens", func(t *testing.T) {
		_, err := gate.Authorize(ctx, "", nil)
		assert.ErrorIs(t, err, apierrors.ErrAuthentication)

		_, err = gate.Authorize(ctx, "garbage", nil)
		assert.ErrorIs(t, err, apierrors.ErrAuthentication)
	})

	t.Run("user deleted after issuing", func(t *testing.T) {
		ghost := testutil.CreateUser(t, db, "Ghost", "ghost@example.com", models.RoleAdmin)
		tok := tokenFor(ghost)
		require.NoError(t, db.Delete(ghost).Error)

		_, err := gate.Authorize(ctx, tok, nil)
		assert.ErrorIs(t, err, apierrors.ErrAuthentication)
	})

	t.Run("role read from store, not token", func(t *testing.T) {
		demoted := testutil.CreateUser(t, db, "Demoted", "demoted@example.com", models.RoleAdmin)
		tok := tokenFor(demoted)
		require.NoError(t, db.Model(demoted).Update("role", models.RoleTeamMember).Error)

		_, err := gate.Authorize(ctx, tok, []models.Role{models.RoleAdmin})
		assert.ErrorIs(t, err, apierrors.ErrAuthorization)
	})
}
