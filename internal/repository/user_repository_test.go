package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/testutil"
)

func TestUserRepository_FindByIDsSkipsUnknown(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleTeamMember)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleTeamMember)

	users, err := repo.FindByIDs(ctx, []string{alice.ID, "ghost", bob.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleTeamMember)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, models.RoleProjectManager))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProjectManager, reloaded.Role)

	err = repo.UpdateRole(ctx, "missing", models.RoleAdmin)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserRepository_CountByRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	testutil.CreateUser(t, db, "A", "a@example.com", models.RoleAdmin)
	testutil.CreateUser(t, db, "B", "b@example.com", models.RoleTeamMember)
	testutil.CreateUser(t, db, "C", "c@example.com", models.RoleTeamMember)

	rows, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{
		{Key: "admin", Count: 1},
		{Key: "team_member", Count: 2},
	}, rows)
}
