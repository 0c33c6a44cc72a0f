// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/collab-api/internal/database"
	"github.com/yukikurage/collab-api/internal/models"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends. A single connection keeps every goroutine on the same database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zap.NewNop().Sugar()))
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTeam inserts a team created by creatorID with the given members.
func CreateTeam(t *testing.T, db *gorm.DB, name, creatorID string, memberIDs ...string) *models.Team {
	t.Helper()

	team := &models.Team{Name: name, CreatorID: creatorID}
	require.NoError(t, db.Create(team).Error)
	for _, id := range memberIDs {
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: id}).Error)
	}
	return team
}

// CreateProject inserts an active project owned by teamID.
func CreateProject(t *testing.T, db *gorm.DB, id, name, teamID string) *models.Project {
	t.Helper()

	project := &models.Project{ID: id, Name: name, TeamID: teamID}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task in projectID with the given status and assignees.
func CreateTask(t *testing.T, db *gorm.DB, id, title, projectID string, status models.TaskStatus, assigneeIDs ...string) *models.Task {
	t.Helper()

	task := &models.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  models.TaskPriorityMedium,
		ProjectID: projectID,
	}
	require.NoError(t, db.Create(task).Error)
	for _, uid := range assigneeIDs {
		require.NoError(t, db.Create(&models.TaskAssignment{TaskID: task.ID, UserID: uid}).Error)
	}
	return task
}
