package repository

import (
	"context"

	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/utils"
)

// GroupCount is one row of a simple group-by count.
type GroupCount struct {
	Key   string `gorm:"column:group_key" json:"key"`
	Count int64  `gorm:"column:count" json:"count"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// ListAll retrieves every user ordered by name
	ListAll(ctx context.Context) ([]models.User, error)

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, id string, role models.Role) error

	// UpdatePasswordHash replaces a user's password hash
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// Delete hard deletes a user. References to the user are left in place.
	Delete(ctx context.Context, id string) error

	// Count counts all users
	Count(ctx context.Context) (int64, error)

	// CountByRole groups users by role
	CountByRole(ctx context.Context) ([]GroupCount, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team and its memberships in one transaction
	Create(ctx context.Context, team *models.Team, memberIDs []string) error

	// FindByID finds a team with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Team, error)

	// ListForUser lists teams the user created or is a member of
	ListForUser(ctx context.Context, userID string) ([]models.Team, error)

	// List retrieves all teams with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error)

	// Delete hard deletes a team and its membership rows
	Delete(ctx context.Context, id string) error

	// Count counts all teams
	Count(ctx context.Context) (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Project, error)

	// ListByTeamIDs lists projects owned by any of the given teams
	ListByTeamIDs(ctx context.Context, teamIDs []string) ([]models.Project, error)

	// List retrieves all projects with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error)

	// CountByTeam returns the number of projects per team id
	CountByTeam(ctx context.Context, teamIDs []string) (map[string]int64, error)

	// Delete hard deletes a project
	Delete(ctx context.Context, id string) error

	// Count counts all projects
	Count(ctx context.Context) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task and its assignments in one transaction
	Create(ctx context.Context, task *models.Task, assigneeIDs []string) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// UpdateStatus persists a new status. Last write wins.
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error

	// ListByAssignee lists tasks the user is assigned to
	ListByAssignee(ctx context.Context, userID string) ([]models.Task, error)

	// ListByProject lists the tasks of a project
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)

	// List retrieves all tasks with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.Task, int64, error)

	// CountByProject returns the number of tasks per project id
	CountByProject(ctx context.Context, projectIDs []string) (map[string]int64, error)

	// Delete hard deletes a task and its assignment rows
	Delete(ctx context.Context, id string) error

	// Count counts all tasks
	Count(ctx context.Context) (int64, error)

	// CountByStatus groups tasks by status
	CountByStatus(ctx context.Context) ([]GroupCount, error)
}

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository interface {
	// Append stores a new activity entry
	Append(ctx context.Context, entry *models.ActivityLog) error

	// ListRecent lists the newest entries matching the filter
	ListRecent(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, error)
}

// ActivityFilter holds filtering options for listing activity
type ActivityFilter struct {
	EntityType *models.EntityType
	ProjectID  *string
	Limit      int
}
