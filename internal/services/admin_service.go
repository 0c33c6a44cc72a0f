package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/dto"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/utils"
)

var ErrInvalidRole = apierrors.Validation("role must be one of team_member, project_manager, admin")

// AdminService backs the administrative surface. Deletes are hard and do
// not cascade: memberships, assignments and child records keep pointing at
// the removed row.
type AdminService struct {
	users    repository.UserRepository
	teams    repository.TeamRepository
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

func NewAdminService(users repository.UserRepository, teams repository.TeamRepository, projects repository.ProjectRepository, tasks repository.TaskRepository) *AdminService {
	return &AdminService{
		users:    users,
		teams:    teams,
		projects: projects,
		tasks:    tasks,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, apierrors.Storage("failed to list users", err)
	}
	return users, total, nil
}

func (s *AdminService) ListTeams(ctx context.Context, params utils.PaginationParams) ([]models.Team, int64, error) {
	teams, total, err := s.teams.List(ctx, params)
	if err != nil {
		return nil, 0, apierrors.Storage("failed to list teams", err)
	}
	return teams, total, nil
}

func (s *AdminService) ListProjects(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projects.List(ctx, params)
	if err != nil {
		return nil, 0, apierrors.Storage("failed to list projects", err)
	}
	return projects, total, nil
}

func (s *AdminService) ListTasks(ctx context.Context, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.tasks.List(ctx, params)
	if err != nil {
		return nil, 0, apierrors.Storage("failed to list tasks", err)
	}
	return tasks, total, nil
}

// ChangeRole sets a user's role.
func (s *AdminService) ChangeRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Storage("failed to update role", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Storage("failed to find user", err)
	}
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return deleteOr(s.users.Delete(ctx, id), ErrUserNotFound, "failed to delete user")
}

func (s *AdminService) DeleteTeam(ctx context.Context, id string) error {
	return deleteOr(s.teams.Delete(ctx, id), ErrTeamNotFound, "failed to delete team")
}

func (s *AdminService) DeleteProject(ctx context.Context, id string) error {
	return deleteOr(s.projects.Delete(ctx, id), ErrProjectNotFound, "failed to delete project")
}

func (s *AdminService) DeleteTask(ctx context.Context, id string) error {
	return deleteOr(s.tasks.Delete(ctx, id), ErrTaskNotFound, "failed to delete task")
}

// Analytics returns entity totals and the status and role breakdowns.
func (s *AdminService) Analytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	var (
		resp dto.AnalyticsResponse
		err  error
	)

	if resp.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, apierrors.Storage("failed to count users", err)
	}
	if resp.TotalTeams, err = s.teams.Count(ctx); err != nil {
		return nil, apierrors.Storage("failed to count teams", err)
	}
	if resp.TotalProjects, err = s.projects.Count(ctx); err != nil {
		return nil, apierrors.Storage("failed to count projects", err)
	}
	if resp.TotalTasks, err = s.tasks.Count(ctx); err != nil {
		return nil, apierrors.Storage("failed to count tasks", err)
	}
	if resp.TasksByStatus, err = s.tasks.CountByStatus(ctx); err != nil {
		return nil, apierrors.Storage("failed to group tasks", err)
	}
	if resp.UsersByRole, err = s.users.CountByRole(ctx); err != nil {
		return nil, apierrors.Storage("failed to group users", err)
	}
	return &resp, nil
}

func deleteOr(err error, notFound error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apierrors.Storage(message, err)
}
