package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/constants"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
)

var (
	ErrProjectNameRequired  = apierrors.Validation("project name is required")
	ErrTeamIDRequired       = apierrors.Validation("teamId is required")
	ErrInvalidProjectStatus = apierrors.Validation("status must be one of active, completed, on_hold")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projects   repository.ProjectRepository
	teams      repository.TeamRepository
	tasks      repository.TaskRepository
	activity   repository.ActivityRepository
	dispatcher *Dispatcher
}

func NewProjectService(projects repository.ProjectRepository, teams repository.TeamRepository, tasks repository.TaskRepository, activity repository.ActivityRepository, dispatcher *Dispatcher) *ProjectService {
	return &ProjectService{
		projects:   projects,
		teams:      teams,
		tasks:      tasks,
		activity:   activity,
		dispatcher: dispatcher,
	}
}

type CreateProjectInput struct {
	Name        string
	Description string
	TeamID      string
	Status      models.ProjectStatus
	Actor       *models.User
}

// CreateProject creates a project under an existing team and records it in
// the activity log.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if input.TeamID == "" {
		return nil, ErrTeamIDRequired
	}
	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidProjectStatus
	}

	team, err := s.teams.FindByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, apierrors.Storage("failed to find team", err)
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      input.Status,
		TeamID:      team.ID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apierrors.Storage("failed to create project", err)
	}
	project.Team = *team

	entry := &models.ActivityLog{
		Action:     constants.ActionProjectCreated,
		EntityType: models.EntityProject,
		EntityID:   project.ID,
		ProjectID:  &project.ID,
		UserID:     input.Actor.ID,
		Details:    datatypes.JSONMap{"projectName": project.Name},
	}
	s.dispatcher.Dispatch("project.create "+project.ID, Step{
		Name: "activity",
		Run: func(ctx context.Context) error {
			return s.activity.Append(ctx, entry)
		},
	})

	return project, nil
}

// ListProjectsForUser returns the projects of every team the user created or
// belongs to, with task counts.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]models.Project, map[string]int64, error) {
	teams, err := s.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, apierrors.Storage("failed to list teams", err)
	}
	if len(teams) == 0 {
		return []models.Project{}, map[string]int64{}, nil
	}

	teamIDs := make([]string, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}
	projects, err := s.projects.ListByTeamIDs(ctx, teamIDs)
	if err != nil {
		return nil, nil, apierrors.Storage("failed to list projects", err)
	}

	projectIDs := make([]string, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}
	counts, err := s.tasks.CountByProject(ctx, projectIDs)
	if err != nil {
		return nil, nil, apierrors.Storage("failed to count tasks", err)
	}
	return projects, counts, nil
}

// GetProject returns a project with its team members and tasks.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID, "Team", "Team.Members.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Storage("failed to find project", err)
	}

	tasks, err := s.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, apierrors.Storage("failed to list tasks", err)
	}
	project.Tasks = tasks
	return project, nil
}
