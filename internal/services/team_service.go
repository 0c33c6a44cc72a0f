package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
)

var (
	ErrTeamNotFound     = apierrors.New(apierrors.ErrNotFound, "Team not found")
	ErrTeamNameRequired = apierrors.Validation("team name is required")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teams    repository.TeamRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	log      *zap.SugaredLogger
}

// NewTeamService creates a new TeamService.
func NewTeamService(teams repository.TeamRepository, projects repository.ProjectRepository, users repository.UserRepository, log *zap.SugaredLogger) *TeamService {
	return &TeamService{
		teams:    teams,
		projects: projects,
		users:    users,
		log:      log,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
	MemberIDs   []string
	Creator     *models.User
}

// CreateTeam creates a team with its resolvable members. The creator has
// access without being listed as a member.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	ids := uniqueStrings(input.MemberIDs)
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.Storage("failed to resolve members", err)
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	memberIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			s.log.Warnw("skipping unknown team member", "user", id)
			continue
		}
		memberIDs = append(memberIDs, id)
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		CreatorID:   input.Creator.ID,
	}
	if err := s.teams.Create(ctx, team, memberIDs); err != nil {
		return nil, apierrors.Storage("failed to create team", err)
	}

	team.Creator = *input.Creator
	for i := range team.Members {
		team.Members[i].User = byID[team.Members[i].UserID]
	}
	return team, nil
}

// ListTeamsForUser returns the teams the user created or belongs to, with
// the number of projects of each.
func (s *TeamService) ListTeamsForUser(ctx context.Context, userID string) ([]models.Team, map[string]int64, error) {
	teams, err := s.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, apierrors.Storage("failed to list teams", err)
	}

	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	counts, err := s.projects.CountByTeam(ctx, ids)
	if err != nil {
		return nil, nil, apierrors.Storage("failed to count projects", err)
	}
	return teams, counts, nil
}

// GetTeam returns a team with members, creator and projects.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID, "Creator", "Members.User", "Projects")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, apierrors.Storage("failed to find team", err)
	}
	return team, nil
}
