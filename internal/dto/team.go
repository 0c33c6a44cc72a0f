package dto

import (
	"time"

	"github.com/yukikurage/collab-api/internal/models"
)

// TeamMemberDTO represents a member in a team
type TeamMemberDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CreatedBy    *UserRefDTO     `json:"createdBy"`
	Members      []TeamMemberDTO `json:"members"`
	ProjectCount *int64          `json:"projectCount,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TeamDetailDTO adds the team's projects
type TeamDetailDTO struct {
	TeamDTO
	Projects []ProjectDTO `json:"projects"`
}

// ToTeamDTO converts a team with preloaded creator and members. Memberships
// of deleted users are omitted.
func ToTeamDTO(team models.Team) TeamDTO {
	members := make([]TeamMemberDTO, 0, len(team.Members))
	for _, m := range team.Members {
		if m.User.ID == "" {
			continue
		}
		members = append(members, TeamMemberDTO{
			ID:       m.User.ID,
			Name:     m.User.Name,
			Email:    m.User.Email,
			JoinedAt: m.JoinedAt,
		})
	}

	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedBy:   ToUserRefDTO(team.Creator),
		Members:     members,
		CreatedAt:   team.CreatedAt,
	}
}

// ToTeamListDTOs converts teams and attaches project counts
func ToTeamListDTOs(teams []models.Team, projectCounts map[string]int64) []TeamDTO {
	out := make([]TeamDTO, len(teams))
	for i, team := range teams {
		out[i] = ToTeamDTO(team)
		count := projectCounts[team.ID]
		out[i].ProjectCount = &count
	}
	return out
}

// ToTeamDetailDTO converts a team with preloaded projects
func ToTeamDetailDTO(team models.Team) TeamDetailDTO {
	projects := make([]ProjectDTO, len(team.Projects))
	for i, p := range team.Projects {
		projects[i] = ToProjectDTO(p)
	}
	return TeamDetailDTO{
		TeamDTO:  ToTeamDTO(team),
		Projects: projects,
	}
}
