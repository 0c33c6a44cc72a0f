package dto

import (
	"time"

	"github.com/yukikurage/collab-api/internal/models"
)

// TeamRefDTO is the minimal team shape embedded in projects
type TeamRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	TeamID      string               `json:"teamId"`
	Team        *TeamRefDTO          `json:"team,omitempty"`
	TaskCount   *int64               `json:"taskCount,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ProjectDetailDTO represents a project with its team members and tasks
type ProjectDetailDTO struct {
	ProjectDTO
	Team  *TeamDTO  `json:"team,omitempty"`
	Tasks []TaskDTO `json:"tasks"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		TeamID:      project.TeamID,
		CreatedAt:   project.CreatedAt,
	}

	// Include team if preloaded
	if project.Team.ID != "" {
		dto.Team = &TeamRefDTO{ID: project.Team.ID, Name: project.Team.Name}
	}

	return dto
}

// ToProjectListDTOs converts projects and attaches task counts
func ToProjectListDTOs(projects []models.Project, taskCounts map[string]int64) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
		count := taskCounts[p.ID]
		out[i].TaskCount = &count
	}
	return out
}

// ToProjectDetailDTO converts a project with preloaded team members and tasks
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	detail := ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Tasks:      ToTaskDTOs(project.Tasks),
	}
	if project.Team.ID != "" {
		team := ToTeamDTO(project.Team)
		detail.Team = &team
	}
	return detail
}
