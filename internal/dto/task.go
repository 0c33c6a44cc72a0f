package dto

import (
	"time"

	"github.com/yukikurage/collab-api/internal/models"
)

// ProjectRefDTO is the minimal project shape embedded in tasks
type ProjectRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses and task-created events
type TaskDTO struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	DueDate       *time.Time          `json:"dueDate"`
	ProjectID     string              `json:"projectId"`
	Project       *ProjectRefDTO      `json:"project,omitempty"`
	AssignedUsers []UserRefDTO        `json:"assignedUsers"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// TaskCreatedEvent is the payload of a task-created event
type TaskCreatedEvent struct {
	Task TaskDTO `json:"task"`
}

// TaskUpdatedEvent is the payload of a task-updated event
type TaskUpdatedEvent struct {
	TaskID    string            `json:"taskId"`
	Status    models.TaskStatus `json:"status"`
	UpdatedBy string            `json:"updatedBy"`
}

// ToTaskDTO converts a Task model to TaskDTO. Assignees whose user record
// is gone are omitted.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include project if preloaded
	if task.Project.ID != "" {
		dto.Project = &ProjectRefDTO{ID: task.Project.ID, Name: task.Project.Name}
	}

	assignees := task.AssignedUsers()
	dto.AssignedUsers = make([]UserRefDTO, len(assignees))
	for i, u := range assignees {
		dto.AssignedUsers[i] = UserRefDTO{ID: u.ID, Name: u.Name}
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
