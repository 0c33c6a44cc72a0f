package dto

import (
	"time"

	"github.com/yukikurage/collab-api/internal/models"
)

// ActivityDTO represents an activity log entry
type ActivityDTO struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	EntityType models.EntityType      `json:"entityType"`
	EntityID   string                 `json:"entityId"`
	ProjectID  *string                `json:"projectId,omitempty"`
	Details    map[string]interface{} `json:"details"`
	User       *UserRefDTO            `json:"user"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func ToActivityDTOs(entries []models.ActivityLog) []ActivityDTO {
	out := make([]ActivityDTO, len(entries))
	for i, e := range entries {
		out[i] = ActivityDTO{
			ID:         e.ID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ProjectID:  e.ProjectID,
			Details:    e.Details,
			User:       ToUserRefDTO(e.User),
			CreatedAt:  e.CreatedAt,
		}
	}
	return out
}
