package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EntityType string

const (
	EntityTask    EntityType = "task"
	EntityProject EntityType = "project"
	EntityTeam    EntityType = "team"
	EntityUser    EntityType = "user"
)

// ActivityLog is append-only. EntityID is not a foreign key.
type ActivityLog struct {
	ID         string            `gorm:"type:varchar(36);primarykey" json:"id"`
	Action     string            `gorm:"type:varchar(255);not null" json:"action"`
	EntityType EntityType        `gorm:"type:varchar(20);not null;index" json:"entityType"`
	EntityID   string            `gorm:"type:varchar(36);not null" json:"entityId"`
	ProjectID  *string           `gorm:"type:varchar(36);index" json:"projectId,omitempty"`
	Details    datatypes.JSONMap `json:"details"`
	UserID     string            `gorm:"type:varchar(36);not null" json:"userId"`
	CreatedAt  time.Time         `gorm:"index" json:"createdAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = newID()
	}
	return nil
}
