package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatorID   string    `gorm:"type:varchar(36);not null;index" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Creator  User         `gorm:"foreignKey:CreatorID" json:"-"`
	Members  []TeamMember `gorm:"foreignKey:TeamID" json:"-"`
	Projects []Project    `gorm:"foreignKey:TeamID" json:"-"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = newID()
	}
	return nil
}

// HasAccess reports whether userID created the team or is listed as a member.
func (t *Team) HasAccess(userID string) bool {
	if t.CreatorID == userID {
		return true
	}
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
