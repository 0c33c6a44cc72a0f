package models

import "time"

type TeamMember struct {
	TeamID   string    `gorm:"type:varchar(36);primarykey" json:"teamId"`
	UserID   string    `gorm:"type:varchar(36);primarykey" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
