package models

import "time"

type TaskAssignment struct {
	TaskID    string    `gorm:"type:varchar(36);primarykey" json:"taskId"`
	UserID    string    `gorm:"type:varchar(36);primarykey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
