package dto

import (
	"time"

	"github.com/yukikurage/collab-api/internal/models"
)

// UserRefDTO is the minimal user shape embedded in other resources
type UserRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserRefDTO returns nil for a user that was not loaded or no longer exists.
func ToUserRefDTO(user models.User) *UserRefDTO {
	if user.ID == "" {
		return nil
	}
	return &UserRefDTO{ID: user.ID, Name: user.Name}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
