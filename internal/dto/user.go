package dto

import "github.com/yukikurage/checkin-api/internal/models"

// AnonymousName is the display-name fallback for members without a profile
// name and for check-in authors who have since left the project.
const AnonymousName = "anonymous"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64 `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		DisplayName:     name,
		ProfileImageURL: user.ProfileImageURL,
		Bio:             user.Bio,
	}
}
