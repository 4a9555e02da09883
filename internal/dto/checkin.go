package dto

import (
	"time"

	"github.com/yukikurage/checkin-api/internal/models"
)

// CheckInDTO represents a check-in in API responses
type CheckInDTO struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"project_id"`
	UserID    uint64    `json:"user_id"`
	Date      string    `json:"date"`
	Condition int       `json:"condition"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// LastCheckInDTO is the "who checked in last" banner payload. Author fields
// are resolved against current members; a removed member degrades to the
// anonymous fallback instead of failing.
type LastCheckInDTO struct {
	CheckInDTO
	AuthorName     string `json:"author_name"`
	AuthorImageURL string `json:"author_image_url,omitempty"`
}

// CheckInListResponse is a paginated list of check-ins
type CheckInListResponse struct {
	CheckIns   []CheckInDTO `json:"check_ins"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
}

// ToCheckInDTO converts a CheckIn model to CheckInDTO
func ToCheckInDTO(ci models.CheckIn) CheckInDTO {
	return CheckInDTO{
		ID:        ci.ID,
		ProjectID: ci.ProjectID,
		UserID:    ci.UserID,
		Date:      ci.Date,
		Condition: ci.Condition,
		Note:      ci.Note,
		CreatedAt: ci.CreatedAt,
	}
}
