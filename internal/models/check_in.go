package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckIn is one member's condition report for one calendar day.
// At most one non-cancelled row exists per (project, user, date); cancelling
// soft deletes the row so a corrected check-in can be submitted for the same
// day.
type CheckIn struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID uint64         `gorm:"not null;index:idx_check_ins_project_date" json:"project_id"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	Date      string         `gorm:"type:varchar(10);not null;index:idx_check_ins_project_date" json:"date"` // YYYY-MM-DD
	Condition int            `gorm:"not null" json:"condition"`                                              // 0-10
	Note      string         `gorm:"type:text" json:"note"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// DateFormat is the calendar-day layout used for CheckIn.Date and
// DailyStat.Date.
const DateFormat = "2006-01-02"
