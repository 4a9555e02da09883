package models

import "time"

// DailyStat is a materialized per-day aggregate for a project. When a row
// exists for a given day it is the fast path for team stats; otherwise the
// stats are computed live from members and check-ins.
type DailyStat struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	ProjectID         uint64    `gorm:"not null;uniqueIndex:idx_daily_stats_project_date" json:"project_id"`
	Date              string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_stats_project_date" json:"date"`
	MemberCount       int       `gorm:"not null" json:"member_count"`
	CheckInCount      int       `gorm:"not null" json:"check_in_count"`
	AvgCondition      float64   `gorm:"not null" json:"avg_condition"`
	ParticipationRate int       `gorm:"not null" json:"participation_rate"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
