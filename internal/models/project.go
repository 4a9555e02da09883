package models

import (
	"time"

	"gorm.io/gorm"
)

type IconType string

const (
	IconTypeEmoji IconType = "emoji"
	IconTypeImage IconType = "image"
)

type VisibilityType string

const (
	VisibilityPublic  VisibilityType = "public"
	VisibilityRequest VisibilityType = "request"
	VisibilityInvite  VisibilityType = "invite"
)

type Project struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Icon           string         `gorm:"type:varchar(500)" json:"icon"`
	IconType       IconType       `gorm:"type:varchar(20);not null;default:'emoji'" json:"icon_type"`
	InviteCode     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	VisibilityType VisibilityType `gorm:"type:varchar(20);not null;default:'public'" json:"visibility_type"`
	CreatedBy      uint64         `gorm:"not null" json:"created_by"`
	ArchivedAt     *time.Time     `json:"archived_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members      []ProjectMember            `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	CheckIns     []CheckIn                  `gorm:"foreignKey:ProjectID" json:"check_ins,omitempty"`
	Invitations  []ProjectInvitation        `gorm:"foreignKey:ProjectID" json:"invitations,omitempty"`
	JoinRequests []ProjectJoinRequest       `gorm:"foreignKey:ProjectID" json:"join_requests,omitempty"`
	DailyStats   []DailyStat                `gorm:"foreignKey:ProjectID" json:"-"`
	History      []ProjectInvitationHistory `gorm:"foreignKey:ProjectID" json:"-"`
}

// IsArchived reports whether the project has been archived.
func (p *Project) IsArchived() bool {
	return p.ArchivedAt != nil
}
