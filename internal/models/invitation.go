package models

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationCancelled InvitationStatus = "cancelled"
)

// ProjectInvitation invites someone by email; the invitee may not have an
// account yet, so the weak reference is the address rather than a user ID.
// At most one pending row exists per (project, email).
type ProjectInvitation struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	ProjectID   uint64           `gorm:"not null;index" json:"project_id"`
	InviterID   uint64           `gorm:"not null" json:"inviter_id"`
	Email       string           `gorm:"type:varchar(255);not null;index" json:"email"`
	Status      InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InvitedAt   time.Time        `json:"invited_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Inviter User    `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

// IsTerminal reports whether the invitation has reached a final state.
func (i *ProjectInvitation) IsTerminal() bool {
	return i.Status != InvitationPending
}
