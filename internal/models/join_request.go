package models

import "time"

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// ProjectJoinRequest tracks a user asking to join a request-visibility
// project. At most one pending row exists per (project, user).
type ProjectJoinRequest struct {
	ID              uint64            `gorm:"primarykey" json:"id"`
	ProjectID       uint64            `gorm:"not null;index" json:"project_id"`
	UserID          uint64            `gorm:"not null;index" json:"user_id"`
	Status          JoinRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RequestedAt     time.Time         `json:"requested_at"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
	ProcessedBy     *uint64           `json:"processed_by,omitempty"`
	RejectionReason string            `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Requester User    `gorm:"foreignKey:UserID" json:"requester,omitempty"`
}

// IsTerminal reports whether the request has reached a final state.
func (r *ProjectJoinRequest) IsTerminal() bool {
	return r.Status != JoinRequestPending
}
