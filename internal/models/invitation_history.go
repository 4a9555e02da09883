package models

import "time"

type HistoryAction string

const (
	HistoryInvited   HistoryAction = "invited"
	HistoryCancelled HistoryAction = "cancelled"
	HistoryAccepted  HistoryAction = "accepted"
	HistoryRejected  HistoryAction = "rejected"
	HistoryRequested HistoryAction = "requested"
	HistoryApproved  HistoryAction = "approved"
)

// ProjectInvitationHistory is the append-only audit trail of membership
// lifecycle transitions. Rows are written in the same transaction as the
// transition they record and are never updated or deleted.
type ProjectInvitationHistory struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	ProjectID    uint64        `gorm:"not null;index" json:"project_id"`
	InvitationID *uint64       `json:"invitation_id,omitempty"`
	ActorID      uint64        `gorm:"not null" json:"actor_id"`
	ActorName    string        `gorm:"type:varchar(100)" json:"actor_name"`
	InviteeEmail string        `gorm:"type:varchar(255)" json:"invitee_email"`
	Action       HistoryAction `gorm:"type:varchar(20);not null" json:"action"`
	Metadata     string        `gorm:"type:varchar(500)" json:"metadata,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
