package dto

import (
	"time"

	"github.com/yukikurage/checkin-api/internal/models"
)

// JoinRequestDTO represents a join request in API responses
type JoinRequestDTO struct {
	ID              uint64                   `json:"id"`
	ProjectID       uint64                   `json:"project_id"`
	UserID          uint64                   `json:"user_id"`
	RequesterName   string                   `json:"requester_name,omitempty"`
	Status          models.JoinRequestStatus `json:"status"`
	RequestedAt     time.Time                `json:"requested_at"`
	ProcessedAt     *time.Time               `json:"processed_at,omitempty"`
	ProcessedBy     *uint64                  `json:"processed_by,omitempty"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
}

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID          uint64                  `json:"id"`
	ProjectID   uint64                  `json:"project_id"`
	ProjectName string                  `json:"project_name,omitempty"`
	InviterID   uint64                  `json:"inviter_id"`
	InviterName string                  `json:"inviter_name,omitempty"`
	Email       string                  `json:"email"`
	Status      models.InvitationStatus `json:"status"`
	InvitedAt   time.Time               `json:"invited_at"`
	RespondedAt *time.Time              `json:"responded_at,omitempty"`
}

// InvitationHistoryDTO represents one audit-trail entry
type InvitationHistoryDTO struct {
	ID           uint64               `json:"id"`
	ProjectID    uint64               `json:"project_id"`
	InvitationID *uint64              `json:"invitation_id,omitempty"`
	ActorID      uint64               `json:"actor_id"`
	ActorName    string               `json:"actor_name"`
	InviteeEmail string               `json:"invitee_email,omitempty"`
	Action       models.HistoryAction `json:"action"`
	Metadata     string               `json:"metadata,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ToJoinRequestDTO converts a join request model to DTO
func ToJoinRequestDTO(req models.ProjectJoinRequest) JoinRequestDTO {
	d := JoinRequestDTO{
		ID:              req.ID,
		ProjectID:       req.ProjectID,
		UserID:          req.UserID,
		Status:          req.Status,
		RequestedAt:     req.RequestedAt,
		ProcessedAt:     req.ProcessedAt,
		ProcessedBy:     req.ProcessedBy,
		RejectionReason: req.RejectionReason,
	}
	if req.Requester.ID != 0 {
		d.RequesterName = ToUserDTO(req.Requester).DisplayName
	}
	return d
}

// ToInvitationDTO converts an invitation model to DTO
func ToInvitationDTO(inv models.ProjectInvitation) InvitationDTO {
	d := InvitationDTO{
		ID:          inv.ID,
		ProjectID:   inv.ProjectID,
		InviterID:   inv.InviterID,
		Email:       inv.Email,
		Status:      inv.Status,
		InvitedAt:   inv.InvitedAt,
		RespondedAt: inv.RespondedAt,
	}
	if inv.Project.ID != 0 {
		d.ProjectName = inv.Project.Name
	}
	if inv.Inviter.ID != 0 {
		d.InviterName = ToUserDTO(inv.Inviter).DisplayName
	}
	return d
}

// ToInvitationHistoryDTO converts a history row to DTO
func ToInvitationHistoryDTO(h models.ProjectInvitationHistory) InvitationHistoryDTO {
	return InvitationHistoryDTO{
		ID:           h.ID,
		ProjectID:    h.ProjectID,
		InvitationID: h.InvitationID,
		ActorID:      h.ActorID,
		ActorName:    h.ActorName,
		InviteeEmail: h.InviteeEmail,
		Action:       h.Action,
		Metadata:     h.Metadata,
		CreatedAt:    h.CreatedAt,
	}
}
