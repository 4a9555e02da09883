package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/checkin-api/internal/cache"
	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadyProjectMember        = errors.New("user is already a member of this project")
	ErrProjectNotRequestable       = errors.New("project does not accept join requests")
	ErrRequestNotFound             = errors.New("join request not found")
	ErrRequestAlreadyProcessed     = errors.New("join request has already been processed")
	ErrCannotProcessOwnRequest     = errors.New("cannot approve or reject your own join request")
	ErrSelfInvitation              = errors.New("cannot invite yourself")
	ErrDuplicateInvitation         = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound          = errors.New("invitation not found")
	ErrInvitationAlreadyProcessed  = errors.New("invitation has already been processed")
	ErrInvitationNotAddressed      = errors.New("invitation is not addressed to this user")
	ErrCannotCancelOthersInvitation = errors.New("only the inviter or an owner can cancel an invitation")
)

// MembershipService implements the join-request and invitation lifecycle.
// Both pending entities share the same state machine: pending reaches exactly
// one terminal state, and every transition appends one audit history row in
// the same transaction.
type MembershipService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	snapshots      cache.ProjectSnapshotStore
	now            func() time.Time
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, membershipRepo repository.MembershipRepository, snapshots cache.ProjectSnapshotStore) *MembershipService {
	return &MembershipService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		snapshots:      snapshots,
		now:            time.Now,
	}
}

// SetClock overrides the reference clock (used for testing).
func (s *MembershipService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestToJoin creates a pending join request for a request-visibility
// project. A second request while one is pending coalesces to the existing
// row instead of creating a duplicate.
func (s *MembershipService) RequestToJoin(projectID, userID uint64) (*models.ProjectJoinRequest, bool, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, false, err
	}
	if project.VisibilityType != models.VisibilityRequest {
		return nil, false, ErrProjectNotRequestable
	}
	if project.IsArchived() {
		return nil, false, ErrProjectArchived
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err == nil {
		return nil, false, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to verify membership: %w", err)
	}

	if existing, err := s.membershipRepo.FindPendingRequest(projectID, userID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check pending request: %w", err)
	}

	requester, err := s.findUser(userID)
	if err != nil {
		return nil, false, err
	}

	req := &models.ProjectJoinRequest{
		ProjectID:   projectID,
		UserID:      userID,
		Status:      models.JoinRequestPending,
		RequestedAt: s.now(),
	}

	history := s.historyRow(projectID, requester, requester.Email, models.HistoryRequested, "")

	if err := s.membershipRepo.CreateRequest(req, history); err != nil {
		return nil, false, fmt.Errorf("failed to create join request: %w", err)
	}

	return req, true, nil
}

// GetMyRequest returns the user's most recent join request for the project.
func (s *MembershipService) GetMyRequest(projectID, userID uint64) (*models.ProjectJoinRequest, error) {
	req, err := s.membershipRepo.FindLatestRequest(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return req, nil
}

// ListPendingRequests lists a project's pending join requests.
func (s *MembershipService) ListPendingRequests(projectID uint64) ([]models.ProjectJoinRequest, error) {
	reqs, err := s.membershipRepo.ListPendingRequests(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	return reqs, nil
}

// ApproveRequest transitions a pending request to approved and grants
// membership. Approving your own request is disallowed. If the requester
// became a member through another path in the meantime, the transition still
// completes and the membership write is skipped; the race is a no-op, not an
// error.
func (s *MembershipService) ApproveRequest(requestID, approverID uint64) (*models.ProjectJoinRequest, error) {
	req, err := s.findRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, ErrRequestAlreadyProcessed
	}
	if req.UserID == approverID {
		return nil, ErrCannotProcessOwnRequest
	}

	approver, err := s.findUser(approverID)
	if err != nil {
		return nil, err
	}
	requester, err := s.findUser(req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.Status = models.JoinRequestApproved
	req.ProcessedAt = &now
	req.ProcessedBy = &approverID

	var member *models.ProjectMember
	if _, err := s.projectRepo.FindMember(req.ProjectID, req.UserID); errors.Is(err, gorm.ErrRecordNotFound) {
		member = &models.ProjectMember{
			ProjectID: req.ProjectID,
			UserID:    req.UserID,
			Role:      models.RoleMember,
			JoinedAt:  now,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	history := s.historyRow(req.ProjectID, approver, requester.Email, models.HistoryApproved, "")

	if err := s.membershipRepo.ApproveRequest(req, member, history); err != nil {
		return nil, fmt.Errorf("failed to approve join request: %w", err)
	}

	s.invalidateSnapshot(req.ProjectID)
	return req, nil
}

// RejectRequest transitions a pending request to rejected. No membership
// change occurs.
func (s *MembershipService) RejectRequest(requestID, approverID uint64, reason string) (*models.ProjectJoinRequest, error) {
	req, err := s.findRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, ErrRequestAlreadyProcessed
	}
	if req.UserID == approverID {
		return nil, ErrCannotProcessOwnRequest
	}

	approver, err := s.findUser(approverID)
	if err != nil {
		return nil, err
	}
	requester, err := s.findUser(req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.Status = models.JoinRequestRejected
	req.ProcessedAt = &now
	req.ProcessedBy = &approverID
	req.RejectionReason = strings.TrimSpace(reason)

	history := s.historyRow(req.ProjectID, approver, requester.Email, models.HistoryRejected, req.RejectionReason)

	if err := s.membershipRepo.RejectRequest(req, history); err != nil {
		return nil, fmt.Errorf("failed to reject join request: %w", err)
	}

	return req, nil
}

// Invite creates a pending invitation addressed to an email. Self-invitation
// and malformed addresses are rejected before any write, as is a duplicate
// pending invitation for the same address.
func (s *MembershipService) Invite(projectID, inviterID uint64, email string) (*models.ProjectInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, ErrInvalidEmail
	}

	inviter, err := s.findUser(inviterID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(inviter.Email, email) {
		return nil, ErrSelfInvitation
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived() {
		return nil, ErrProjectArchived
	}

	if _, err := s.membershipRepo.FindPendingInvitation(projectID, email); err == nil {
		return nil, ErrDuplicateInvitation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitation: %w", err)
	}

	// An invitee with an account who already belongs to the project has
	// nothing to accept.
	if invitee, err := s.userRepo.FindByEmail(email); err == nil {
		if _, err := s.projectRepo.FindMember(projectID, invitee.ID); err == nil {
			return nil, ErrAlreadyProjectMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}

	inv := &models.ProjectInvitation{
		ProjectID: projectID,
		InviterID: inviterID,
		Email:     email,
		Status:    models.InvitationPending,
		InvitedAt: s.now(),
	}

	history := s.historyRow(projectID, inviter, email, models.HistoryInvited, "")

	if err := s.membershipRepo.CreateInvitation(inv, history); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

// CancelInvitation transitions a pending invitation to cancelled. Only the
// inviter or a project owner may cancel.
func (s *MembershipService) CancelInvitation(invitationID, actorID uint64, actorRole models.ProjectRole) (*models.ProjectInvitation, error) {
	inv, err := s.findInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return nil, ErrInvitationAlreadyProcessed
	}
	if inv.InviterID != actorID && actorRole != models.RoleOwner {
		return nil, ErrCannotCancelOthersInvitation
	}

	actor, err := s.findUser(actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv.Status = models.InvitationCancelled
	inv.RespondedAt = &now

	history := s.historyRow(inv.ProjectID, actor, inv.Email, models.HistoryCancelled, "")
	history.InvitationID = &inv.ID

	if err := s.membershipRepo.CancelInvitation(inv, history); err != nil {
		return nil, fmt.Errorf("failed to cancel invitation: %w", err)
	}

	return inv, nil
}

// AcceptInvitation transitions a pending invitation to accepted and grants
// membership to the responding user, whose email must match the invitation.
// If the user already joined through another path the membership write is
// skipped and the transition still completes.
func (s *MembershipService) AcceptInvitation(invitationID, userID uint64) (*models.ProjectInvitation, error) {
	inv, err := s.findInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return nil, ErrInvitationAlreadyProcessed
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, inv.Email) {
		return nil, ErrInvitationNotAddressed
	}

	now := s.now()
	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now

	var member *models.ProjectMember
	if _, err := s.projectRepo.FindMember(inv.ProjectID, userID); errors.Is(err, gorm.ErrRecordNotFound) {
		member = &models.ProjectMember{
			ProjectID: inv.ProjectID,
			UserID:    userID,
			Role:      models.RoleMember,
			JoinedAt:  now,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	history := s.historyRow(inv.ProjectID, user, inv.Email, models.HistoryAccepted, "")
	history.InvitationID = &inv.ID

	if err := s.membershipRepo.AcceptInvitation(inv, member, history); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.invalidateSnapshot(inv.ProjectID)
	return inv, nil
}

// ListMyInvitations lists pending invitations addressed to the user's email.
func (s *MembershipService) ListMyInvitations(userID uint64) ([]models.ProjectInvitation, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	invs, err := s.membershipRepo.ListPendingInvitationsByEmail(strings.ToLower(user.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

// ListHistory returns the project's append-only audit trail.
func (s *MembershipService) ListHistory(projectID uint64) ([]models.ProjectInvitationHistory, error) {
	history, err := s.membershipRepo.ListHistory(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitation history: %w", err)
	}
	return history, nil
}

// invalidateSnapshot drops the project's mirrored aggregate after a
// membership-granting transition so the next snapshot read recomputes.
// Best effort.
func (s *MembershipService) invalidateSnapshot(projectID uint64) {
	if err := s.snapshots.Delete(context.Background(), projectID); err != nil {
		log.WithError(err).WithField("project_id", projectID).Warn("project snapshot invalidation failed")
	}
}

func (s *MembershipService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *MembershipService) findRequest(requestID uint64) (*models.ProjectJoinRequest, error) {
	req, err := s.membershipRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return req, nil
}

func (s *MembershipService) findInvitation(invitationID uint64) (*models.ProjectInvitation, error) {
	inv, err := s.membershipRepo.FindInvitationByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return inv, nil
}

func (s *MembershipService) findUser(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *MembershipService) historyRow(projectID uint64, actor *models.User, inviteeEmail string, action models.HistoryAction, metadata string) *models.ProjectInvitationHistory {
	name := actor.DisplayName
	if name == "" {
		name = actor.Username
	}
	return &models.ProjectInvitationHistory{
		ProjectID:    projectID,
		ActorID:      actor.ID,
		ActorName:    name,
		InviteeEmail: inviteeEmail,
		Action:       action,
		Metadata:     metadata,
		CreatedAt:    s.now(),
	}
}
