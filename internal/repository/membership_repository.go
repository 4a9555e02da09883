package repository

import (
	"github.com/yukikurage/checkin-api/internal/models"
	"gorm.io/gorm"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository.
// Every lifecycle transition and its audit history row commit in one
// transaction; there is no transition without a matching history row.
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindPendingRequest finds a user's pending join request for a project
func (r *GormMembershipRepository) FindPendingRequest(projectID, userID uint64) (*models.ProjectJoinRequest, error) {
	var req models.ProjectJoinRequest
	if err := r.db.
		Where("project_id = ? AND user_id = ? AND status = ?", projectID, userID, models.JoinRequestPending).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindRequestByID finds a join request by ID
func (r *GormMembershipRepository) FindRequestByID(id uint64) (*models.ProjectJoinRequest, error) {
	var req models.ProjectJoinRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingRequests lists a project's pending join requests
func (r *GormMembershipRepository) ListPendingRequests(projectID uint64) ([]models.ProjectJoinRequest, error) {
	var reqs []models.ProjectJoinRequest
	if err := r.db.Preload("Requester").
		Where("project_id = ? AND status = ?", projectID, models.JoinRequestPending).
		Order("requested_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindLatestRequest finds a user's most recent request for a project
func (r *GormMembershipRepository) FindLatestRequest(projectID, userID uint64) (*models.ProjectJoinRequest, error) {
	var req models.ProjectJoinRequest
	if err := r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("requested_at DESC, id DESC").
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest creates a pending join request plus its history row
func (r *GormMembershipRepository) CreateRequest(req *models.ProjectJoinRequest, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		return tx.Create(history).Error
	})
}

// ApproveRequest transitions pending → approved and grants membership. A nil
// member means the requester already belongs to the project and only the
// transition and its history row are written.
func (r *GormMembershipRepository) ApproveRequest(req *models.ProjectJoinRequest, member *models.ProjectMember, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if member != nil {
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}
		return tx.Create(history).Error
	})
}

// RejectRequest transitions pending → rejected
func (r *GormMembershipRepository) RejectRequest(req *models.ProjectJoinRequest, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return tx.Create(history).Error
	})
}

// FindPendingInvitation finds a pending invitation for (project, email)
func (r *GormMembershipRepository) FindPendingInvitation(projectID uint64, email string) (*models.ProjectInvitation, error) {
	var inv models.ProjectInvitation
	if err := r.db.
		Where("project_id = ? AND email = ? AND status = ?", projectID, email, models.InvitationPending).
		First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindInvitationByID finds an invitation by ID
func (r *GormMembershipRepository) FindInvitationByID(id uint64) (*models.ProjectInvitation, error) {
	var inv models.ProjectInvitation
	if err := r.db.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListPendingInvitationsByEmail lists pending invitations for an email
func (r *GormMembershipRepository) ListPendingInvitationsByEmail(email string) ([]models.ProjectInvitation, error) {
	var invs []models.ProjectInvitation
	if err := r.db.Preload("Project").Preload("Inviter").
		Where("email = ? AND status = ?", email, models.InvitationPending).
		Order("invited_at DESC").
		Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// CreateInvitation creates a pending invitation plus its history row
func (r *GormMembershipRepository) CreateInvitation(inv *models.ProjectInvitation, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		history.InvitationID = &inv.ID
		return tx.Create(history).Error
	})
}

// CancelInvitation transitions pending → cancelled
func (r *GormMembershipRepository) CancelInvitation(inv *models.ProjectInvitation, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		return tx.Create(history).Error
	})
}

// AcceptInvitation transitions pending → accepted and grants membership. A
// nil member means the invitee already joined through another path.
func (r *GormMembershipRepository) AcceptInvitation(inv *models.ProjectInvitation, member *models.ProjectMember, history *models.ProjectInvitationHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		if member != nil {
			if err := tx.Create(member).Error; err != nil {
				return err
			}
		}
		return tx.Create(history).Error
	})
}

// ListHistory lists a project's audit trail, newest first
func (r *GormMembershipRepository) ListHistory(projectID uint64) ([]models.ProjectInvitationHistory, error) {
	var history []models.ProjectInvitationHistory
	if err := r.db.
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
