package repository

import (
	"github.com/yukikurage/checkin-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates the project and its owner membership atomically
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, owner *models.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDWithAggregate finds a project with nested collections preloaded
func (r *GormProjectRepository) FindByIDWithAggregate(id uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Members.User").
		Preload("CheckIns").
		Preload("Invitations", "status = ?", models.InvitationPending).
		Preload("JoinRequests", "status = ?", models.JoinRequestPending).
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByInviteCode finds a project by normalized invite code
func (r *GormProjectRepository) FindByInviteCode(code string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("invite_code = ?", code).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListPublic lists public, non-archived projects
func (r *GormProjectRepository) ListPublic() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Where("visibility_type = ? AND archived_at IS NULL", models.VisibilityPublic).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// SoftDelete tombstones a project. Memberships and check-ins are left in
// place; the tombstone hides the aggregate.
func (r *GormProjectRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists the user's memberships in live projects.
// Membership rows survive a project soft delete, so tombstoned projects are
// filtered out here.
func (r *GormProjectRepository) ListMembersByUserID(userID uint64) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	err := r.db.Preload("Project").
		Joins("JOIN projects ON projects.id = project_members.project_id AND projects.deleted_at IS NULL").
		Where("project_members.user_id = ?", userID).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindDailyStat finds the materialized stat row for a project and day
func (r *GormProjectRepository) FindDailyStat(projectID uint64, date string) (*models.DailyStat, error) {
	var stat models.DailyStat
	if err := r.db.Where("project_id = ? AND date = ?", projectID, date).
		First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

// UpsertDailyStat creates or replaces the stat row for a project and day
func (r *GormProjectRepository) UpsertDailyStat(stat *models.DailyStat) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"member_count", "check_in_count", "avg_condition", "participation_rate", "updated_at",
			}),
		}).
		Create(stat).Error
}
