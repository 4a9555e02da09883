package repository

import (
	"github.com/yukikurage/checkin-api/internal/database"
	"github.com/yukikurage/checkin-api/internal/models"
	"gorm.io/gorm"
)

// GormCheckInRepository is a GORM implementation of CheckInRepository
type GormCheckInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository creates a new CheckInRepository
func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &GormCheckInRepository{db: db}
}

// Create creates a new check-in
func (r *GormCheckInRepository) Create(checkIn *models.CheckIn) error {
	return r.db.Create(checkIn).Error
}

// FindByUserAndDate finds a user's non-cancelled check-in for a day
func (r *GormCheckInRepository) FindByUserAndDate(projectID, userID uint64, date string) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	if err := r.db.
		Where("project_id = ? AND user_id = ? AND date = ?", projectID, userID, date).
		First(&checkIn).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// ListByProject lists a project's check-ins, newest first, paginated
func (r *GormCheckInRepository) ListByProject(projectID uint64, page, pageSize int) ([]models.CheckIn, int64, error) {
	var checkIns []models.CheckIn

	query := r.db.Model(&models.CheckIn{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&checkIns).Error; err != nil {
		return nil, 0, err
	}

	return checkIns, total, nil
}

// ListByUser lists a user's check-ins in a project, ascending by date
func (r *GormCheckInRepository) ListByUser(projectID, userID uint64) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	if err := r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("date ASC").
		Find(&checkIns).Error; err != nil {
		return nil, err
	}
	return checkIns, nil
}

// Cancel soft deletes a check-in so the day can be re-submitted
func (r *GormCheckInRepository) Cancel(id uint64) error {
	return r.db.Delete(&models.CheckIn{}, id).Error
}
