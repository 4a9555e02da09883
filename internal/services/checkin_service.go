package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/checkin-api/internal/cache"
	"github.com/yukikurage/checkin-api/internal/constants"
	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/repository"
	"github.com/yukikurage/checkin-api/internal/stats"
	"gorm.io/gorm"
)

var (
	ErrConditionOutOfRange   = errors.New("condition must be between 0 and 10")
	ErrNoteTooLong           = errors.New("note is too long")
	ErrAlreadyCheckedInToday = errors.New("already checked in today")
	ErrNoCheckInToday        = errors.New("no check-in exists for today")
)

// CheckInService handles daily check-ins and the streak derivation.
type CheckInService struct {
	checkInRepo repository.CheckInRepository
	snapshots   cache.ProjectSnapshotStore
	now         func() time.Time
}

// NewCheckInService creates a new CheckInService.
func NewCheckInService(checkInRepo repository.CheckInRepository, snapshots cache.ProjectSnapshotStore) *CheckInService {
	return &CheckInService{
		checkInRepo: checkInRepo,
		snapshots:   snapshots,
		now:         time.Now,
	}
}

// SetClock overrides the reference clock (used for testing).
func (s *CheckInService) SetClock(now func() time.Time) {
	s.now = now
}

// CheckInInput represents one day's condition report.
type CheckInInput struct {
	ProjectID uint64
	UserID    uint64
	Condition int
	Note      string
}

// CheckIn records today's check-in for the user. A second submission for the
// same day is a conflict; cancelling the existing check-in first is the
// correction path.
func (s *CheckInService) CheckIn(input CheckInInput) (*models.CheckIn, error) {
	if input.Condition < constants.MinCondition || input.Condition > constants.MaxCondition {
		return nil, ErrConditionOutOfRange
	}
	if len(input.Note) > constants.MaxNoteLength {
		return nil, ErrNoteTooLong
	}

	today := stats.Today(s.now())

	if _, err := s.checkInRepo.FindByUserAndDate(input.ProjectID, input.UserID, today); err == nil {
		return nil, ErrAlreadyCheckedInToday
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing check-in: %w", err)
	}

	checkIn := &models.CheckIn{
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Date:      today,
		Condition: input.Condition,
		Note:      strings.TrimSpace(input.Note),
	}

	if err := s.checkInRepo.Create(checkIn); err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	s.invalidateSnapshot(input.ProjectID)
	return checkIn, nil
}

// CancelToday cancels the user's check-in for today.
func (s *CheckInService) CancelToday(projectID, userID uint64) error {
	today := stats.Today(s.now())

	checkIn, err := s.checkInRepo.FindByUserAndDate(projectID, userID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCheckInToday
		}
		return fmt.Errorf("failed to find today's check-in: %w", err)
	}

	if err := s.checkInRepo.Cancel(checkIn.ID); err != nil {
		return fmt.Errorf("failed to cancel check-in: %w", err)
	}

	s.invalidateSnapshot(projectID)
	return nil
}

// ListCheckIns returns a project's check-ins, newest first.
func (s *CheckInService) ListCheckIns(projectID uint64, page, pageSize int) ([]models.CheckIn, int64, error) {
	checkIns, total, err := s.checkInRepo.ListByProject(projectID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, total, nil
}

// invalidateSnapshot drops the project's mirrored aggregate after a check-in
// mutation so the next snapshot read recomputes. Best effort.
func (s *CheckInService) invalidateSnapshot(projectID uint64) {
	if err := s.snapshots.Delete(context.Background(), projectID); err != nil {
		log.WithError(err).WithField("project_id", projectID).Warn("project snapshot invalidation failed")
	}
}

// Streak returns the user's consecutive daily check-in streak in a project.
func (s *CheckInService) Streak(projectID, userID uint64) (int, error) {
	checkIns, err := s.checkInRepo.ListByUser(projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list user check-ins: %w", err)
	}
	return stats.Streak(checkIns, s.now()), nil
}
