package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/checkin-api/internal/cache"
	"github.com/yukikurage/checkin-api/internal/dto"
	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/repository"
	"github.com/yukikurage/checkin-api/internal/stats"
	"github.com/yukikurage/checkin-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound            = errors.New("project not found")
	ErrInvalidProjectName         = errors.New("project name cannot be empty")
	ErrInvalidVisibility          = errors.New("invalid visibility type")
	ErrInvalidIconType            = errors.New("invalid icon type")
	ErrVisibilityImmutable        = errors.New("visibility type cannot be changed after creation")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrProjectNotJoinable         = errors.New("project does not accept direct joins")
	ErrProjectArchived            = errors.New("project is archived")
	ErrProjectNotArchived         = errors.New("project is not archived")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the project")
	ErrOwnerCannotLeave           = errors.New("project owner cannot leave the project")
	ErrProjectMemberNotFound      = errors.New("project member not found")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	snapshots   cache.ProjectSnapshotStore
	now         func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, snapshots cache.ProjectSnapshotStore) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		snapshots:   snapshots,
		now:         time.Now,
	}
}

// SetClock overrides the reference clock (used for testing).
func (s *ProjectService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name           string
	Description    string
	Icon           string
	IconType       models.IconType
	VisibilityType models.VisibilityType
	OwnerID        uint64
}

// CreateProject creates a new project and assigns the owner. The visibility
// type is fixed at creation.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	visibility := input.VisibilityType
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	switch visibility {
	case models.VisibilityPublic, models.VisibilityRequest, models.VisibilityInvite:
	default:
		return nil, ErrInvalidVisibility
	}

	iconType := input.IconType
	if iconType == "" {
		iconType = models.IconTypeEmoji
	}
	switch iconType {
	case models.IconTypeEmoji, models.IconTypeImage:
	default:
		return nil, ErrInvalidIconType
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project := &models.Project{
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Icon:           input.Icon,
		IconType:       iconType,
		InviteCode:     inviteCode,
		VisibilityType: visibility,
		CreatedBy:      input.OwnerID,
	}

	owner := &models.ProjectMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: s.now(),
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns the projects the user belongs to.
func (s *ProjectService) ListProjectsForUser(userID uint64) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// ListPublicProjects returns public, non-archived projects for discovery.
func (s *ProjectService) ListPublicProjects() ([]models.Project, error) {
	projects, err := s.projectRepo.ListPublic()
	if err != nil {
		return nil, fmt.Errorf("failed to list public projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the bare project row.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// GetProjectDetail returns the normalized project aggregate with derived
// stats and last check-in, and refreshes the snapshot mirror.
func (s *ProjectService) GetProjectDetail(ctx context.Context, projectID uint64, yourRole models.ProjectRole) (*dto.ProjectDetailDTO, error) {
	project, err := s.projectRepo.FindByIDWithAggregate(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	now := s.now()
	today := stats.Today(now)
	todaySnap := s.findDailyStat(projectID, today)
	yesterdaySnap := s.findDailyStat(projectID, stats.Yesterday(now))

	detail := dto.ToProjectDetailDTO(*project, todaySnap, yesterdaySnap, today, yourRole)
	s.mirror(ctx, detail)
	return &detail, nil
}

// GetProjectSnapshot serves the mirrored aggregate when available, falling
// back to a live recompute on a miss. The mirror is a read fast path only;
// mutations always go through the database.
func (s *ProjectService) GetProjectSnapshot(ctx context.Context, projectID uint64, yourRole models.ProjectRole) (*dto.ProjectDetailDTO, error) {
	if snapshot, err := s.snapshots.Load(ctx, projectID); err == nil {
		snapshot.YourRole = yourRole
		return snapshot, nil
	} else if !errors.Is(err, cache.ErrNotCached) {
		log.WithError(err).Warn("project snapshot load failed, recomputing")
	}

	return s.GetProjectDetail(ctx, projectID, yourRole)
}

// UpdateProjectInput holds the mutable project fields. A nil field is left
// unchanged.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	Icon           *string
	IconType       *models.IconType
	VisibilityType *models.VisibilityType
}

// UpdateProject updates a project's mutable fields. Attempting to change the
// visibility type is rejected.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if input.VisibilityType != nil && *input.VisibilityType != project.VisibilityType {
		return nil, ErrVisibilityImmutable
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Icon != nil {
		project.Icon = *input.Icon
	}
	if input.IconType != nil {
		switch *input.IconType {
		case models.IconTypeEmoji, models.IconTypeImage:
			project.IconType = *input.IconType
		default:
			return nil, ErrInvalidIconType
		}
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.invalidate(ctx, projectID)
	return project, nil
}

// DeleteProject soft deletes a project. The tombstone hides the aggregate;
// rows are never physically removed.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID uint64) error {
	if _, err := s.GetProject(projectID); err != nil {
		return err
	}

	if err := s.projectRepo.SoftDelete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.invalidate(ctx, projectID)
	return nil
}

// ArchiveProject marks a project archived. Archival is reversible.
func (s *ProjectService) ArchiveProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived() {
		return nil, ErrProjectArchived
	}

	now := s.now()
	project.ArchivedAt = &now
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to archive project: %w", err)
	}

	s.invalidate(ctx, projectID)
	return project, nil
}

// RestoreProject clears a project's archive mark.
func (s *ProjectService) RestoreProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsArchived() {
		return nil, ErrProjectNotArchived
	}

	project.ArchivedAt = nil
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to restore project: %w", err)
	}

	s.invalidate(ctx, projectID)
	return project, nil
}

// RegenerateInviteCode generates a new invite code for the project.
func (s *ProjectService) RegenerateInviteCode(projectID uint64) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project.InviteCode = code
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	s.invalidate(context.Background(), projectID)
	return project, nil
}

// JoinPublicProject adds the user to a public project. The operation is
// idempotent: joining a project you already belong to reports joined=false
// and no error, since another client may have raced the same mutation.
func (s *ProjectService) JoinPublicProject(projectID, userID uint64) (joined bool, err error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return false, err
	}
	if project.VisibilityType != models.VisibilityPublic {
		return false, ErrProjectNotJoinable
	}
	if project.IsArchived() {
		return false, ErrProjectArchived
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  s.now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return false, fmt.Errorf("failed to join project: %w", err)
	}

	s.invalidate(context.Background(), projectID)
	return true, nil
}

// JoinByInviteCode adds the user to the project matching the invite code.
// Codes are case-insensitive. Already being a member reports joined=false
// and no error.
func (s *ProjectService) JoinByInviteCode(userID uint64, inviteCode string) (*models.Project, bool, error) {
	project, err := s.projectRepo.FindByInviteCode(utils.NormalizeInviteCode(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrInvalidInviteCode
		}
		return nil, false, fmt.Errorf("failed to find project by invite code: %w", err)
	}
	if project.IsArchived() {
		return nil, false, ErrProjectArchived
	}

	if _, err := s.projectRepo.FindMember(project.ID, userID); err == nil {
		return project, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  s.now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, false, fmt.Errorf("failed to join project: %w", err)
	}

	s.invalidate(context.Background(), project.ID)
	return project, true, nil
}

// LeaveProject removes the user's own membership. The owner cannot leave;
// ownership transfer is not supported, so the owner's exit path is deletion.
func (s *ProjectService) LeaveProject(projectID, userID uint64) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}
	if member.Role == models.RoleOwner {
		return ErrOwnerCannotLeave
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to leave project: %w", err)
	}

	s.invalidate(context.Background(), projectID)
	return nil
}

// RemoveMember removes a member from the project.
func (s *ProjectService) RemoveMember(projectID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.projectRepo.FindMember(projectID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.invalidate(context.Background(), projectID)
	return nil
}

// MaterializeDailyStat computes today's live stats and persists them as the
// DailyStat fast-path row. Stands in for the upstream periodic job.
func (s *ProjectService) MaterializeDailyStat(projectID uint64) (*models.DailyStat, error) {
	project, err := s.projectRepo.FindByIDWithAggregate(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	today := stats.Today(s.now())
	live := stats.ComputeTeamStats(project.Members, project.CheckIns, nil, nil, today)

	stat := &models.DailyStat{
		ProjectID:         projectID,
		Date:              today,
		MemberCount:       live.MemberCount,
		CheckInCount:      live.CheckInCount,
		AvgCondition:      live.AvgCondition,
		ParticipationRate: live.ParticipationRate,
	}

	if err := s.projectRepo.UpsertDailyStat(stat); err != nil {
		return nil, fmt.Errorf("failed to materialize daily stat: %w", err)
	}

	s.invalidate(context.Background(), projectID)
	return stat, nil
}

func (s *ProjectService) findDailyStat(projectID uint64, date string) *models.DailyStat {
	stat, err := s.projectRepo.FindDailyStat(projectID, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithField("project_id", projectID).Warn("daily stat lookup failed")
		}
		return nil
	}
	return stat
}

// mirror refreshes the snapshot cache. Mirror writes are best effort and
// never fail the request.
func (s *ProjectService) mirror(ctx context.Context, detail dto.ProjectDetailDTO) {
	if err := s.snapshots.Save(ctx, detail); err != nil {
		log.WithError(err).WithField("project_id", detail.ID).Warn("project snapshot save failed")
	}
}

// invalidate drops the project's mirrored aggregate so the next snapshot
// read recomputes. Mutations without a request context pass a background
// one; invalidation is best effort either way.
func (s *ProjectService) invalidate(ctx context.Context, projectID uint64) {
	if err := s.snapshots.Delete(ctx, projectID); err != nil {
		log.WithError(err).WithField("project_id", projectID).Warn("project snapshot invalidation failed")
	}
}
