package repository

import (
	"github.com/yukikurage/checkin-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates mutable profile fields
	Update(user *models.User) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and its owner membership atomically
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindByIDWithAggregate finds a project with members (and their users),
	// check-ins and pending lifecycle rows preloaded
	FindByIDWithAggregate(id uint64) (*models.Project, error)

	// FindByInviteCode finds a project by normalized invite code
	FindByInviteCode(code string) (*models.Project, error)

	// ListPublic lists public, non-archived projects
	ListPublic() ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// SoftDelete tombstones a project
	SoftDelete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembersByUserID lists all projects a user is a member of
	ListMembersByUserID(userID uint64) ([]models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// FindDailyStat finds the materialized stat row for a project and day
	FindDailyStat(projectID uint64, date string) (*models.DailyStat, error)

	// UpsertDailyStat creates or replaces the stat row for a project and day
	UpsertDailyStat(stat *models.DailyStat) error
}

// CheckInRepository defines the interface for check-in data access
type CheckInRepository interface {
	// Create creates a new check-in
	Create(checkIn *models.CheckIn) error

	// FindByUserAndDate finds a user's non-cancelled check-in for a day
	FindByUserAndDate(projectID, userID uint64, date string) (*models.CheckIn, error)

	// ListByProject lists a project's check-ins, newest first, paginated
	ListByProject(projectID uint64, page, pageSize int) ([]models.CheckIn, int64, error)

	// ListByUser lists a user's check-ins in a project, ascending by date
	ListByUser(projectID, userID uint64) ([]models.CheckIn, error)

	// Cancel soft deletes a check-in
	Cancel(id uint64) error
}

// MembershipRepository defines the interface for the join-request and
// invitation lifecycle. Transition methods write their audit history row in
// the same transaction as the state change.
type MembershipRepository interface {
	// FindPendingRequest finds a user's pending join request for a project
	FindPendingRequest(projectID, userID uint64) (*models.ProjectJoinRequest, error)

	// FindRequestByID finds a join request by ID
	FindRequestByID(id uint64) (*models.ProjectJoinRequest, error)

	// ListPendingRequests lists a project's pending join requests
	ListPendingRequests(projectID uint64) ([]models.ProjectJoinRequest, error)

	// FindLatestRequest finds a user's most recent request for a project
	FindLatestRequest(projectID, userID uint64) (*models.ProjectJoinRequest, error)

	// CreateRequest creates a pending join request plus its history row
	CreateRequest(req *models.ProjectJoinRequest, history *models.ProjectInvitationHistory) error

	// ApproveRequest marks the request approved, adds the membership and
	// writes the history row atomically
	ApproveRequest(req *models.ProjectJoinRequest, member *models.ProjectMember, history *models.ProjectInvitationHistory) error

	// RejectRequest marks the request rejected and writes the history row
	RejectRequest(req *models.ProjectJoinRequest, history *models.ProjectInvitationHistory) error

	// FindPendingInvitation finds a pending invitation for (project, email)
	FindPendingInvitation(projectID uint64, email string) (*models.ProjectInvitation, error)

	// FindInvitationByID finds an invitation by ID
	FindInvitationByID(id uint64) (*models.ProjectInvitation, error)

	// ListPendingInvitationsByEmail lists pending invitations for an email
	ListPendingInvitationsByEmail(email string) ([]models.ProjectInvitation, error)

	// CreateInvitation creates a pending invitation plus its history row
	CreateInvitation(inv *models.ProjectInvitation, history *models.ProjectInvitationHistory) error

	// CancelInvitation marks the invitation cancelled and writes history
	CancelInvitation(inv *models.ProjectInvitation, history *models.ProjectInvitationHistory) error

	// AcceptInvitation marks the invitation accepted, adds the membership
	// and writes the history row atomically
	AcceptInvitation(inv *models.ProjectInvitation, member *models.ProjectMember, history *models.ProjectInvitationHistory) error

	// ListHistory lists a project's audit trail, newest first
	ListHistory(projectID uint64) ([]models.ProjectInvitationHistory, error)
}
