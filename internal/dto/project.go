package dto

import (
	"sort"
	"time"

	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/stats"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             uint64                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Icon           string                `json:"icon,omitempty"`
	IconType       models.IconType       `json:"icon_type"`
	InviteCode     string                `json:"invite_code,omitempty"`
	VisibilityType models.VisibilityType `json:"visibility_type"`
	CreatedBy      uint64                `json:"created_by"`
	ArchivedAt     *time.Time            `json:"archived_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ProjectMemberDTO represents a member of a project
type ProjectMemberDTO struct {
	ID              uint64             `json:"id"`
	Name            string             `json:"name"`
	ProfileImageURL string             `json:"profile_image_url,omitempty"`
	Role            models.ProjectRole `json:"role"`
	JoinedAt        time.Time          `json:"joined_at"`
}

// ProjectWithRoleDTO represents a project with the user's role, for lists
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role models.ProjectRole `json:"role"`
}

// ProjectDetailDTO is the canonical normalized aggregate for a project,
// including derived stats and the latest check-in.
type ProjectDetailDTO struct {
	ProjectDTO
	Members     []ProjectMemberDTO `json:"members"`
	Stats       stats.TeamStats    `json:"stats"`
	LastCheckIn *LastCheckInDTO    `json:"last_check_in,omitempty"`
	YourRole    models.ProjectRole `json:"your_role,omitempty"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, includeInviteCode bool) ProjectDTO {
	d := ProjectDTO{
		ID:             project.ID,
		Name:           project.Name,
		Description:    project.Description,
		Icon:           project.Icon,
		IconType:       project.IconType,
		VisibilityType: project.VisibilityType,
		CreatedBy:      project.CreatedBy,
		ArchivedAt:     project.ArchivedAt,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
	if includeInviteCode {
		d.InviteCode = project.InviteCode
	}
	return d
}

// ToProjectMemberDTO converts a membership row to ProjectMemberDTO. Missing
// profile data falls back to the anonymous name.
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	name := member.User.DisplayName
	if name == "" {
		name = member.User.Username
	}
	if name == "" {
		name = AnonymousName
	}
	return ProjectMemberDTO{
		ID:              member.UserID,
		Name:            name,
		ProfileImageURL: member.User.ProfileImageURL,
		Role:            member.Role,
		JoinedAt:        member.JoinedAt,
	}
}

// ToProjectWithRoleDTO converts a membership row to a project list entry
func ToProjectWithRoleDTO(member models.ProjectMember) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		ProjectDTO: ToProjectDTO(member.Project, false),
		Role:       member.Role,
	}
}

// ToProjectDetailDTO normalizes a project row with its nested collections
// into the canonical aggregate. It is total: nil or missing nested
// collections degrade to empty, and it never fails.
func ToProjectDetailDTO(project models.Project, todaySnap, yesterdaySnap *models.DailyStat, today string, yourRole models.ProjectRole) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(project.Members))
	for i, m := range project.Members {
		memberDTOs[i] = ToProjectMemberDTO(m)
	}

	return ProjectDetailDTO{
		ProjectDTO:  ToProjectDTO(project, yourRole != ""),
		Members:     memberDTOs,
		Stats:       stats.ComputeTeamStats(project.Members, project.CheckIns, todaySnap, yesterdaySnap, today),
		LastCheckIn: resolveLastCheckIn(project.CheckIns, project.Members),
		YourRole:    yourRole,
	}
}

// resolveLastCheckIn picks the most recent check-in by CreatedAt (higher ID
// wins a timestamp tie) and resolves its author against current members. An
// author who left the project degrades to the anonymous fallback so the
// banner never breaks on removed members.
func resolveLastCheckIn(checkIns []models.CheckIn, members []models.ProjectMember) *LastCheckInDTO {
	if len(checkIns) == 0 {
		return nil
	}

	sorted := make([]models.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	latest := sorted[0]

	last := &LastCheckInDTO{
		CheckInDTO: ToCheckInDTO(latest),
		AuthorName: AnonymousName,
	}
	for _, m := range members {
		if m.UserID == latest.UserID {
			resolved := ToProjectMemberDTO(m)
			last.AuthorName = resolved.Name
			last.AuthorImageURL = resolved.ProfileImageURL
			break
		}
	}
	return last
}
