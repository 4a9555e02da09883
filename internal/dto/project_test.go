package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/checkin-api/internal/models"
)

func testProject() models.Project {
	return models.Project{
		ID:             1,
		Name:           "Morning Crew",
		IconType:       models.IconTypeEmoji,
		Icon:           "🌅",
		InviteCode:     "AAAA-BBBB-CCCC",
		VisibilityType: models.VisibilityPublic,
		CreatedBy:      1,
		Members: []models.ProjectMember{
			{ProjectID: 1, UserID: 1, Role: models.RoleOwner, User: models.User{ID: 1, Username: "alice", DisplayName: "Alice"}},
			{ProjectID: 1, UserID: 2, Role: models.RoleMember, User: models.User{ID: 2, Username: "bob"}},
		},
	}
}

func TestToProjectDetailDTO_NilCollections(t *testing.T) {
	// Normalization is total: a bare row with no nested collections
	// produces an empty aggregate, never an error.
	d := ToProjectDetailDTO(models.Project{ID: 7, Name: "Bare"}, nil, nil, "2026-08-29", "")

	require.Equal(t, uint64(7), d.ID)
	require.Empty(t, d.Members)
	require.Nil(t, d.LastCheckIn)
	require.Equal(t, 0, d.Stats.MemberCount)
	require.Equal(t, 0, d.Stats.ParticipationRate)
	require.Equal(t, 0.0, d.Stats.AvgCondition)
}

func TestToProjectDetailDTO_MemberNameFallback(t *testing.T) {
	p := testProject()
	d := ToProjectDetailDTO(p, nil, nil, "2026-08-29", models.RoleOwner)

	require.Len(t, d.Members, 2)
	require.Equal(t, "Alice", d.Members[0].Name)
	// No display name: fall back to username before anonymous.
	require.Equal(t, "bob", d.Members[1].Name)
}

func TestToProjectDetailDTO_LastCheckInResolvesAuthor(t *testing.T) {
	p := testProject()
	p.CheckIns = []models.CheckIn{
		{ID: 1, ProjectID: 1, UserID: 2, Date: "2026-08-28", Condition: 5, CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)},
		{ID: 2, ProjectID: 1, UserID: 1, Date: "2026-08-29", Condition: 8, CreatedAt: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)},
	}

	d := ToProjectDetailDTO(p, nil, nil, "2026-08-29", models.RoleOwner)

	require.NotNil(t, d.LastCheckIn)
	require.Equal(t, uint64(2), d.LastCheckIn.ID)
	require.Equal(t, "Alice", d.LastCheckIn.AuthorName)
}

func TestToProjectDetailDTO_LastCheckInByRemovedMember(t *testing.T) {
	p := testProject()
	// Author 99 is not in members anymore; the banner must degrade to
	// anonymous rather than fail.
	p.CheckIns = []models.CheckIn{
		{ID: 3, ProjectID: 1, UserID: 99, Date: "2026-08-29", Condition: 4, CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)},
	}

	d := ToProjectDetailDTO(p, nil, nil, "2026-08-29", models.RoleMember)

	require.NotNil(t, d.LastCheckIn)
	require.Equal(t, AnonymousName, d.LastCheckIn.AuthorName)
	require.Empty(t, d.LastCheckIn.AuthorImageURL)
}

func TestToProjectDetailDTO_LastCheckInCreatedAtTie(t *testing.T) {
	p := testProject()
	ts := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	p.CheckIns = []models.CheckIn{
		{ID: 10, ProjectID: 1, UserID: 1, Date: "2026-08-29", CreatedAt: ts},
		{ID: 11, ProjectID: 1, UserID: 2, Date: "2026-08-29", CreatedAt: ts},
	}

	d := ToProjectDetailDTO(p, nil, nil, "2026-08-29", "")

	// Equal timestamps: the later row wins.
	require.Equal(t, uint64(11), d.LastCheckIn.ID)
}

func TestToProjectDetailDTO_StatsDelegation(t *testing.T) {
	p := testProject()
	p.CheckIns = []models.CheckIn{
		{ID: 1, ProjectID: 1, UserID: 1, Date: "2026-08-29", Condition: 8, CreatedAt: time.Now()},
	}

	d := ToProjectDetailDTO(p, nil, nil, "2026-08-29", "")

	require.Equal(t, 2, d.Stats.MemberCount)
	require.Equal(t, 1, d.Stats.CheckInCount)
	require.Equal(t, 8.0, d.Stats.AvgCondition)
	require.Equal(t, 50, d.Stats.ParticipationRate)
}

func TestToProjectDTO_InviteCodeVisibility(t *testing.T) {
	p := testProject()

	require.Empty(t, ToProjectDTO(p, false).InviteCode)
	require.Equal(t, p.InviteCode, ToProjectDTO(p, true).InviteCode)
}
