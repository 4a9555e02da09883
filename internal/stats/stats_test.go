package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/checkin-api/internal/models"
)

func members(n int) []models.ProjectMember {
	ms := make([]models.ProjectMember, n)
	for i := range ms {
		ms[i] = models.ProjectMember{ProjectID: 1, UserID: uint64(i + 1)}
	}
	return ms
}

func TestComputeTeamStats_NoCheckInsToday(t *testing.T) {
	s := ComputeTeamStats(members(2), nil, nil, nil, "2026-08-29")

	require.Equal(t, 2, s.MemberCount)
	require.Equal(t, 0, s.CheckInCount)
	require.Equal(t, 0.0, s.AvgCondition)
	require.Equal(t, 0, s.ParticipationRate)
	require.Equal(t, 0, s.MemberCountChange)
}

func TestComputeTeamStats_LiveComputation(t *testing.T) {
	checkIns := []models.CheckIn{
		{UserID: 1, Date: "2026-08-29", Condition: 8},
		{UserID: 2, Date: "2026-08-28", Condition: 3}, // yesterday, ignored
	}

	s := ComputeTeamStats(members(2), checkIns, nil, nil, "2026-08-29")

	require.Equal(t, 2, s.MemberCount)
	require.Equal(t, 1, s.CheckInCount)
	require.Equal(t, 8.0, s.AvgCondition)
	require.Equal(t, 50, s.ParticipationRate)
}

func TestComputeTeamStats_SnapshotFastPath(t *testing.T) {
	snap := &models.DailyStat{
		Date:              "2026-08-29",
		MemberCount:       5,
		CheckInCount:      4,
		AvgCondition:      7.25,
		ParticipationRate: 80,
	}

	// Live collections disagree with the snapshot on purpose; the snapshot
	// must win.
	s := ComputeTeamStats(members(2), nil, snap, nil, "2026-08-29")

	require.Equal(t, 5, s.MemberCount)
	require.Equal(t, 4, s.CheckInCount)
	require.Equal(t, 7.25, s.AvgCondition)
	require.Equal(t, 80, s.ParticipationRate)
}

func TestComputeTeamStats_MemberCountChange(t *testing.T) {
	yesterday := &models.DailyStat{Date: "2026-08-28", MemberCount: 3}

	s := ComputeTeamStats(members(5), nil, nil, yesterday, "2026-08-29")
	require.Equal(t, 2, s.MemberCountChange)

	// No yesterday snapshot: change is 0 rather than guessed.
	s = ComputeTeamStats(members(5), nil, nil, nil, "2026-08-29")
	require.Equal(t, 0, s.MemberCountChange)
}

func TestComputeTeamStats_ZeroMembers(t *testing.T) {
	s := ComputeTeamStats(nil, nil, nil, nil, "2026-08-29")

	require.Equal(t, 0, s.MemberCount)
	require.Equal(t, 0, s.ParticipationRate)
}

func TestParticipationRate_Rounding(t *testing.T) {
	require.Equal(t, 33, ParticipationRate(1, 3))
	require.Equal(t, 67, ParticipationRate(2, 3))
	require.Equal(t, 50, ParticipationRate(1, 2))
	require.Equal(t, 100, ParticipationRate(3, 3))
	require.Equal(t, 0, ParticipationRate(0, 5))
	require.Equal(t, 0, ParticipationRate(1, 0))
}

func TestParticipationRate_MonotonicInCheckIns(t *testing.T) {
	prev := 0
	for c := 0; c <= 7; c++ {
		rate := ParticipationRate(c, 7)
		require.GreaterOrEqual(t, rate, prev)
		require.GreaterOrEqual(t, rate, 0)
		require.LessOrEqual(t, rate, 100)
		prev = rate
	}
}

func TestComputeTeamStats_AvgConditionMean(t *testing.T) {
	checkIns := []models.CheckIn{
		{UserID: 1, Date: "2026-08-29", Condition: 7},
		{UserID: 2, Date: "2026-08-29", Condition: 8},
	}

	s := ComputeTeamStats(members(4), checkIns, nil, nil, "2026-08-29")

	require.Equal(t, 2, s.CheckInCount)
	require.InDelta(t, 7.5, s.AvgCondition, 1e-9)
	require.Equal(t, 50, s.ParticipationRate)
}
