package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/checkin-api/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateFormat, s)
	require.NoError(t, err)
	return d
}

func checkInsOn(dates ...string) []models.CheckIn {
	cis := make([]models.CheckIn, len(dates))
	for i, d := range dates {
		cis[i] = models.CheckIn{UserID: 1, Date: d}
	}
	return cis
}

func TestStreak_NoCheckIns(t *testing.T) {
	require.Equal(t, 0, Streak(nil, day(t, "2026-08-29")))
}

func TestStreak_TodayNotCheckedInDoesNotBreakRun(t *testing.T) {
	// Run covers D-4..D-1 with nothing on D: the streak is 4, not 0.
	cis := checkInsOn("2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28")
	require.Equal(t, 4, Streak(cis, day(t, "2026-08-29")))
}

func TestStreak_TodayCheckedInExtendsRun(t *testing.T) {
	cis := checkInsOn("2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28", "2026-08-29")
	require.Equal(t, 5, Streak(cis, day(t, "2026-08-29")))
}

func TestStreak_StopsAtGap(t *testing.T) {
	// Gap on D-2 cuts the run to yesterday and the day before it.
	cis := checkInsOn("2026-08-24", "2026-08-25", "2026-08-28", "2026-08-29")
	require.Equal(t, 2, Streak(cis, day(t, "2026-08-29")))
}

func TestStreak_OnlyOldCheckIns(t *testing.T) {
	// A run that ended before yesterday is not a current streak.
	cis := checkInsOn("2026-08-20", "2026-08-21")
	require.Equal(t, 0, Streak(cis, day(t, "2026-08-29")))
}

func TestStreak_SingleDayToday(t *testing.T) {
	cis := checkInsOn("2026-08-29")
	require.Equal(t, 1, Streak(cis, day(t, "2026-08-29")))
}

func TestStreak_CrossesMonthBoundary(t *testing.T) {
	cis := checkInsOn("2026-07-30", "2026-07-31", "2026-08-01")
	require.Equal(t, 3, Streak(cis, day(t, "2026-08-01")))
}
