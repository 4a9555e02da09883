// Package stats holds the derived team metrics. Everything here is a pure
// function over already-materialized collections; callers supply the
// reference day so the package never reads the clock.
package stats

import (
	"math"
	"time"

	"github.com/yukikurage/checkin-api/internal/models"
)

// TeamStats is the per-day aggregate surfaced on the project detail view.
// AvgCondition is full precision; rounding for display is a caller concern.
type TeamStats struct {
	MemberCount       int     `json:"member_count"`
	CheckInCount      int     `json:"check_in_count"`
	AvgCondition      float64 `json:"avg_condition"`
	ParticipationRate int     `json:"participation_rate"`
	MemberCountChange int     `json:"member_count_change"`
}

// ComputeTeamStats derives the team stats for the given reference day.
//
// When a materialized DailyStat row exists for that day it is the fast path
// and its values are used directly. Otherwise the stats are computed live
// from the members and check-ins collections. MemberCountChange is only
// derivable from a snapshot of the previous day; without one it is 0, since
// yesterday's membership size cannot be reconstructed from current rows.
func ComputeTeamStats(members []models.ProjectMember, checkIns []models.CheckIn, todaySnap, yesterdaySnap *models.DailyStat, today string) TeamStats {
	var s TeamStats

	if todaySnap != nil {
		s.MemberCount = todaySnap.MemberCount
		s.CheckInCount = todaySnap.CheckInCount
		s.AvgCondition = todaySnap.AvgCondition
		s.ParticipationRate = todaySnap.ParticipationRate
	} else {
		s.MemberCount = len(members)
		s.CheckInCount, s.AvgCondition = todayCheckIns(checkIns, today)
		s.ParticipationRate = ParticipationRate(s.CheckInCount, s.MemberCount)
	}

	if yesterdaySnap != nil {
		s.MemberCountChange = s.MemberCount - yesterdaySnap.MemberCount
	}

	return s
}

// ParticipationRate returns round(checkInCount/memberCount*100), clamped to
// 0 when there are no members. Rounding is half-up.
func ParticipationRate(checkInCount, memberCount int) int {
	if memberCount == 0 {
		return 0
	}
	return int(math.Floor(float64(checkInCount)/float64(memberCount)*100 + 0.5))
}

// todayCheckIns returns the count and mean condition of check-ins dated on
// the reference day. The mean is 0, not NaN, when there are none.
func todayCheckIns(checkIns []models.CheckIn, today string) (int, float64) {
	count := 0
	sum := 0
	for _, ci := range checkIns {
		if ci.Date == today {
			count++
			sum += ci.Condition
		}
	}
	if count == 0 {
		return 0, 0
	}
	return count, float64(sum) / float64(count)
}

// Today formats a time as the calendar-day key used throughout the stats
// tables.
func Today(t time.Time) string {
	return t.Format(models.DateFormat)
}

// Yesterday returns the day key one calendar day before t.
func Yesterday(t time.Time) string {
	return t.AddDate(0, 0, -1).Format(models.DateFormat)
}
