package stats

import (
	"time"

	"github.com/yukikurage/checkin-api/internal/models"
)

// Streak returns the user's consecutive-day check-in count ending at the
// reference day.
//
// The cursor starts at today; if today has no check-in the cursor steps back
// one day first, so a run that ended yesterday is reported at full length
// rather than provisionally shortened. From there each consecutive day with
// a check-in extends the streak, and the first gap stops the walk.
func Streak(checkIns []models.CheckIn, today time.Time) int {
	if len(checkIns) == 0 {
		return 0
	}

	days := make(map[string]bool, len(checkIns))
	for _, ci := range checkIns {
		days[ci.Date] = true
	}

	cursor := today
	if !days[cursor.Format(models.DateFormat)] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for days[cursor.Format(models.DateFormat)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
