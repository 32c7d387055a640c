package erail

import (
	"sort"
	"time"

	"github.com/easyrail/easyrail_core/internal/models"
)

// SortByDeparture orders trains by departure minutes since midnight. The sort
// is stable; trains whose departure cannot be parsed go last in input order.
func SortByDeparture(trains []models.TrainRecord) {
	keys := make([]int, len(trains))
	valid := make([]bool, len(trains))
	for i, t := range trains {
		if m, err := MinutesSinceMidnight(t.DepartureTime); err == nil {
			keys[i], valid[i] = m, true
		}
	}

	idx := make([]int, len(trains))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return valid[ia] && keys[ia] < keys[ib]
	})

	sorted := make([]models.TrainRecord, len(trains))
	for i, j := range idx {
		sorted[i] = trains[j]
	}
	copy(trains, sorted)
}

// FilterRunningOn keeps trains that run on the weekday of date
func FilterRunningOn(trains []models.TrainRecord, date time.Time) []models.TrainRecord {
	out := make([]models.TrainRecord, 0, len(trains))
	for _, t := range trains {
		if RunsOn(t.RunningDays, date) {
			out = append(out, t)
		}
	}
	return out
}
