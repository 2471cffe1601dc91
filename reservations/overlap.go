package reservations

import (
	"time"

	"perch/calendar"
	"perch/models"
)

// ReleasableDates returns the days of a cancelled reservation's range that no
// other reservation in others still covers. Both check-in and check-out days
// count as held, so a boundary date shared with an adjacent booking is kept
// blocked. Reservations whose dates fail to parse are skipped.
func ReleasableDates(cancelled models.Reservation, others []models.Reservation) []string {
	held := make(map[string]bool)
	for _, o := range others {
		if o.Cancelled {
			continue
		}
		in, err1 := time.Parse(calendar.DateLayout, o.CheckIn)
		out, err2 := time.Parse(calendar.DateLayout, o.CheckOut)
		if err1 != nil || err2 != nil {
			continue
		}
		for _, d := range calendar.SelectedDates(in, out) {
			held[d] = true
		}
	}

	in, err1 := time.Parse(calendar.DateLayout, cancelled.CheckIn)
	out, err2 := time.Parse(calendar.DateLayout, cancelled.CheckOut)
	if err1 != nil || err2 != nil {
		return nil
	}

	var free []string
	for _, d := range calendar.SelectedDates(in, out) {
		if !held[d] {
			free = append(free, d)
		}
	}
	return free
}
