package reservations

import (
	"context"
	"errors"

	"perch/calendar"
)

// calendarStore is the slice of the calendar package the booking decision
// needs; tests hand in an in-memory fake.
type calendarStore interface {
	IsRangeAvailable(ctx context.Context, listingID string, dates []string) (bool, error)
	ReserveRange(ctx context.Context, listingID string, dates []string) error
}

var (
	ErrListingBusy   = errors.New("listing is busy")
	ErrDatesConflict = errors.New("selected dates are no longer available")
)

// claimDates is the race-sensitive heart of reservation creation: take the
// listing lock, re-check the range, and only then mark it unavailable. Of
// two overlapping concurrent claims exactly one wins; the loser gets
// ErrDatesConflict.
func claimDates(ctx context.Context, cal calendarStore, acquire func(listingID string) (func(), bool), listingID string, dates []string) error {
	unlock, ok := acquire(listingID)
	if !ok {
		return ErrListingBusy
	}
	defer unlock()

	available, err := cal.IsRangeAvailable(ctx, listingID, dates)
	if err != nil {
		return err
	}
	if !available {
		return ErrDatesConflict
	}
	return cal.ReserveRange(ctx, listingID, dates)
}

// liveCalendar adapts the calendar package to calendarStore.
type liveCalendar struct{}

func (liveCalendar) IsRangeAvailable(ctx context.Context, listingID string, dates []string) (bool, error) {
	return calendar.IsRangeAvailable(ctx, listingID, dates)
}

func (liveCalendar) ReserveRange(ctx context.Context, listingID string, dates []string) error {
	return calendar.ReserveRange(ctx, listingID, dates)
}
