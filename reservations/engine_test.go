package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"perch/calendar"
)

// fakeCalendar is an in-memory day-flag store.
type fakeCalendar struct {
	mu          sync.Mutex
	unavailable map[string]bool // listingID|date
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{unavailable: make(map[string]bool)}
}

func (f *fakeCalendar) IsRangeAvailable(_ context.Context, listingID string, dates []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range dates {
		if f.unavailable[listingID+"|"+d] {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeCalendar) ReserveRange(_ context.Context, listingID string, dates []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range dates {
		f.unavailable[listingID+"|"+d] = true
	}
	return nil
}

// mutexLock hands the listing lock to one caller at a time, like the Redis
// SetNX lock does in production.
func mutexLock() func(string) (func(), bool) {
	var mu sync.Mutex
	return func(string) (func(), bool) {
		mu.Lock()
		return mu.Unlock, true
	}
}

func dateRange(t *testing.T, in, out string) []string {
	t.Helper()
	checkIn, err := time.Parse(calendar.DateLayout, in)
	if err != nil {
		t.Fatal(err)
	}
	checkOut, err := time.Parse(calendar.DateLayout, out)
	if err != nil {
		t.Fatal(err)
	}
	return calendar.SelectedDates(checkIn, checkOut)
}

func TestClaimDatesOverlapLoserSeesConflict(t *testing.T) {
	cal := newFakeCalendar()
	lock := mutexLock()

	if err := claimDates(context.Background(), cal, lock, "listing-1", dateRange(t, "2025-03-01", "2025-03-04")); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	err := claimDates(context.Background(), cal, lock, "listing-1", dateRange(t, "2025-03-03", "2025-03-05"))
	if !errors.Is(err, ErrDatesConflict) {
		t.Fatalf("overlapping claim got %v, want ErrDatesConflict", err)
	}
}

// Two overlapping requests racing for the same listing: exactly one wins,
// the other sees the conflict.
func TestClaimDatesConcurrentOverlapHasOneWinner(t *testing.T) {
	cal := newFakeCalendar()
	lock := mutexLock()

	ranges := [][]string{
		dateRange(t, "2025-03-01", "2025-03-04"),
		dateRange(t, "2025-03-03", "2025-03-05"),
	}

	var wg sync.WaitGroup
	results := make([]error, len(ranges))
	for i, dates := range ranges {
		wg.Add(1)
		go func(i int, dates []string) {
			defer wg.Done()
			results[i] = claimDates(context.Background(), cal, lock, "listing-1", dates)
		}(i, dates)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDatesConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("got %d winners and %d conflicts, want exactly one of each", wins, conflicts)
	}
}

func TestClaimDatesDisjointRangesBothSucceed(t *testing.T) {
	cal := newFakeCalendar()
	lock := mutexLock()

	if err := claimDates(context.Background(), cal, lock, "listing-1", dateRange(t, "2025-03-01", "2025-03-03")); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := claimDates(context.Background(), cal, lock, "listing-1", dateRange(t, "2025-03-04", "2025-03-06")); err != nil {
		t.Fatalf("disjoint claim failed: %v", err)
	}
}

func TestClaimDatesLockUnavailable(t *testing.T) {
	busy := func(string) (func(), bool) { return nil, false }
	err := claimDates(context.Background(), newFakeCalendar(), busy, "listing-1", dateRange(t, "2025-03-01", "2025-03-03"))
	if !errors.Is(err, ErrListingBusy) {
		t.Fatalf("got %v, want ErrListingBusy", err)
	}
}
