package notifications

import (
	"strings"
	"testing"
	"time"
)

func TestRenderMessageKnownTypes(t *testing.T) {
	cases := []struct {
		typ  string
		args []string
		want string
	}{
		{TypeHostRequest, []string{"maya"}, "maya has requested to become a host."},
		{TypeHostApproved, nil, "Your host request has been approved. You can now publish listings."},
		{TypeHostRejected, nil, "Your host request has been rejected."},
		{TypeDemotedToTraveler, nil, "Your host privileges were removed. Your account is a traveler again."},
		{TypeStayReviewed, []string{"jon"}, "jon reviewed your stay."},
		{TypeReservationMade, []string{"ada"}, "ada booked your stay."},
		{TypeReservationMade, []string{"ada", "arriving late"}, `ada booked your stay: "arriving late"`},
		{TypeReservationCancelled, []string{"ada"}, "ada cancelled their reservation."},
	}
	for _, c := range cases {
		if got := renderMessage(c.typ, c.args...); got != c.want {
			t.Errorf("renderMessage(%s, %v) = %q, want %q", c.typ, c.args, got, c.want)
		}
	}
}

func TestRenderMessageUnknownTypeFallsBack(t *testing.T) {
	got := renderMessage("something-new", "a", "b")
	if got != "You have a new notification." {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestRenderMessageMissingArgs(t *testing.T) {
	// missing positional args render as empty strings, never panic
	got := renderMessage(TypeStayReviewed)
	if !strings.HasSuffix(got, "reviewed your stay.") {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRelativeTimeBuckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-5 * time.Second), "5 seconds ago"},
		{now.Add(-59 * time.Second), "59 seconds ago"},
		{now.Add(-90 * time.Second), "1 minutes ago"},
		{now.Add(-59 * time.Minute), "59 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-26 * time.Hour), "1 days ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
	}
	for _, c := range cases {
		if got := relativeTime(now, c.at); got != c.want {
			t.Errorf("relativeTime(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}

// Future timestamps use absolute elapsed time and still read "ago".
func TestRelativeTimeFutureTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := relativeTime(now, now.Add(2*time.Hour)); got != "2 hours ago" {
		t.Fatalf("future timestamp rendered %q", got)
	}
}
