package calendar

import (
	"reflect"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSelectedDatesInclusive(t *testing.T) {
	got := SelectedDates(day("2025-03-01"), day("2025-03-04"))
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSelectedDatesSingleDay(t *testing.T) {
	got := SelectedDates(day("2025-03-01"), day("2025-03-01"))
	if len(got) != 1 || got[0] != "2025-03-01" {
		t.Fatalf("expected single-day sequence, got %v", got)
	}
}

func TestSelectedDatesReversedRange(t *testing.T) {
	if got := SelectedDates(day("2025-03-04"), day("2025-03-01")); got != nil {
		t.Fatalf("expected nil for reversed range, got %v", got)
	}
}

func TestSelectedDatesCrossesMonthBoundary(t *testing.T) {
	got := SelectedDates(day("2025-02-27"), day("2025-03-02"))
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// Re-deriving the sequence from its own endpoints must reproduce it exactly.
func TestSelectedDatesStableUnderRederivation(t *testing.T) {
	first := SelectedDates(day("2025-03-01"), day("2025-03-04"))
	again := SelectedDates(day(first[0]), day(first[len(first)-1]))
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("sequence not stable: %v vs %v", first, again)
	}
}

func TestNights(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
	}{
		{"2025-03-01", "2025-03-04", 3},
		{"2025-03-01", "2025-03-02", 1},
		{"2025-03-01", "2025-03-01", 0},
		{"2025-03-04", "2025-03-01", 0},
	}
	for _, c := range cases {
		if got := Nights(day(c.in), day(c.out)); got != c.want {
			t.Errorf("Nights(%s, %s) = %d, want %d", c.in, c.out, got, c.want)
		}
	}
}
