package reservations

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"reflect"
	"strings"
	"testing"

	"perch/models"
)

func resv(id, checkIn, checkOut string, cancelled bool) models.Reservation {
	return models.Reservation{
		ReservationID: id,
		ListingID:     "listing-1",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Cancelled:     cancelled,
	}
}

func TestReleasableDatesNoOtherReservations(t *testing.T) {
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-04", true), nil)
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// Cancelling Mar 1-4 while Mar 3-5 is still active must keep Mar 3 and Mar 4
// blocked; only Mar 1 and Mar 2 reopen.
func TestReleasableDatesKeepsOverlapBlocked(t *testing.T) {
	others := []models.Reservation{
		resv("r2", "2025-03-03", "2025-03-05", false),
	}
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-04", true), others)
	want := []string{"2025-03-01", "2025-03-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// A checkout day shared with the next guest's check-in day stays held.
func TestReleasableDatesBoundaryDateStaysHeld(t *testing.T) {
	others := []models.Reservation{
		resv("r2", "2025-03-04", "2025-03-06", false),
	}
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-04", true), others)
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReleasableDatesIgnoresCancelledOthers(t *testing.T) {
	others := []models.Reservation{
		resv("r2", "2025-03-01", "2025-03-04", true),
	}
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-04", true), others)
	if len(got) != 4 {
		t.Fatalf("cancelled reservation held dates: %v", got)
	}
}

func TestReleasableDatesFullyCovered(t *testing.T) {
	others := []models.Reservation{
		resv("r2", "2025-03-01", "2025-03-02", false),
		resv("r3", "2025-03-02", "2025-03-04", false),
	}
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-04", true), others)
	if got != nil {
		t.Fatalf("expected nothing releasable, got %v", got)
	}
}

func TestReleasableDatesSkipsMalformedOthers(t *testing.T) {
	others := []models.Reservation{
		resv("r2", "not-a-date", "2025-03-05", false),
	}
	got := ReleasableDates(resv("r1", "2025-03-01", "2025-03-03", true), others)
	if len(got) != 3 {
		t.Fatalf("malformed reservation affected the result: %v", got)
	}
}

func TestConfirmationPayloadSignatureVerifies(t *testing.T) {
	payload := confirmationPayload("listing-1", "ABC123XYZ")

	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		t.Fatalf("unexpected payload shape %q", payload)
	}
	if parts[0] != "listing-1" || parts[1] != "ABC123XYZ" {
		t.Fatalf("payload fields wrong: %q", payload)
	}

	data := strings.Join(parts[:3], "|")
	h := hmac.New(sha256.New, confirmationSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if parts[3] != want {
		t.Fatal("signature does not verify")
	}
}
