// Package calendar is the single source of truth for whether a day on a
// listing is bookable. It is a pure flag-setter: conflict detection lives in
// the reservations package, where it can be combined with the per-listing
// lock. Nothing outside this package writes the day-flag collection.
package calendar

import (
	"context"
	"time"

	"perch/db"
	"perch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DateLayout = "2006-01-02"

// SelectedDates returns the inclusive day sequence from checkIn to checkOut,
// both endpoints included. This is the blocking range, independent of the
// night count used for pricing. checkOut before checkIn yields nil.
func SelectedDates(checkIn, checkOut time.Time) []string {
	checkIn = checkIn.Truncate(24 * time.Hour)
	checkOut = checkOut.Truncate(24 * time.Hour)
	if checkOut.Before(checkIn) {
		return nil
	}

	var dates []string
	for d := checkIn; !d.After(checkOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// Nights counts billable nights: inclusive of check-in, exclusive of check-out.
func Nights(checkIn, checkOut time.Time) int {
	n := int(checkOut.Truncate(24*time.Hour).Sub(checkIn.Truncate(24*time.Hour)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// IsRangeAvailable reports whether every date in the sequence is bookable.
// A day with no flag document counts as available.
func IsRangeAvailable(ctx context.Context, listingID string, dates []string) (bool, error) {
	if len(dates) == 0 {
		return true, nil
	}

	count, err := db.CalendarCollection.CountDocuments(ctx, bson.M{
		"listingid": listingID,
		"date":      bson.M{"$in": dates},
		"available": false,
	})
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ReserveRange marks every date in the sequence unavailable. Flags are set
// unconditionally; callers that need atomicity must hold the listing lock
// and check IsRangeAvailable first.
func ReserveRange(ctx context.Context, listingID string, dates []string) error {
	return setRange(ctx, listingID, dates, false)
}

// ReleaseRange marks every date in the sequence available again.
func ReleaseRange(ctx context.Context, listingID string, dates []string) error {
	return setRange(ctx, listingID, dates, true)
}

func setRange(ctx context.Context, listingID string, dates []string, available bool) error {
	if len(dates) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(dates))
	for _, date := range dates {
		day := models.AvailabilityDay{ListingID: listingID, Date: date, Available: available}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"listingid": listingID, "date": date}).
			SetUpdate(bson.M{"$set": day}).
			SetUpsert(true))
	}

	_, err := db.CalendarCollection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}
