package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"perch/calendar"
	"perch/db"
	"perch/models"
	"perch/notifications"
	"perch/rdx"
	"perch/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	bookingCodeLength  = 9
	bookingCodeRetries = 5
)

func newBookingCode(ctx context.Context) (string, error) {
	// regenerate on collision, bounded; the unique index on bookingcode is
	// the backstop for the remaining race
	for i := 0; i < bookingCodeRetries; i++ {
		code := utils.GenerateBookingCode(bookingCodeLength)
		n, err := db.ReservationsCollection.CountDocuments(ctx, bson.M{"bookingcode": code})
		if err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique booking code")
}

// POST /api/reservations
func CreateReservation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		ListingID string `json:"listingId"`
		GuestID   string `json:"guestId"`
		CheckIn   string `json:"checkIn"`
		CheckOut  string `json:"checkOut"`
		Adults    int    `json:"adults"`
		Children  int    `json:"children"`
		Message   string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	guestID := body.GuestID
	if guestID == "" {
		guestID = utils.GetUserIDFromRequest(r)
	}
	if body.ListingID == "" || guestID == "" || body.CheckIn == "" || body.CheckOut == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	checkIn, err1 := time.Parse(calendar.DateLayout, body.CheckIn)
	checkOut, err2 := time.Parse(calendar.DateLayout, body.CheckOut)
	if err1 != nil || err2 != nil || !checkOut.After(checkIn) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": body.ListingID}).Decode(&listing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	}
	var guest models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": guestID}).Decode(&guest); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "guest not found")
		return
	}

	dates := calendar.SelectedDates(checkIn, checkOut)

	code, err := newBookingCode(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "booking code generation failed")
		return
	}

	err = claimDates(ctx, liveCalendar{}, acquireListingLock, listing.ListingID, dates)
	switch {
	case errors.Is(err, ErrListingBusy):
		utils.RespondWithError(w, http.StatusConflict, "listing is busy, retry")
		return
	case errors.Is(err, ErrDatesConflict):
		utils.RespondWithError(w, http.StatusConflict, "selected dates are no longer available")
		return
	case err != nil:
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	nights := calendar.Nights(checkIn, checkOut)
	resv := models.Reservation{
		ReservationID: uuid.NewString(),
		ListingID:     listing.ListingID,
		GuestID:       guest.UserID,
		CheckIn:       body.CheckIn,
		CheckOut:      body.CheckOut,
		Adults:        body.Adults,
		Children:      body.Children,
		Nights:        nights,
		TotalPrice:    float64(nights) * listing.PricePerNight,
		BookingCode:   code,
		Message:       body.Message,
		Cancelled:     false,
		CreatedAt:     time.Now().Unix(),
	}

	if _, err := db.ReservationsCollection.InsertOne(ctx, resv); err != nil {
		// undo the calendar write so the unit stays atomic; the range was
		// verified free above, so releasing it all is safe
		if relErr := calendar.ReleaseRange(ctx, listing.ListingID, dates); relErr != nil {
			log.Printf("rollback of %s failed: %v", resv.ReservationID, relErr)
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	// best effort; never fails the reservation
	notifyReservationMade(listing, guest, resv)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"reservation": resv})
}

func notifyReservationMade(listing models.Listing, guest models.User, resv models.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := notifications.NotifyReservation(ctx, listing.HostID, guest.UserID, guest.Username, resv.Message, listing.ListingID); err != nil {
		log.Printf("reservation notification for %s failed: %v", resv.ReservationID, err)
	}
}

// PUT /api/reservations/:id/cancel
func CancelReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resv models.Reservation
	if err := db.ReservationsCollection.FindOne(ctx, bson.M{"reservationid": id}).Decode(&resv); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "reservation not found")
		return
	}
	if resv.Cancelled {
		// already terminal; nothing to release again
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"reservation": resv})
		return
	}

	if _, err := db.ReservationsCollection.UpdateOne(ctx,
		bson.M{"reservationid": id},
		bson.M{"$set": bson.M{"cancelled": true}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	resv.Cancelled = true

	// Release only days no other active reservation still holds; a boundary
	// date shared with an adjacent booking must stay blocked.
	cur, err := db.ReservationsCollection.Find(ctx, bson.M{
		"listingid":     resv.ListingID,
		"cancelled":     false,
		"reservationid": bson.M{"$ne": resv.ReservationID},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	var others []models.Reservation
	if err := cur.All(ctx, &others); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}

	releasable := ReleasableDates(resv, others)
	if err := calendar.ReleaseRange(ctx, resv.ListingID, releasable); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	notifyCancellation(ctx, resv)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reservation": resv})
}

func notifyCancellation(ctx context.Context, resv models.Reservation) {
	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": resv.ListingID}).Decode(&listing); err != nil {
		log.Printf("cancellation notification: listing %s lookup failed: %v", resv.ListingID, err)
		return
	}
	guestName := guestUsername(ctx, resv.GuestID)
	if guestName == "" {
		log.Printf("cancellation notification: guest %s lookup failed", resv.GuestID)
		return
	}
	if err := notifications.NotifyReservationCancellation(ctx, listing.HostID, resv.GuestID, guestName, listing.ListingID); err != nil {
		log.Printf("cancellation notification for %s failed: %v", resv.ReservationID, err)
	}
}

// guestUsername reads the username cache populated at registration and falls
// back to Mongo.
func guestUsername(ctx context.Context, userID string) string {
	if name, err := rdx.RdxGet("users:" + userID); err == nil && name != "" {
		return name
	}
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		return ""
	}
	return user.Username
}

// GET /api/reservations/:id
func GetReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resv models.Reservation
	err := db.ReservationsCollection.FindOne(ctx, bson.M{"reservationid": ps.ByName("id")}).Decode(&resv)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "reservation not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reservation": resv})
}

// GET /api/reservations[?author=|?listing=]
func GetReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if author := r.URL.Query().Get("author"); author != "" {
		filter["guestid"] = author
	}
	if listing := r.URL.Query().Get("listing"); listing != "" {
		filter["listingid"] = listing
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.ReservationsCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var list []models.Reservation
	if err := cur.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}
	if list == nil {
		list = []models.Reservation{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reservations": list})
}

// DELETE /api/reservations/author/:id/canceled — housekeeping purge of
// cancelled rows for one guest; dates were already released at cancel time.
func DeleteCanceledReservationsByGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ReservationsCollection.DeleteMany(ctx, bson.M{
		"guestid":   ps.ByName("id"),
		"cancelled": true,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
