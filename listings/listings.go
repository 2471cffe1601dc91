// Package listings implements the host-facing stay catalog: publishing,
// photos, and the availability calendar surface guests browse.
package listings

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"perch/calendar"
	"perch/db"
	"perch/models"
	"perch/notifications"
	"perch/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// POST /api/listings — host only.
func CreateListing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hostID := utils.GetUserIDFromRequest(r)
	if hostID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		Capacity      int     `json:"capacity"`
		PricePerNight float64 `json:"pricePerNight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Title == "" || body.Capacity <= 0 || body.PricePerNight <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var host models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": hostID}).Decode(&host); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !host.HasRole(models.RoleHost) {
		utils.RespondWithError(w, http.StatusForbidden, "host role required")
		return
	}

	listing := models.Listing{
		ListingID:     uuid.NewString(),
		HostID:        hostID,
		Title:         body.Title,
		Description:   body.Description,
		Capacity:      body.Capacity,
		PricePerNight: body.PricePerNight,
		CreatedAt:     time.Now().Unix(),
	}

	if _, err := db.ListingsCollection.InsertOne(ctx, listing); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	notifications.BroadcastChange("listing-created", listing)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"listing": listing})
}

// GET /api/listings/:id
func GetListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var listing models.Listing
	err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": ps.ByName("id")}).Decode(&listing)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"listing": listing})
}

// GET /api/listings[?author=]
func GetListings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if author := r.URL.Query().Get("author"); author != "" {
		filter["hostid"] = author
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.ListingsCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var list []models.Listing
	if err := cur.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}
	if list == nil {
		list = []models.Listing{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"listings": list})
}

// GET /api/listings/:id/calendar?from=&to= — day flags for the requested
// window; days without a stored flag are bookable and are not listed.
func GetListingCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")

	filter := bson.M{"listingid": listingID}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" || to != "" {
		dateRange := bson.M{}
		if from != "" {
			dateRange["$gte"] = from
		}
		if to != "" {
			dateRange["$lte"] = to
		}
		filter["date"] = dateRange
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.CalendarCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var days []models.AvailabilityDay
	if err := cur.All(ctx, &days); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}
	if days == nil {
		days = []models.AvailabilityDay{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"days": days})
}

// PUT /api/listings/:id/calendar — host blocks or reopens days by hand.
func SetListingAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")

	var body struct {
		Dates     []string `json:"dates"`
		Available bool     `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Dates) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	for _, d := range body.Dates {
		if _, err := time.Parse(calendar.DateLayout, d); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid date "+d)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": listingID}).Decode(&listing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.HostID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "not your listing")
		return
	}

	var err error
	if body.Available {
		err = calendar.ReleaseRange(ctx, listingID, body.Dates)
	} else {
		err = calendar.ReserveRange(ctx, listingID, body.Dates)
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// DELETE /api/listings/:id
func DeleteListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": listingID}).Decode(&listing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.HostID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "not your listing")
		return
	}

	// refuse while active reservations exist
	n, err := db.ReservationsCollection.CountDocuments(ctx, bson.M{
		"listingid": listingID,
		"cancelled": false,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if n > 0 {
		utils.RespondWithError(w, http.StatusConflict, "listing has active reservations")
		return
	}

	if _, err := db.ListingsCollection.DeleteOne(ctx, bson.M{"listingid": listingID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if _, err := db.CalendarCollection.DeleteMany(ctx, bson.M{"listingid": listingID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	notifications.BroadcastChange("listing-deleted", utils.M{"listingid": listingID})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
