package reviews

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"perch/db"
	"perch/models"
	"perch/notifications"
	"perch/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POST /api/listings/:id/reviews — only a guest who completed a stay may
// review it; the host is notified.
func AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")
	authorID := utils.GetUserIDFromRequest(r)
	if authorID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "rating must be 1-5")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": listingID}).Decode(&listing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	}

	stayed, err := db.ReservationsCollection.CountDocuments(ctx, bson.M{
		"listingid": listingID,
		"guestid":   authorID,
		"cancelled": false,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if stayed == 0 {
		utils.RespondWithError(w, http.StatusForbidden, "only guests with a reservation may review")
		return
	}

	review := models.Review{
		ReviewID:  uuid.NewString(),
		ListingID: listingID,
		AuthorID:  authorID,
		Rating:    body.Rating,
		Comment:   body.Comment,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := db.ReviewsCollection.InsertOne(ctx, review); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	var author models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": authorID}).Decode(&author); err == nil {
		if err := notifications.NotifyStayReview(ctx, listing.HostID, authorID, author.Username, listingID); err != nil {
			log.Printf("review notification for %s failed: %v", review.ReviewID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"review": review})
}

// GET /api/listings/:id/reviews
func GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.ReviewsCollection.Find(ctx,
		bson.M{"listingid": ps.ByName("id")},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var list []models.Review
	if err := cur.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}
	if list == nil {
		list = []models.Review{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reviews": list})
}
