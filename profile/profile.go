// Package profile serves author profiles and the host promotion workflow:
// travelers request the host role, founders approve, reject, or later demote.
package profile

import (
	"context"
	"log"
	"net/http"
	"time"

	"perch/db"
	"perch/models"
	"perch/notifications"
	"perch/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GET /api/profile/:id
func GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": ps.ByName("id")}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "author not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"profile": user})
}

func loadUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func requireFounder(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.User {
	actor, err := loadUser(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	if !actor.HasRole(models.RoleFounder) {
		utils.RespondWithError(w, http.StatusForbidden, "founder role required")
		return nil
	}
	return actor
}

// POST /api/profile/host-request — a traveler asks to become a host; every
// founder is notified.
func RequestHostRole(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	requester, err := loadUser(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if requester.HasRole(models.RoleHost) {
		utils.RespondWithError(w, http.StatusConflict, "already a host")
		return
	}

	if err := notifications.NotifyHostRequest(ctx, requester.UserID, requester.Username); err != nil {
		log.Printf("host request by %s: %v", requester.UserID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// PUT /api/profile/:id/host-approve — founder only.
func ApproveHostRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actor := requireFounder(ctx, w, r)
	if actor == nil {
		return
	}

	subjectID := ps.ByName("id")
	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": subjectID},
		bson.M{"$addToSet": bson.M{"role": models.RoleHost}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := notifications.NotifyHostApproval(ctx, subjectID, actor.UserID); err != nil {
		log.Printf("approval notification to %s failed: %v", subjectID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// PUT /api/profile/:id/host-reject — founder only.
func RejectHostRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actor := requireFounder(ctx, w, r)
	if actor == nil {
		return
	}

	subjectID := ps.ByName("id")
	if _, err := loadUser(ctx, subjectID); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := notifications.NotifyHostRejection(ctx, subjectID, actor.UserID); err != nil {
		log.Printf("rejection notification to %s failed: %v", subjectID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// PUT /api/profile/:id/demote — founder strips the host role; the author
// becomes a plain traveler again.
func DemoteToTraveler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actor := requireFounder(ctx, w, r)
	if actor == nil {
		return
	}

	subjectID := ps.ByName("id")
	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": subjectID},
		bson.M{"$pull": bson.M{"role": models.RoleHost}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := notifications.NotifyDemotionToTraveler(ctx, subjectID, actor.UserID); err != nil {
		log.Printf("demotion notification to %s failed: %v", subjectID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
