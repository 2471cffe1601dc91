// Package notifications persists notification records, renders their
// human-readable messages, and pushes them to the recipient's realtime topic.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"perch/db"
	"perch/models"
	"perch/utils"
	"perch/websock"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Message-type tags. The template set is closed; anything else renders the
// generic fallback.
const (
	TypeHostRequest          = "host-request"
	TypeHostApproved         = "host-approved"
	TypeHostRejected         = "host-rejected"
	TypeDemotedToTraveler    = "demoted-to-traveler"
	TypeStayReviewed         = "stay-reviewed"
	TypeReservationMade      = "reservation-made"
	TypeReservationCancelled = "reservation-cancelled"
)

var ErrRecipientNotFound = errors.New("recipient not found")

// renderMessage turns a type tag plus positional args into the fixed
// sentence stored on the notification.
func renderMessage(typ string, args ...string) string {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch typ {
	case TypeHostRequest:
		return fmt.Sprintf("%s has requested to become a host.", arg(0))
	case TypeHostApproved:
		return "Your host request has been approved. You can now publish listings."
	case TypeHostRejected:
		return "Your host request has been rejected."
	case TypeDemotedToTraveler:
		return "Your host privileges were removed. Your account is a traveler again."
	case TypeStayReviewed:
		return fmt.Sprintf("%s reviewed your stay.", arg(0))
	case TypeReservationMade:
		if note := arg(1); note != "" {
			return fmt.Sprintf("%s booked your stay: %q", arg(0), note)
		}
		return fmt.Sprintf("%s booked your stay.", arg(0))
	case TypeReservationCancelled:
		return fmt.Sprintf("%s cancelled their reservation.", arg(0))
	default:
		return "You have a new notification."
	}
}

// relativeTime renders elapsed time rounded down; absolute elapsed is used so
// clock skew (a future timestamp) still reads "... ago".
func relativeTime(now, t time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = -elapsed
	}

	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(elapsed.Seconds()))
	case elapsed < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(elapsed.Hours()/24))
	}
}

// Create resolves the recipient, renders and persists the notification, and
// pushes it to the recipient's private topic. senderID may be empty for
// system-origin notifications.
func Create(ctx context.Context, recipientID, senderID, typ, listingID string, args ...string) (*models.Notification, error) {
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": recipientID}).Err()
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecipientNotFound
	} else if err != nil {
		return nil, err
	}

	n := models.Notification{
		NotificationID: uuid.NewString(),
		RecipientID:    recipientID,
		SenderID:       senderID,
		Type:           typ,
		Message:        renderMessage(typ, args...),
		ListingID:      listingID,
		Read:           false,
		CreatedAt:      time.Now(),
	}

	if _, err := db.NotificationsCollection.InsertOne(ctx, n); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(n); err == nil {
		websock.PushToAuthor(recipientID, data)
	}
	return &n, nil
}

// BroadcastChange pushes a typed entity-change event to the shared changes
// topic consumed by every connected client.
func BroadcastChange(changeType string, payload any) {
	data, err := json.Marshal(map[string]any{
		"type":    changeType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("broadcast %s: marshal failed: %v", changeType, err)
		return
	}
	websock.PushChanges(data)
}

// ---------- Handlers ----------

// POST /api/notifications
func CreateNotification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		RecipientID string   `json:"recipientId"`
		SenderID    string   `json:"senderId,omitempty"`
		Type        string   `json:"type"`
		ListingID   string   `json:"listingId,omitempty"`
		Args        []string `json:"args,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.RecipientID == "" || body.Type == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := Create(ctx, body.RecipientID, body.SenderID, body.Type, body.ListingID, body.Args...)
	if err == ErrRecipientNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "recipient not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"notification": n})
}

// GET /api/notifications/author/:id
func GetNotificationsForAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	authorID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := db.NotificationsCollection.Find(ctx,
		bson.M{"recipientid": authorID},
		options.Find().SetSort(bson.M{"createdat": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var stored []models.Notification
	if err := cur.All(ctx, &stored); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "decode error")
		return
	}

	now := time.Now()
	views := make([]models.NotificationView, 0, len(stored))
	for _, n := range stored {
		views = append(views, models.NotificationView{
			Notification: n,
			TimeAgo:      relativeTime(now, n.CreatedAt),
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"notifications": views})
}

var errNotificationMissing = errors.New("notification not found")

// markRead applies the read transition through update. The update matches an
// already-read notification too, so re-marking is a plain success: the
// transition is idempotent.
func markRead(ctx context.Context, id string, update func(ctx context.Context, id string) (matched int64, err error)) error {
	matched, err := update(ctx, id)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errNotificationMissing
	}
	return nil
}

func setReadFlag(ctx context.Context, id string) (int64, error) {
	res, err := db.NotificationsCollection.UpdateOne(ctx,
		bson.M{"notificationid": id},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// PUT /api/notifications/:id/read — idempotent; re-marking a read
// notification is a no-op success.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := markRead(ctx, id, setReadFlag)
	if err == errNotificationMissing {
		utils.RespondWithError(w, http.StatusNotFound, "notification not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// POST /api/notifications/read — bulk variant, equivalent to repeated
// single marks.
func MarkNotificationsRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.NotificationsCollection.UpdateMany(ctx,
		bson.M{"notificationid": bson.M{"$in": body.IDs}},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "matched": res.MatchedCount})
}
