package notifications

import (
	"context"
	"log"

	"perch/db"
	"perch/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Domain-event helpers. These are thin wrappers over Create with the right
// template key; callers on the reservation path treat failures as
// best-effort (logged, never propagated into the calling transaction).

// NotifyHostRequest fans out to every author holding the founder role, not a
// single recipient.
func NotifyHostRequest(ctx context.Context, requesterID, requesterName string) error {
	cur, err := db.UserCollection.Find(ctx, bson.M{"role": models.RoleFounder})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var founders []models.User
	if err := cur.All(ctx, &founders); err != nil {
		return err
	}

	for _, founder := range founders {
		if _, err := Create(ctx, founder.UserID, requesterID, TypeHostRequest, "", requesterName); err != nil {
			log.Printf("host-request notification to %s failed: %v", founder.UserID, err)
		}
	}
	return nil
}

func NotifyHostApproval(ctx context.Context, recipientID, approverID string) error {
	_, err := Create(ctx, recipientID, approverID, TypeHostApproved, "")
	return err
}

func NotifyHostRejection(ctx context.Context, recipientID, approverID string) error {
	_, err := Create(ctx, recipientID, approverID, TypeHostRejected, "")
	return err
}

func NotifyDemotionToTraveler(ctx context.Context, recipientID, actorID string) error {
	_, err := Create(ctx, recipientID, actorID, TypeDemotedToTraveler, "")
	return err
}

func NotifyStayReview(ctx context.Context, hostID, reviewerID, reviewerName, listingID string) error {
	_, err := Create(ctx, hostID, reviewerID, TypeStayReviewed, listingID, reviewerName)
	return err
}

func NotifyReservation(ctx context.Context, hostID, guestID, guestName, note, listingID string) error {
	_, err := Create(ctx, hostID, guestID, TypeReservationMade, listingID, guestName, note)
	return err
}

func NotifyReservationCancellation(ctx context.Context, hostID, guestID, guestName, listingID string) error {
	_, err := Create(ctx, hostID, guestID, TypeReservationCancelled, listingID, guestName)
	return err
}
