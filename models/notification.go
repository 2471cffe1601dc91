package models

import "time"

type Notification struct {
	NotificationID string    `json:"notificationid" bson:"notificationid"`
	RecipientID    string    `json:"recipientid" bson:"recipientid"`
	SenderID       string    `json:"senderid,omitempty" bson:"senderid,omitempty"` // empty for system-origin
	Type           string    `json:"type" bson:"type"`
	Message        string    `json:"message" bson:"message"`
	ListingID      string    `json:"listingid,omitempty" bson:"listingid,omitempty"`
	Read           bool      `json:"read" bson:"read"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdat"`
}

// NotificationView is what list endpoints return: the stored record plus a
// relative-time string computed at read time.
type NotificationView struct {
	Notification `bson:",inline"`
	TimeAgo      string `json:"timeAgo" bson:"-"`
}
