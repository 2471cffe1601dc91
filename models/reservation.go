package models

type Reservation struct {
	ReservationID string  `json:"reservationid" bson:"reservationid"`
	ListingID     string  `json:"listingid" bson:"listingid"`
	GuestID       string  `json:"guestid" bson:"guestid"`
	CheckIn       string  `json:"checkIn" bson:"checkin"`   // 2006-01-02
	CheckOut      string  `json:"checkOut" bson:"checkout"` // 2006-01-02
	Adults        int     `json:"adults" bson:"adults"`
	Children      int     `json:"children" bson:"children"`
	Nights        int     `json:"nights" bson:"nights"`
	TotalPrice    float64 `json:"totalPrice" bson:"totalprice"`
	BookingCode   string  `json:"bookingCode" bson:"bookingcode"`
	Message       string  `json:"message,omitempty" bson:"message,omitempty"`
	Cancelled     bool    `json:"cancelled" bson:"cancelled"`
	CreatedAt     int64   `json:"createdAt" bson:"createdAt"`
}
