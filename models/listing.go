package models

type Listing struct {
	ListingID     string   `json:"listingid" bson:"listingid"`
	HostID        string   `json:"hostid" bson:"hostid"`
	Title         string   `json:"title" bson:"title"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	Capacity      int      `json:"capacity" bson:"capacity"`
	PricePerNight float64  `json:"pricePerNight" bson:"pricePerNight"`
	Photos        []string `json:"photos,omitempty" bson:"photos,omitempty"`
	CreatedAt     int64    `json:"createdAt" bson:"createdAt"`
}

// AvailabilityDay is a single day-flag: one document per (listing, date)
// that has ever been set. Absence of a document means the day is bookable.
type AvailabilityDay struct {
	ListingID string `json:"listingid" bson:"listingid"`
	Date      string `json:"date" bson:"date"` // 2006-01-02
	Available bool   `json:"available" bson:"available"`
}
