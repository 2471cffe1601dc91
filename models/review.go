package models

type Review struct {
	ReviewID  string `json:"reviewid" bson:"reviewid"`
	ListingID string `json:"listingid" bson:"listingid"`
	AuthorID  string `json:"authorid" bson:"authorid"`
	Rating    int    `json:"rating" bson:"rating"`
	Comment   string `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"`
}
