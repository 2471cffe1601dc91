package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection          *mongo.Collection
	ListingsCollection      *mongo.Collection
	CalendarCollection      *mongo.Collection
	ReservationsCollection  *mongo.Collection
	NotificationsCollection *mongo.Collection
	ReviewsCollection       *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("perchdb")
	UserCollection = database.Collection("users")
	ListingsCollection = database.Collection("listings")
	CalendarCollection = database.Collection("calendar")
	ReservationsCollection = database.Collection("reservations")
	NotificationsCollection = database.Collection("notifications")
	ReviewsCollection = database.Collection("reviews")

	if err := EnsureIndexes(context.TODO()); err != nil {
		log.Printf("Failed to create indexes: %v", err)
	}
}

// EnsureIndexes creates the indexes the reservation engine depends on:
// one day-flag document per (listing, date) and system-wide unique booking codes.
func EnsureIndexes(ctx context.Context) error {
	_, err := CalendarCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listingid", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = ReservationsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bookingcode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = NotificationsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipientid", Value: 1}, {Key: "createdat", Value: -1}},
	})
	return err
}
