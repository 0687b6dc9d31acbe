package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document store.
const (
	ItemsCollection     = "items"
	EnquiriesCollection = "enquiries"
)

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	slog.Info("database connection established", "driver", "mongo")
	return client, nil
}

// EnsureMongoIndexes creates the text and lookup indexes. Creating an index that
// already exists is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	itemIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "type", Value: "text"}},
			Options: options.Index().SetName("items_text"),
		},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "dateAdded", Value: -1}}},
	}
	if _, err := db.Collection(ItemsCollection).Indexes().CreateMany(ctx, itemIndexes); err != nil {
		return fmt.Errorf("creating item indexes: %w", err)
	}

	enquiryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "itemId", Value: 1}}},
		{Keys: bson.D{{Key: "customerEmail", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(EnquiriesCollection).Indexes().CreateMany(ctx, enquiryIndexes); err != nil {
		return fmt.Errorf("creating enquiry indexes: %w", err)
	}
	return nil
}
