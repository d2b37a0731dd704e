package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the URI does not name a database.
const DefaultMongoDatabase = "exercise_tracker"

// NewMongo connects to MongoDB and returns the database named in the URI.
func NewMongo(ctx context.Context, uri string) (*mongo.Client, *mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mongodb uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = DefaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(name), nil
}

// MigrateMongo creates the indexes the log and event queries rely on.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("exercises").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
