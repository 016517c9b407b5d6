package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a Mongo client and verifies the connection with a ping.
// The caller owns the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the service relies on. The unique index on
// stage_categories.name is the source of truth for name uniqueness; the
// controller pre-check is only an early exit.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	questionIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "stage", Value: 1}, {Key: "subject", Value: 1}, {Key: "course", Value: 1}}},
		{Keys: bson.D{{Key: "stage", Value: 1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}}},
		{Keys: bson.D{{Key: "course", Value: 1}}},
		{Keys: bson.D{{Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "question", Value: "text"}, {Key: "explanation", Value: "text"}}},
	}
	if _, err := database.Collection("exam_questions").Indexes().CreateMany(ctx, questionIndexes); err != nil {
		return err
	}

	categoryIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
	}
	if _, err := database.Collection("stage_categories").Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return err
	}
	return nil
}
