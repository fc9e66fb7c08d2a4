package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. The unique indexes on
// username and email are the authoritative uniqueness guard for signup: the
// application-level pre-check is advisory only, and concurrent duplicate
// writes surface as duplicate-key errors here.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	postIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := db.Collection("posts").Indexes().CreateMany(ctx, postIdx); err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}

	commentIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection("comments").Indexes().CreateMany(ctx, commentIdx); err != nil {
		return fmt.Errorf("comments indexes: %w", err)
	}

	return nil
}
