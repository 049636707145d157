package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections はコレクション名の組。
type Collections struct {
	Messes   string
	Reviews  string
	Accounts string
}

// EnsureIndexes は検索・一意制約に必要なインデックスを作成する。既存のものは再作成されない。
func EnsureIndexes(ctx context.Context, db *mongo.Database, names Collections) error {
	plan := map[string][]mongo.IndexModel{
		names.Messes: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "averageRating", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priceRange.min", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isVegOnly", Value: 1}}},
		},
		names.Reviews: {
			{
				Keys:    bson.D{{Key: "mess", Value: 1}, {Key: "user", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("mess_user_unique"),
			},
			{Keys: bson.D{{Key: "mess", Value: 1}, {Key: "isApproved", Value: 1}}},
		},
		names.Accounts: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
	}
	for collection, models := range plan {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
