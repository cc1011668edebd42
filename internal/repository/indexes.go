package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the indexes the review listing relies on.
// Failures are logged; the service still works without them, only slower.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	responses := db.Collection("responses")

	createIndex(ctx, logger, responses, bson.D{
		{Key: "surveyId", Value: 1},
		{Key: "timestamp", Value: -1},
	}, false)
	createIndex(ctx, logger, responses, bson.D{
		{Key: "surveyId", Value: 1},
		{Key: "userId", Value: 1},
	}, true)
	createIndex(ctx, logger, db.Collection("surveys"), bson.D{{Key: "title", Value: 1}}, false)

	logger.Info("Mongo indexes ensured")
}

func createIndex(ctx context.Context, logger *zap.Logger, coll *mongo.Collection, keys bson.D, unique bool) {
	opts := options.Index().SetUnique(unique)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		logger.Warn("Failed to create index",
			zap.String("collection", coll.Name()),
			zap.Error(err),
		)
	}
}
