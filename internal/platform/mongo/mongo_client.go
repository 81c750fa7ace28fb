// Package mongo connects to MongoDB and prepares the collections used by the document store.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Config holds the connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Connect dials the server, pings it and returns the configured database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	zap.L().Info("MongoDB connection successful", zap.String("database", cfg.Database))
	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"opportunities": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "organizerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "registeredPlayers", Value: 1}}},
			{Keys: bson.D{{Key: "joinedPlayers", Value: 1}}},
		},
		"revoked_tokens": {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
