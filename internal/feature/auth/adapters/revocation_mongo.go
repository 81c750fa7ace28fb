package adapters

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
)

// RevokedTokensCollection holds one document per revoked token ID.
// A TTL index on expiresAt lets the server purge them.
const RevokedTokensCollection = "revoked_tokens"

type revokedTokenDocument struct {
	TokenID   string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type revocationMongo struct {
	c   *mongo.Collection
	now func() time.Time
}

var _ usecase.RevocationStore = (*revocationMongo)(nil)

// NewRevocationMongo creates a revocation store over the revoked_tokens collection.
func NewRevocationMongo(db *mongo.Database) *revocationMongo {
	return &revocationMongo{c: db.Collection(RevokedTokensCollection), now: time.Now}
}

func (r *revocationMongo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	now := r.now()
	if !expiresAt.After(now) {
		return nil
	}
	_, err := r.c.UpdateOne(ctx,
		bson.M{"_id": tokenID},
		bson.M{"$setOnInsert": revokedTokenDocument{TokenID: tokenID, ExpiresAt: expiresAt.UTC(), CreatedAt: now.UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// IsRevoked filters on expiresAt as well since TTL purging runs lazily.
func (r *revocationMongo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.c.CountDocuments(ctx, bson.M{
		"_id":       tokenID,
		"expiresAt": bson.M{"$gt": r.now().UTC()},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
