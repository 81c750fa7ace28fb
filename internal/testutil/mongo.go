package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnvMongoTestURI names the variable that enables Mongo-backed tests.
const EnvMongoTestURI = "MONGODB_TEST_URI"

// SetupMongoDB connects to the server named by MONGODB_TEST_URI and returns a
// fresh database that is dropped when the test ends. The test is skipped when
// the variable is unset.
func SetupMongoDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(EnvMongoTestURI)
	if uri == "" {
		t.Skipf("%s not set; skipping Mongo-backed test", EnvMongoTestURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("arc_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
