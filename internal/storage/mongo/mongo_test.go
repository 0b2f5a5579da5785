package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-tms/internal/storage"
	"github.com/adanyl0v/go-tms/internal/storage/storagetest"
)

// TestStore needs a reachable server, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017
func TestStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	n := 0
	storagetest.Run(t, func(t *testing.T) storage.Store {
		n++
		database := fmt.Sprintf("tms_test_%d_%d", time.Now().UnixNano(), n)
		store := New(zerolog.Nop(), client, database)
		require.NoError(t, store.Migrate(ctx))
		t.Cleanup(func() { _ = client.Database(database).Drop(context.Background()) })
		return store
	})
}
