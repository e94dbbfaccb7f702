package mongo

import (
	"context"
	"errors"
	"time"

	"cloudnative/fitapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection concurrently.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName))
	})
	g.Go(func() error {
		return EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	})
	return g.Wait()
}

type versionDoc struct {
	Version int64 `bson:"version"`
}

// storedVersion reads only the version field of the document matched by key.
func storedVersion(ctx context.Context, collection *mongo.Collection, key bson.M) (int64, error) {
	var doc versionDoc
	opts := options.FindOne().SetProjection(bson.M{"version": 1})
	if err := collection.FindOne(ctx, key, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return doc.Version, nil
}

// replaceVersioned replaces the document matched by key only while its stored
// version still equals expected. doc must already carry expected+1.
func replaceVersioned(ctx context.Context, collection *mongo.Collection, key bson.M, expected int64, doc interface{}) error {
	filter := bson.M{"version": expected}
	for k, v := range key {
		filter[k] = v
	}

	result, err := collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the document is gone or someone else wrote first.
	if _, err := storedVersion(ctx, collection, key); err != nil {
		return err
	}
	return repository.ErrConflict
}
