package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Store wraps the Mongo client and the two collections the spec names:
// content_records and run_logs.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	content  *mongo.Collection
	runLogs  *mongo.Collection
}

// Open connects to uri, pings, and ensures the indexes the component
// contracts in spec.md §3 and §4.5 require.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		database: db,
		content:  db.Collection("content_records"),
		runLogs:  db.Collection("run_logs"),
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("store: create indexes: %w", err)
	}
	return s, nil
}

// RunLogCollection exposes the run_logs collection handle so the runlog
// package can wrap it without opening a second connection.
func (s *Store) RunLogCollection() *mongo.Collection {
	return s.runLogs
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return s.client.Disconnect(closeCtx)
}

func (s *Store) createIndexes(ctx context.Context) error {
	if err := s.createContentIndexes(ctx); err != nil {
		return err
	}
	return s.createRunLogIndexes(ctx)
}
