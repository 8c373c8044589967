package runlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contentradar/scraper/internal/domain"
)

// ErrNotFound is returned when a run log session id has no matching document.
var ErrNotFound = errors.New("runlog: not found")

// ErrInvalidTransition wraps a rejected ValidateStateTransition result.
var ErrInvalidTransition = errors.New("runlog: invalid transition")

// Store persists RunLog documents to the run_logs collection.
type Store struct {
	collection *mongo.Collection
}

// New wraps an existing collection handle. The collection's TTL index is
// created by the content store's bootstrap, since both share one database
// connection.
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// Start inserts a new RunLog in RunPending status and returns it.
func (s *Store) Start(ctx context.Context, log domain.RunLog) (domain.RunLog, error) {
	log.Status = domain.RunPending
	log.StartedAt = time.Now()
	if _, err := s.collection.InsertOne(ctx, log); err != nil {
		return domain.RunLog{}, fmt.Errorf("runlog: insert: %w", err)
	}
	return log, nil
}

// TransitionTo moves a run to a new status, validating the transition, and
// merges any partial field updates (results, errors, warnings, ...) supplied
// via apply. When to is terminal, EndedAt/Duration are stamped automatically.
func (s *Store) TransitionTo(ctx context.Context, sessionID string, to domain.RunStatus, apply bson.M) error {
	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := ValidateStateTransition(current.Status, to); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	set := bson.M{"status": to}
	for k, v := range apply {
		set[k] = v
	}
	if to.IsTerminal() {
		now := time.Now()
		set["endedAt"] = now
		set["duration"] = now.Sub(current.StartedAt)
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("runlog: transition %s: %w", sessionID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get fetches one run log by session id.
func (s *Store) Get(ctx context.Context, sessionID string) (domain.RunLog, error) {
	var log domain.RunLog
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&log)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.RunLog{}, ErrNotFound
	}
	if err != nil {
		return domain.RunLog{}, fmt.Errorf("runlog: get %s: %w", sessionID, err)
	}
	return log, nil
}

// ListFilter scopes GET /api/scraper/logs.
type ListFilter struct {
	AdapterName string
	Status      domain.RunStatus
	Since       time.Time
	Limit       int
}

// List returns the most recent run logs matching f, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]domain.RunLog, error) {
	filter := bson.M{}
	if f.AdapterName != "" {
		filter["adapterName"] = f.AdapterName
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.Since.IsZero() {
		filter["startedAt"] = bson.M{"$gte": f.Since}
	}

	limit := f.Limit
	if limit < 1 || limit > 500 {
		limit = 50
	}

	cursor, err := s.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("runlog: list: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.RunLog
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("runlog: decode list: %w", err)
	}
	return out, nil
}

// Cancel requests a cooperative cancel on a run still in a cancellable
// status. The orchestrator is responsible for observing the resulting
// RunCancelled status and stopping its own fetch loop; this only persists
// the intent.
func (s *Store) Cancel(ctx context.Context, sessionID string) error {
	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !CanCancel(current.Status) {
		return fmt.Errorf("%w: run %s is in terminal or non-cancellable status %s", ErrInvalidTransition, sessionID, current.Status)
	}
	return s.TransitionTo(ctx, sessionID, domain.RunCancelled, nil)
}

// RecentSince aggregates run counts since cutoff, for GET /api/scraper/stats.
type RecentSince struct {
	Total     int64
	Completed int64
	Failed    int64
	Partial   int64
	Cancelled int64
}

// Summary tallies run outcomes since cutoff.
func (s *Store) Summary(ctx context.Context, cutoff time.Time) (RecentSince, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"startedAt": bson.M{"$gte": cutoff}})
	if err != nil {
		return RecentSince{}, fmt.Errorf("runlog: summary: %w", err)
	}
	defer cursor.Close(ctx)

	var out RecentSince
	for cursor.Next(ctx) {
		var row struct {
			Status domain.RunStatus `bson:"status"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		out.Total++
		switch row.Status {
		case domain.RunCompleted:
			out.Completed++
		case domain.RunFailed:
			out.Failed++
		case domain.RunPartial:
			out.Partial++
		case domain.RunCancelled:
			out.Cancelled++
		}
	}
	return out, cursor.Err()
}
