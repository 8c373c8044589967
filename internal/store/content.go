package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/contentradar/scraper/internal/domain"
)

// UpsertResult is the bulk-upsert tally spec.md §4.5 names.
type UpsertResult struct {
	Inserted   int
	Modified   int
	Duplicates int
	Total      int
}

// identityExcluded are the fields BulkUpsert never overwrites on an existing
// record: contentHash is the identity, scrapedAt is insertion-only.
var identityExcluded = map[string]bool{"contentHash": true, "scrapedAt": true, "_id": true}

// BulkUpsert upserts each record by content hash, unordered: one bad record
// never blocks the rest of the batch. inserted counts newly created
// records; modified counts records whose non-identity fields actually
// changed; duplicates counts records that existed with no field change.
func (s *Store) BulkUpsert(ctx context.Context, records []domain.ContentRecord) (UpsertResult, error) {
	var (
		mu     sync.Mutex
		result UpsertResult
	)
	result.Total = len(records)

	var g errgroup.Group
	const maxInFlight = 8
	sem := make(chan struct{}, maxInFlight)

	for i := range records {
		rec := records[i]
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			kind, err := s.upsertOne(ctx, rec)
			if err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil
				}
				return fmt.Errorf("%w: upsert %s: %v", ErrStore, rec.ContentHash, err)
			}

			mu.Lock()
			switch kind {
			case upsertInserted:
				result.Inserted++
			case upsertModified:
				result.Modified++
			case upsertDuplicate:
				result.Duplicates++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

type upsertKind int

const (
	upsertInserted upsertKind = iota
	upsertModified
	upsertDuplicate
)

func (s *Store) upsertOne(ctx context.Context, rec domain.ContentRecord) (upsertKind, error) {
	filter := bson.M{"contentHash": rec.ContentHash}

	var existing bson.M
	err := s.content.FindOne(ctx, filter).Decode(&existing)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		rec.ScrapedAt = time.Now()
		rec.UpdatedAt = rec.ScrapedAt
		if _, insertErr := s.content.InsertOne(ctx, rec); insertErr != nil {
			if mongo.IsDuplicateKeyError(insertErr) {
				return upsertDuplicate, nil
			}
			return 0, fmt.Errorf("insert: %w", insertErr)
		}
		return upsertInserted, nil
	case err != nil:
		return 0, fmt.Errorf("find: %w", err)
	}

	update, changed := buildUpdate(rec, existing)
	if !changed {
		return upsertDuplicate, nil
	}

	opts := options.Update().SetUpsert(true)
	if _, updateErr := s.content.UpdateOne(ctx, filter, bson.M{"$set": update}, opts); updateErr != nil {
		if mongo.IsDuplicateKeyError(updateErr) {
			return upsertModified, nil
		}
		return 0, fmt.Errorf("update: %w", updateErr)
	}
	return upsertModified, nil
}

// buildUpdate marshals rec to bson, strips identity-excluded fields, sets
// updatedAt, and reports whether any non-excluded field differs from the
// existing stored document.
func buildUpdate(rec domain.ContentRecord, existing bson.M) (bson.M, bool) {
	data, _ := bson.Marshal(rec)
	var full bson.M
	_ = bson.Unmarshal(data, &full)

	for k := range identityExcluded {
		delete(full, k)
	}
	full["updatedAt"] = time.Now()

	changed := false
	for k, v := range full {
		if k == "updatedAt" {
			continue
		}
		if ev, ok := existing[k]; !ok || !bsonEqual(ev, v) {
			changed = true
			break
		}
	}
	return full, changed
}

func bsonEqual(a, b any) bool {
	ab, aerr := bson.Marshal(bson.M{"v": a})
	bb, berr := bson.Marshal(bson.M{"v": b})
	if aerr != nil || berr != nil {
		return false
	}
	return string(ab) == string(bb)
}

// Cleanup physically deletes any non-flagged record older than maxAgeDays,
// per spec.md §4.5. expiresAt-driven TTL is handled by a separate Mongo TTL
// index, not this path.
func (s *Store) Cleanup(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	filter := bson.M{
		"scrapedAt": bson.M{"$lt": cutoff},
		"status":    bson.M{"$ne": domain.StatusFlagged},
	}
	res, err := s.content.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", ErrStore, err)
	}
	return res.DeletedCount, nil
}
