package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contentradar/scraper/internal/domain"
)

// StoredRecord pairs a ContentRecord with its Mongo document id, the
// identifier the admin API's /api/content/{id} routes key off of.
type StoredRecord struct {
	ID string `json:"id"`
	domain.ContentRecord
}

// ListFilter is the query shape behind GET /api/content.
type ListFilter struct {
	Page        int
	Limit       int
	Category    string
	SourceHost  string
	Tags        []string
	Keywords    []string
	Search      string
	Status      string
	MinRelevance int
	MaxAgeDays  int
	SortField   string
	SortOrder   string // "asc" | "desc"
}

// ListResult is one page of content plus its total count for pagination.
type ListResult struct {
	Records []StoredRecord
	Total   int64
}

// List returns a paginated, optionally filtered/searched page of content.
// When Search is set, results are ranked by the weighted text index;
// otherwise they're sorted by SortField.
func (s *Store) List(ctx context.Context, f ListFilter) (ListResult, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.SourceHost != "" {
		filter["sourceHost"] = f.SourceHost
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	if len(f.Keywords) > 0 {
		filter["keywordHits"] = bson.M{"$in": f.Keywords}
	}
	if f.MinRelevance > 0 {
		filter["relevance"] = bson.M{"$gte": f.MinRelevance}
	}
	if f.MaxAgeDays > 0 {
		filter["scrapedAt"] = bson.M{"$gte": time.Now().AddDate(0, 0, -f.MaxAgeDays)}
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	findOpts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	if f.Search != "" {
		findOpts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		findOpts.SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
	} else {
		field := f.SortField
		if field == "" {
			field = "scrapedAt"
		}
		dir := -1
		if f.SortOrder == "asc" {
			dir = 1
		}
		findOpts.SetSort(bson.D{{Key: field, Value: dir}})
	}

	total, err := s.content.CountDocuments(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: count: %v", ErrStore, err)
	}

	cursor, err := s.content.Find(ctx, filter, findOpts)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: find: %v", ErrStore, err)
	}
	defer cursor.Close(ctx)

	var out []StoredRecord
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			continue
		}
		out = append(out, decodeStored(raw))
	}
	return ListResult{Records: out, Total: total}, cursor.Err()
}

// GetByID fetches a single record by its Mongo document id and increments
// its view counter, per the admin API contract.
func (s *Store) GetByID(ctx context.Context, id string) (*StoredRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed id %q", ErrNotFound, id)
	}

	var raw bson.M
	err = s.content.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"viewCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStore, id, err)
	}
	rec := decodeStored(raw)
	return &rec, nil
}

// DeleteByID hard-deletes a record.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: malformed id %q", ErrNotFound, id)
	}
	res, err := s.content.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStore, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus validates status against the closed enum and applies it.
func (s *Store) SetStatus(ctx context.Context, id string, status domain.Status) error {
	switch status {
	case domain.StatusActive, domain.StatusArchived, domain.StatusDeleted, domain.StatusFlagged:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrStore, status)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: malformed id %q", ErrNotFound, id)
	}
	res, err := s.content.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("%w: set status %s: %v", ErrStore, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeStored(raw bson.M) StoredRecord {
	var rec domain.ContentRecord
	data, _ := bson.Marshal(raw)
	_ = bson.Unmarshal(data, &rec)

	id := ""
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	return StoredRecord{ID: id, ContentRecord: rec}
}
