package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// createContentIndexes installs the indexes spec.md §4.5 requires: unique
// on content hash; non-unique on category, source host, scraped-at,
// published-at, status; and the weighted free-text index over
// title/description/tags/keywords/body.
func (s *Store) createContentIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "contentHash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "sourceHost", Value: 1}}},
		{Keys: bson.D{{Key: "scrapedAt", Value: 1}}},
		{Keys: bson.D{{Key: "publishedAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
				{Key: "keywordHits", Value: "text"},
				{Key: "body", Value: "text"},
			},
			Options: options.Index().SetWeights(bson.D{
				{Key: "title", Value: 10},
				{Key: "description", Value: 5},
				{Key: "tags", Value: 3},
				{Key: "keywordHits", Value: 3},
				{Key: "body", Value: 1},
			}).SetName("content_text_weighted"),
		},
	}

	if _, err := s.content.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("content indexes: %w", err)
	}
	return nil
}

// createRunLogIndexes installs the run log's 30-day TTL index on startedAt.
func (s *Store) createRunLogIndexes(ctx context.Context) error {
	const runLogTTLSeconds = int32(30 * 24 * 60 * 60)
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "startedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(runLogTTLSeconds),
	}
	if _, err := s.runLogs.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("run log indexes: %w", err)
	}
	return nil
}
