package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Overview is the shape behind GET /api/content/stats/overview.
type Overview struct {
	Total    int64            `json:"total"`
	ByType   map[string]int64 `json:"byType"`
	BySource []SourceCount    `json:"bySource"`
}

// SourceCount is one row of the top-10-by-source breakdown.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// Overview aggregates totals, per-category counts, and the top 10 sources
// by record count, grounded on the source-stats aggregation pipeline
// pattern (group + sum).
func (s *Store) Overview(ctx context.Context) (Overview, error) {
	total, err := s.content.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Overview{}, fmt.Errorf("%w: count: %v", ErrStore, err)
	}

	byType, err := s.countGroupedBy(ctx, "category")
	if err != nil {
		return Overview{}, err
	}

	bySourceRaw, err := s.countGroupedBy(ctx, "sourceHost")
	if err != nil {
		return Overview{}, err
	}

	bySource := make([]SourceCount, 0, len(bySourceRaw))
	for k, v := range bySourceRaw {
		bySource = append(bySource, SourceCount{Source: k, Count: v})
	}
	sortByCountDesc(bySource)
	if len(bySource) > 10 {
		bySource = bySource[:10]
	}

	return Overview{Total: total, ByType: byType, BySource: bySource}, nil
}

func (s *Store) countGroupedBy(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.content.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate by %s: %v", ErrStore, field, err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		out[row.ID] = row.Count
	}
	return out, cursor.Err()
}

func sortByCountDesc(s []SourceCount) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Count > s[j-1].Count; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
