// Package store implements the Content Store and the run-log persistence
// surface on top of MongoDB, grounded on web_spider's MongoDB wrapper
// (connect-and-ping, UpdateOne with SetUpsert, unique index, ErrNoDocuments
// handling), generalized to the spec's bulk-upsert and inserted/modified/
// duplicate accounting contract.
package store

import "errors"

// ErrStore wraps any store error other than a duplicate-key collision;
// fatal to the current batch call per spec.md §7.
var ErrStore = errors.New("store: operation failed")

// ErrNotFound is returned when a single-record lookup misses.
var ErrNotFound = errors.New("store: record not found")
