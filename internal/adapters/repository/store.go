// Package repository defines the game-log store interface and its
// implementations. Stores are written at ingest time and read-only to the
// analytics pipeline; they never mutate records once stored.
package repository

import (
	"context"

	"github.com/frostline/restcurve/internal/domain/model"
)

// Store provides access to the immutable game log.
type Store interface {
	// Add appends records to the log. Records are stored as-is; the store
	// performs no normalization.
	Add(ctx context.Context, records ...model.GameRecord) error

	// All returns every stored record. The returned slice is a copy and
	// safe for the caller to reorder.
	All(ctx context.Context) ([]model.GameRecord, error)

	// Entity returns the records of one entity in insertion order.
	// Returns ErrEntityNotFound when the entity has no records.
	Entity(ctx context.Context, entityID string) ([]model.GameRecord, error)

	// Entities lists all entity ids, sorted ascending.
	Entities(ctx context.Context) ([]string, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
