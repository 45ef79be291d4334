// Package store persists the generation history behind the API and the
// batch runner.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// GenerationStoreIface exposes generation history operations.
// Handlers and the batch runner go through this interface, never the DB.
type GenerationStoreIface interface {
	Record(ctx context.Context, g *Generation) error
	Get(ctx context.Context, id string) (*Generation, error)
	ListRecentBefore(ctx context.Context, before time.Time, limit int) ([]*Generation, error)
	Stats(ctx context.Context) (GenerationStats, error)
}
