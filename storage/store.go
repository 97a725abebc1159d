// Package storage persists roster snapshots and named table sets.
package storage

import (
	"context"

	"github.com/yeremiapane/restaurant-seating/models"
)

// SnapshotStore durably keeps the last saved roster. Load returns an empty
// snapshot when nothing was saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
	Clear(ctx context.Context) error
}

// TableSetStore keeps named floor layouts.
type TableSetStore interface {
	SaveSet(ctx context.Context, set models.TableSet) error
	LoadSet(ctx context.Context, name string) (models.TableSet, error)
	ListSets(ctx context.Context) ([]string, error)
	DeleteSet(ctx context.Context, name string) error
}

type Store interface {
	SnapshotStore
	TableSetStore
}
