// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/EarnestL/k-atalog/pkg/slice"
)

const snapshotFlightKey = "snapshot"

// snapshot is one immutable published view of the static source.
type snapshot struct {
	groups     []Group
	photocards []Photocard
	byGroupID  map[string]int
	loadedAt   time.Time
}

func newSnapshot(dataset *Dataset) *snapshot {
	index := make(map[string]int, len(dataset.Groups))
	for i, group := range dataset.Groups {
		index[group.ID] = i
	}
	return &snapshot{
		groups:     cloneGroups(dataset.Groups),
		photocards: slices.Clone(dataset.Photocards),
		byGroupID:  index,
		loadedAt:   time.Now().UTC(),
	}
}

// SnapshotStore serves the catalog from memory, loading the static source
// lazily on first use.
//
// Concurrent first callers share one in-flight load. A failed load publishes
// nothing; the next caller starts a fresh attempt.
type SnapshotStore struct {
	source Source
	logger *slog.Logger

	current atomic.Pointer[snapshot]
	flight  singleflight.Group
	loads   atomic.Int64
}

// NewSnapshotStore creates an unloaded store reading from source.
func NewSnapshotStore(source Source, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{source: source, logger: logger}
}

/*
Load reads and validates the static source, then atomically publishes it.

Description: Validation covers every record before anything is published, so
readers either see the previous snapshot or the complete new one.

Returns:
  - error: Wrapped [ErrSnapshotLoad] carrying the I/O, decode or validation cause
*/
func (store *SnapshotStore) Load(context context.Context) error {
	if err := context.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}

	dataset, err := LoadDataset(store.source)
	if err != nil {
		store.logger.Error("snapshot_load_failed",
			slog.String("source", store.source.Name()),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}

	store.current.Store(newSnapshot(dataset))
	store.loads.Add(1)

	store.logger.Info("snapshot_loaded",
		slog.String("source", store.source.Name()),
		slog.Int("groups", len(dataset.Groups)),
		slog.Int("photocards", len(dataset.Photocards)),
	)
	return nil
}

// EnsureLoaded loads the snapshot once. Callers arriving during a load wait
// for it and share its outcome.
func (store *SnapshotStore) EnsureLoaded(context context.Context) error {
	_, err := store.ensure(context)
	return err
}

/*
ensure returns the published snapshot, loading it on first use.

Description: The shared load runs detached from any one caller's cancellation
so a caller that gives up does not fail the others waiting on the same flight.
Each caller still stops waiting when its own context ends.
*/
func (store *SnapshotStore) ensure(ctx context.Context) (*snapshot, error) {
	if current := store.current.Load(); current != nil {
		return current, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}

	flight := store.flight.DoChan(snapshotFlightKey, func() (any, error) {
		// A flight that started after a successful one must not reload.
		if current := store.current.Load(); current != nil {
			return current, nil
		}
		if err := store.Load(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		return store.current.Load(), nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrSnapshotLoad, ctx.Err())
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*snapshot), nil
	}
}

// Loaded reports whether a snapshot has been published.
func (store *SnapshotStore) Loaded() bool {
	return store.current.Load() != nil
}

// LoadCount returns how many loads have succeeded in this process.
func (store *SnapshotStore) LoadCount() int64 {
	return store.loads.Load()
}

// # Reads

func (store *SnapshotStore) ListGroups(context context.Context) ([]Group, error) {
	current, err := store.ensure(context)
	if err != nil {
		return nil, err
	}
	return cloneGroups(current.groups), nil
}

// GroupByStorageID always misses: snapshot records have no storage identity.
func (store *SnapshotStore) GroupByStorageID(context context.Context, _ string) (*GroupRecord, error) {
	_, err := store.ensure(context)
	return nil, err
}

func (store *SnapshotStore) GroupByLegacyID(context context.Context, id string) (*GroupRecord, error) {
	current, err := store.ensure(context)
	if err != nil {
		return nil, err
	}

	index, ok := current.byGroupID[id]
	if !ok {
		return nil, nil
	}
	return &GroupRecord{Group: current.groups[index].clone()}, nil
}

func (store *SnapshotStore) ListPhotocards(context context.Context) ([]Photocard, error) {
	current, err := store.ensure(context)
	if err != nil {
		return nil, err
	}
	return slices.Clone(current.photocards), nil
}

func (store *SnapshotStore) ListPhotocardsByGroup(context context.Context, groupIDs []string) ([]Photocard, error) {
	current, err := store.ensure(context)
	if err != nil {
		return nil, err
	}
	return slice.Filter(current.photocards, func(card Photocard) bool {
		return slices.Contains(groupIDs, card.GroupID)
	}), nil
}

func (store *SnapshotStore) ListPhotocardsByMember(context context.Context, memberID string) ([]Photocard, error) {
	current, err := store.ensure(context)
	if err != nil {
		return nil, err
	}
	return slice.Filter(current.photocards, func(card Photocard) bool {
		return card.MemberID == memberID
	}), nil
}
