// Copyright (c) 2026 Katalog. All rights reserved.

package catalog_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EarnestL/k-atalog/internal/core/catalog"
)

/*
TestSnapshotStore_ConcurrentFirstLoad verifies concurrent first callers share one load.
*/
func TestSnapshotStore_ConcurrentFirstLoad(t *testing.T) {
	store := catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger())
	require.False(t, store.Loaded())

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ListGroups(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.True(t, store.Loaded())
	assert.Equal(t, int64(1), store.LoadCount())
}

/*
TestSnapshotStore_FailedLoadRetries verifies a failure publishes nothing and
the next call tries again.
*/
func TestSnapshotStore_FailedLoadRetries(t *testing.T) {
	ctx := context.Background()
	source := &failingSource{}
	store := catalog.NewSnapshotStore(source, discardLogger())

	_, err := store.ListGroups(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrSnapshotLoad))
	assert.False(t, store.Loaded())

	source.heal()

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, groups)
	assert.Equal(t, int64(1), store.LoadCount())
}

func TestSnapshotStore_InvalidSourcePublishesNothing(t *testing.T) {
	source := &stringSource{body: `{"groups":[{"id":"a","name":"A"},{"id":"a","name":"B"}]}`}
	store := catalog.NewSnapshotStore(source, discardLogger())

	err := store.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrSnapshotLoad))
	assert.True(t, catalog.IsValidationError(err))
	assert.False(t, store.Loaded())
}

/*
TestSnapshotStore_Reads exercises lookups over the embedded catalog.
*/
func TestSnapshotStore_Reads(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger())

	record, err := store.GroupByLegacyID(ctx, "bts")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Empty(t, record.StorageID)
	assert.Equal(t, "BTS", record.Group.Name)

	missing, err := store.GroupByLegacyID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byStorage, err := store.GroupByStorageID(ctx, "000000000000000000000001")
	require.NoError(t, err)
	assert.Nil(t, byStorage)

	cards, err := store.ListPhotocardsByGroup(ctx, []string{"bts"})
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	for _, card := range cards {
		assert.Equal(t, "bts", card.GroupID)
	}

	byMember, err := store.ListPhotocardsByMember(ctx, "rm")
	require.NoError(t, err)
	require.Len(t, byMember, 1)
	assert.Equal(t, "pc1", byMember[0].ID)
}

/*
TestSnapshotStore_ReturnsCopies ensures callers cannot mutate the published snapshot.
*/
func TestSnapshotStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger())

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	groups[0].Name = "changed"
	groups[0].Members[0].Name = "changed"

	again, err := store.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BTS", again[0].Name)
	assert.Equal(t, "RM", again[0].Members[0].Name)
}

func TestSnapshotStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger())
	err := store.EnsureLoaded(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, store.Loaded())
}

// gatedSource blocks Open until release is closed and signals when a load
// has reached it.
type gatedSource struct {
	opened  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedSource() *gatedSource {
	return &gatedSource{opened: make(chan struct{}), release: make(chan struct{})}
}

func (source *gatedSource) Name() string { return "gated" }

func (source *gatedSource) Open() (io.ReadCloser, error) {
	source.once.Do(func() { close(source.opened) })
	<-source.release
	return catalog.EmbeddedSource().Open()
}

/*
TestSnapshotStore_CallerCancelDoesNotFailSharedLoad verifies that the caller
which started the load can give up without failing the others.
*/
func TestSnapshotStore_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	source := newGatedSource()
	store := catalog.NewSnapshotStore(source, discardLogger())

	// 1. The first caller starts the load and blocks inside the source
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- store.EnsureLoaded(firstCtx) }()
	<-source.opened

	// 2. A second caller joins while the load is in progress
	secondErr := make(chan error, 1)
	go func() { secondErr <- store.EnsureLoaded(context.Background()) }()

	// 3. The first caller gives up before the source answers
	cancelFirst()
	select {
	case err := <-firstErr:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the load")
	}

	// 4. The load still completes for the second caller
	close(source.release)
	select {
	case err := <-secondErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never received the snapshot")
	}

	assert.True(t, store.Loaded())
	assert.Equal(t, int64(1), store.LoadCount())

	groups, err := store.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}
