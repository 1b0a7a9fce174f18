// Copyright (c) 2026 Katalog. All rights reserved.

package catalog_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/EarnestL/k-atalog/internal/core/catalog"
)

// memoryRepository is an in-process persistent backend. Storage ids are
// minted as 24 hex characters, like the real adapter's.
type memoryRepository struct {
	mu          sync.Mutex
	next        int
	groups      []catalog.GroupRecord
	photocards  []catalog.Photocard
	submissions []catalog.Submission

	// failWith, when set, is returned by every call.
	failWith error
}

var _ catalog.Repository = (*memoryRepository)(nil)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (repository *memoryRepository) mint() string {
	repository.next++
	return fmt.Sprintf("%024x", repository.next)
}

func (repository *memoryRepository) ListGroups(_ context.Context) ([]catalog.Group, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return nil, repository.failWith
	}

	groups := make([]catalog.Group, 0, len(repository.groups))
	for _, record := range repository.groups {
		groups = append(groups, record.Group)
	}
	return groups, nil
}

func (repository *memoryRepository) GroupByStorageID(_ context.Context, id string) (*catalog.GroupRecord, error) {
	return repository.findGroup(func(record catalog.GroupRecord) bool { return record.StorageID == id })
}

func (repository *memoryRepository) GroupByLegacyID(_ context.Context, id string) (*catalog.GroupRecord, error) {
	return repository.findGroup(func(record catalog.GroupRecord) bool { return record.Group.ID == id })
}

func (repository *memoryRepository) findGroup(match func(catalog.GroupRecord) bool) (*catalog.GroupRecord, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return nil, repository.failWith
	}

	for _, record := range repository.groups {
		if match(record) {
			found := record
			return &found, nil
		}
	}
	return nil, nil
}

func (repository *memoryRepository) ListPhotocards(_ context.Context) ([]catalog.Photocard, error) {
	return repository.filterPhotocards(func(catalog.Photocard) bool { return true })
}

func (repository *memoryRepository) ListPhotocardsByGroup(_ context.Context, groupIDs []string) ([]catalog.Photocard, error) {
	return repository.filterPhotocards(func(card catalog.Photocard) bool { return slices.Contains(groupIDs, card.GroupID) })
}

func (repository *memoryRepository) ListPhotocardsByMember(_ context.Context, memberID string) ([]catalog.Photocard, error) {
	return repository.filterPhotocards(func(card catalog.Photocard) bool { return card.MemberID == memberID })
}

func (repository *memoryRepository) filterPhotocards(match func(catalog.Photocard) bool) ([]catalog.Photocard, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return nil, repository.failWith
	}

	cards := []catalog.Photocard{}
	for _, card := range repository.photocards {
		if match(card) {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (repository *memoryRepository) HasGroups(_ context.Context) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return false, repository.failWith
	}
	return len(repository.groups) > 0, nil
}

func (repository *memoryRepository) InsertGroup(_ context.Context, group catalog.Group) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return "", repository.failWith
	}

	storageID := repository.mint()
	if group.ID == "" {
		group.ID = storageID
	}
	repository.groups = append(repository.groups, catalog.GroupRecord{Group: group, StorageID: storageID})
	return storageID, nil
}

func (repository *memoryRepository) InsertPhotocard(_ context.Context, card catalog.Photocard) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return "", repository.failWith
	}

	storageID := repository.mint()
	if card.ID == "" {
		card.ID = storageID
	}
	repository.photocards = append(repository.photocards, card)
	return storageID, nil
}

func (repository *memoryRepository) CreatePhotocard(ctx context.Context, input catalog.PhotocardInput) (*catalog.CreateResult[catalog.Photocard], error) {
	refs, err := catalog.ResolveReferences(ctx, repository, input.GroupName, input.MemberName)
	if err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	card := catalog.BuildPhotocard(repository.mint(), refs, input)
	repository.photocards = append(repository.photocards, card)
	return &catalog.CreateResult[catalog.Photocard]{Record: card, Degraded: refs.Degraded}, nil
}

func (repository *memoryRepository) CreateSubmission(ctx context.Context, input catalog.SubmissionInput) (*catalog.CreateResult[catalog.Submission], error) {
	refs, err := catalog.ResolveReferences(ctx, repository, input.GroupName, input.MemberName)
	if err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return nil, repository.failWith
	}

	submission := catalog.Submission{
		Photocard:   catalog.BuildPhotocard(repository.mint(), refs, input.PhotocardInput),
		UserEmail:   input.UserEmail,
		SubmittedAt: time.Now().UTC().Add(time.Duration(repository.next) * time.Millisecond),
		Status:      input.Status,
		PhotocardID: input.PhotocardID,
	}
	repository.submissions = append(repository.submissions, submission)
	return &catalog.CreateResult[catalog.Submission]{Record: submission, Degraded: refs.Degraded}, nil
}

func (repository *memoryRepository) ListSubmissionsByEmail(_ context.Context, email string, limit int) ([]catalog.Submission, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWith != nil {
		return nil, repository.failWith
	}

	matched := []catalog.Submission{}
	for i := len(repository.submissions) - 1; i >= 0 && len(matched) < limit; i-- {
		if repository.submissions[i].UserEmail == email {
			matched = append(matched, repository.submissions[i])
		}
	}
	return matched, nil
}

// # Fixtures

// stringSource serves a fixed catalog document.
type stringSource struct {
	body  string
	opens int
	mu    sync.Mutex
}

func (source *stringSource) Name() string { return "inline" }

func (source *stringSource) Open() (io.ReadCloser, error) {
	source.mu.Lock()
	source.opens++
	source.mu.Unlock()
	return io.NopCloser(strings.NewReader(source.body)), nil
}

// failingSource fails every open until healed.
type failingSource struct {
	mu     sync.Mutex
	healed bool
}

func (source *failingSource) Name() string { return "failing" }

func (source *failingSource) Open() (io.ReadCloser, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if !source.healed {
		return nil, fmt.Errorf("source offline")
	}
	return catalog.EmbeddedSource().Open()
}

func (source *failingSource) heal() {
	source.mu.Lock()
	source.healed = true
	source.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// persistentStore returns a facade over a seeded memory repository.
func persistentStore(ctx context.Context) (*catalog.Store, *memoryRepository) {
	repository := newMemoryRepository()
	source := catalog.EmbeddedSource()
	store := catalog.NewStore(catalog.NewSnapshotStore(source, discardLogger()), repository, source, discardLogger())
	store.SeedIfEmpty(ctx)
	return store, repository
}

func snapshotStore() *catalog.Store {
	source := catalog.EmbeddedSource()
	return catalog.NewStore(catalog.NewSnapshotStore(source, discardLogger()), nil, source, discardLogger())
}
