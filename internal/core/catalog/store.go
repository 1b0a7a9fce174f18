// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/EarnestL/k-atalog/pkg/pagination"
	"github.com/EarnestL/k-atalog/pkg/slice"
)

// # Backend Contracts

// Reader is the read surface both backends serve with identical shapes.
// Lookup misses are (nil, nil).
type Reader interface {
	GroupFinder
	ListGroups(context context.Context) ([]Group, error)
	ListPhotocards(context context.Context) ([]Photocard, error)
	ListPhotocardsByGroup(context context.Context, groupIDs []string) ([]Photocard, error)
	ListPhotocardsByMember(context context.Context, memberID string) ([]Photocard, error)
}

// SeedTarget is the write surface seeding needs.
type SeedTarget interface {
	HasGroups(context context.Context) (bool, error)
	InsertGroup(context context.Context, group Group) (storageID string, err error)
	InsertPhotocard(context context.Context, card Photocard) (storageID string, err error)
}

// Repository is the persistent backend: every read, seeding, and the
// user-facing writes.
type Repository interface {
	Reader
	SeedTarget
	CreatePhotocard(context context.Context, input PhotocardInput) (*CreateResult[Photocard], error)
	CreateSubmission(context context.Context, input SubmissionInput) (*CreateResult[Submission], error)
	ListSubmissionsByEmail(context context.Context, email string, limit int) ([]Submission, error)
}

// CreateResult carries a created record and whether its group reference
// could not be resolved.
type CreateResult[T any] struct {
	Record   T
	Degraded bool
}

// # Store Facade

// Store answers every catalog call from whichever backend was active at
// construction. The choice never changes afterwards.
type Store struct {
	snapshot   *SnapshotStore
	persistent Repository
	source     Source
	logger     *slog.Logger
	seedOnce   sync.Once
}

// NewStore builds the facade. A nil persistent repository selects the
// snapshot backend for the life of the Store.
func NewStore(snapshot *SnapshotStore, persistent Repository, source Source, logger *slog.Logger) *Store {
	return &Store{
		snapshot:   snapshot,
		persistent: persistent,
		source:     source,
		logger:     logger,
	}
}

// IsPersistentBackendActive reports which backend serves this Store.
func (store *Store) IsPersistentBackendActive() bool {
	return store.persistent != nil
}

func (store *Store) reader() Reader {
	if store.persistent != nil {
		return store.persistent
	}
	return store.snapshot
}

// # Reads

func (store *Store) ListGroups(context context.Context) ([]Group, error) {
	return store.reader().ListGroups(context)
}

// GetGroup resolves ref against storage ids, then legacy ids.
func (store *Store) GetGroup(context context.Context, ref string) (*Group, error) {
	record, err := ResolveGroupRef(context, store.reader(), ref)
	if err != nil || record == nil {
		return nil, err
	}
	group := record.Group
	return &group, nil
}

// ListMembers returns the group's members in canonical order, or nil when
// the group does not exist.
func (store *Store) ListMembers(context context.Context, groupRef string) ([]Member, error) {
	group, err := store.GetGroup(context, groupRef)
	if err != nil || group == nil {
		return nil, err
	}
	return group.Members, nil
}

// GetMember finds memberID within the resolved group only.
func (store *Store) GetMember(context context.Context, groupRef, memberID string) (*Member, error) {
	members, err := store.ListMembers(context, groupRef)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if member.ID == memberID {
			found := member
			return &found, nil
		}
	}
	return nil, nil
}

func (store *Store) ListPhotocardsByMember(context context.Context, memberID string) ([]Photocard, error) {
	return store.reader().ListPhotocardsByMember(context, memberID)
}

/*
ListGroupMemberPhotocards returns memberID's cards that also reference the
group. Member ids are only unique within a group, so the bare member lookup
can return cards from another group sharing the id.
*/
func (store *Store) ListGroupMemberPhotocards(context context.Context, groupRef, memberID string) ([]Photocard, error) {
	reader := store.reader()

	record, err := ResolveGroupRef(context, reader, groupRef)
	if err != nil {
		return nil, err
	}

	groupIDs := []string{groupRef}
	if record != nil {
		groupIDs = record.RefIDs()
	}

	cards, err := reader.ListPhotocardsByMember(context, memberID)
	if err != nil {
		return nil, err
	}
	return slice.Filter(cards, func(card Photocard) bool {
		return slices.Contains(groupIDs, card.GroupID)
	}), nil
}

/*
ListPhotocardsByGroup returns the cards referencing a group.

Description: When ref resolves, cards referencing the group by either of its
ids match. When it does not, ref itself is matched so cards created with a
degraded reference stay listable.
*/
func (store *Store) ListPhotocardsByGroup(context context.Context, groupRef string) ([]Photocard, error) {
	reader := store.reader()

	record, err := ResolveGroupRef(context, reader, groupRef)
	if err != nil {
		return nil, err
	}

	groupIDs := []string{groupRef}
	if record != nil {
		groupIDs = record.RefIDs()
	}
	return reader.ListPhotocardsByGroup(context, groupIDs)
}

// ListPhotocardsByGroupPaginated slices [offset, offset+limit) from the
// group's cards in insertion order and reports the full count.
func (store *Store) ListPhotocardsByGroupPaginated(context context.Context, groupRef string, limit, offset int) (pagination.Page[Photocard], error) {
	cards, err := store.ListPhotocardsByGroup(context, groupRef)
	if err != nil {
		return pagination.Page[Photocard]{}, err
	}
	return pagination.Slice(cards, limit, offset), nil
}

func (store *Store) ListAllPhotocards(context context.Context) ([]Photocard, error) {
	return store.reader().ListPhotocards(context)
}

// Search fetches groups and photocards concurrently, then matches query.
func (store *Store) Search(context context.Context, query string, limit, offset int) (SearchResult, error) {
	reader := store.reader()

	var groups []Group
	var photocards []Photocard

	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		groups, err = reader.ListGroups(groupContext)
		return err
	})
	group.Go(func() error {
		var err error
		photocards, err = reader.ListPhotocards(groupContext)
		return err
	})
	if err := group.Wait(); err != nil {
		return SearchResult{}, err
	}

	return Search(groups, photocards, query, limit, offset), nil
}

// # Writes

func (store *Store) CreatePhotocard(context context.Context, input PhotocardInput) (*CreateResult[Photocard], error) {
	if store.persistent == nil {
		return nil, fmt.Errorf("create photocard: %w", ErrBackendUnavailable)
	}
	result, err := store.persistent.CreatePhotocard(context, input)
	if err != nil {
		return nil, err
	}
	if result.Degraded {
		store.logger.Warn("degraded_group_reference",
			slog.String("group_name", input.GroupName),
			slog.String("group_id", result.Record.GroupID),
			slog.String("photocard_id", result.Record.ID),
		)
	}
	return result, nil
}

func (store *Store) CreateSubmission(context context.Context, input SubmissionInput) (*CreateResult[Submission], error) {
	if store.persistent == nil {
		return nil, fmt.Errorf("create submission: %w", ErrBackendUnavailable)
	}
	return store.persistent.CreateSubmission(context, input)
}

func (store *Store) ListSubmissionsByEmail(context context.Context, email string, limit int) ([]Submission, error) {
	if store.persistent == nil {
		return nil, fmt.Errorf("list submissions: %w", ErrBackendUnavailable)
	}
	return store.persistent.ListSubmissionsByEmail(context, email, limit)
}

// # Seeding

/*
SeedIfEmpty seeds the persistent backend from the static source at most once
per process.

Description: A no-op on the snapshot backend. Failures are logged and
swallowed; the service then starts with an empty catalog. Two processes
seeding the same empty backend at once may both insert.
*/
func (store *Store) SeedIfEmpty(context context.Context) {
	if store.persistent == nil {
		return
	}

	store.seedOnce.Do(func() {
		report, err := Seed(context, store.persistent, store.source)
		if err != nil {
			store.logger.Error("catalog_seed_failed", slog.Any("error", err))
			return
		}
		if report.Skipped {
			store.logger.Info("catalog_seed_skipped", slog.String("reason", "groups_present"))
			return
		}
		store.logger.Info("catalog_seeded",
			slog.Int("groups", report.Groups),
			slog.Int("photocards", report.Photocards),
		)
	})
}
