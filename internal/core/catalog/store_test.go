// Copyright (c) 2026 Katalog. All rights reserved.

package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EarnestL/k-atalog/internal/core/catalog"
)

/*
TestStore_SeededReferences walks a seeded persistent backend through both
identity namespaces.
*/
func TestStore_SeededReferences(t *testing.T) {
	ctx := context.Background()
	store, repository := persistentStore(ctx)
	require.True(t, store.IsPersistentBackendActive())

	// 1. Legacy id still resolves after seeding
	group, err := store.GetGroup(ctx, "bts")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, "BTS", group.Name)

	record, err := repository.GroupByLegacyID(ctx, "bts")
	require.NoError(t, err)
	storageID := record.StorageID

	// 2. Storage id resolves to the same group
	byStorage, err := store.GetGroup(ctx, storageID)
	require.NoError(t, err)
	require.NotNil(t, byStorage)
	assert.Equal(t, "bts", byStorage.ID)

	// 3. Cards were rewritten to the storage id
	cards, err := store.ListPhotocardsByGroup(ctx, storageID)
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	assert.Equal(t, "pc1", cards[0].ID)
	assert.Equal(t, storageID, cards[0].GroupID)

	// 4. The legacy ref lists the same cards
	legacyCards, err := store.ListPhotocardsByGroup(ctx, "bts")
	require.NoError(t, err)
	assert.Equal(t, cards, legacyCards)

	// 5. Search matches the album, not the group
	result, err := store.Search(ctx, "proof", 20, 0)
	require.NoError(t, err)
	assert.Contains(t, photocardIDs(result.Photocards), "pc1")
	assert.Empty(t, result.Groups)
}

func TestStore_SnapshotReads(t *testing.T) {
	ctx := context.Background()
	store := snapshotStore()
	require.False(t, store.IsPersistentBackendActive())

	members, err := store.ListMembers(ctx, "bts")
	require.NoError(t, err)
	require.NotEmpty(t, members)
	assert.Equal(t, "rm", members[0].ID)

	member, err := store.GetMember(ctx, "bts", "jin")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "Jin", member.Name)

	// Members are scoped to their own group
	other, err := store.GetMember(ctx, "straykids", "jin")
	require.NoError(t, err)
	assert.Nil(t, other)

	missing, err := store.GetGroup(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	noMembers, err := store.ListMembers(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, noMembers)

	all, err := store.ListAllPhotocards(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pc1", all[0].ID)

	byMember, err := store.ListPhotocardsByMember(ctx, "felix")
	require.NoError(t, err)
	assert.Equal(t, []string{"pc4"}, photocardIDs(byMember))
}

/*
TestStore_PaginatedGroupPhotocards verifies pages rebuild the full listing.
*/
func TestStore_PaginatedGroupPhotocards(t *testing.T) {
	ctx := context.Background()
	store := snapshotStore()

	full, err := store.ListPhotocardsByGroup(ctx, "bts")
	require.NoError(t, err)

	var rebuilt []catalog.Photocard
	for offset := 0; offset < len(full); offset += 2 {
		page, err := store.ListPhotocardsByGroupPaginated(ctx, "bts", 2, offset)
		require.NoError(t, err)
		assert.Equal(t, len(full), page.Total)
		rebuilt = append(rebuilt, page.Items...)
	}
	assert.Equal(t, full, rebuilt)

	past, err := store.ListPhotocardsByGroupPaginated(ctx, "bts", 2, len(full)+5)
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.Equal(t, len(full), past.Total)
}

/*
TestStore_CreatePhotocard covers resolved and degraded references.
*/
func TestStore_CreatePhotocard(t *testing.T) {
	ctx := context.Background()
	store, repository := persistentStore(ctx)

	record, err := repository.GroupByLegacyID(ctx, "straykids")
	require.NoError(t, err)

	input := catalog.PhotocardInput{
		MemberName: "felix",
		GroupName:  "stray kids",
		Album:      "ATE",
		Version:    "Chk Chk Boom",
		Year:       2024,
		Type:       catalog.TypePOB,
		ImageURL:   "https://images.katalog.app/photocards/ate.jpg",
	}

	t.Run("resolved", func(t *testing.T) {
		result, err := store.CreatePhotocard(ctx, input)
		require.NoError(t, err)

		assert.False(t, result.Degraded)
		assert.Equal(t, record.StorageID, result.Record.GroupID)
		assert.Equal(t, "Stray Kids", result.Record.GroupName)
		assert.Equal(t, "felix", result.Record.MemberID)
		assert.Equal(t, "Felix", result.Record.MemberName)

		cards, err := store.ListPhotocardsByGroup(ctx, "straykids")
		require.NoError(t, err)
		assert.Contains(t, photocardIDs(cards), result.Record.ID)
	})

	t.Run("degraded", func(t *testing.T) {
		degradedInput := input
		degradedInput.GroupName = "Le Sserafim"
		degradedInput.MemberName = "Chaewon"

		result, err := store.CreatePhotocard(ctx, degradedInput)
		require.NoError(t, err)

		assert.True(t, result.Degraded)
		assert.Equal(t, "lesserafim", result.Record.GroupID)

		cards, err := store.ListPhotocardsByGroup(ctx, "lesserafim")
		require.NoError(t, err)
		assert.Equal(t, []string{result.Record.ID}, photocardIDs(cards))
	})
}

/*
TestStore_WritesNeedPersistentBackend verifies the snapshot backend refuses writes.
*/
func TestStore_WritesNeedPersistentBackend(t *testing.T) {
	ctx := context.Background()
	store := snapshotStore()

	_, err := store.CreatePhotocard(ctx, catalog.PhotocardInput{GroupName: "BTS", MemberName: "RM"})
	assert.True(t, errors.Is(err, catalog.ErrBackendUnavailable))

	_, err = store.CreateSubmission(ctx, catalog.SubmissionInput{UserEmail: "a@b.c"})
	assert.True(t, errors.Is(err, catalog.ErrBackendUnavailable))

	_, err = store.ListSubmissionsByEmail(ctx, "a@b.c", 10)
	assert.True(t, errors.Is(err, catalog.ErrBackendUnavailable))

	// Seeding is a no-op here
	store.SeedIfEmpty(ctx)
}

/*
TestStore_SeedIfEmpty verifies repeated calls never duplicate the catalog.
*/
func TestStore_SeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store, repository := persistentStore(ctx)

	first, err := repository.ListPhotocards(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	store.SeedIfEmpty(ctx)

	second, err := repository.ListPhotocards(ctx)
	require.NoError(t, err)
	assert.Len(t, second, len(first))

	// A fresh facade over the same populated backend also skips
	again := catalog.NewStore(catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger()), repository, catalog.EmbeddedSource(), discardLogger())
	again.SeedIfEmpty(ctx)

	third, err := repository.ListPhotocards(ctx)
	require.NoError(t, err)
	assert.Len(t, third, len(first))
}

func TestStore_SeedFailureIsSwallowed(t *testing.T) {
	repository := newMemoryRepository()
	repository.failWith = catalog.ErrBackendUnavailable

	store := catalog.NewStore(catalog.NewSnapshotStore(catalog.EmbeddedSource(), discardLogger()), repository, catalog.EmbeddedSource(), discardLogger())
	store.SeedIfEmpty(context.Background())

	_, err := store.ListGroups(context.Background())
	assert.True(t, errors.Is(err, catalog.ErrBackendUnavailable))
}

/*
TestStore_Submissions verifies newest-first listing scoped to one email.
*/
func TestStore_Submissions(t *testing.T) {
	ctx := context.Background()
	store, _ := persistentStore(ctx)

	base := catalog.PhotocardInput{
		MemberName: "RM", GroupName: "BTS", Album: "Proof", Version: "Standard",
		Year: 2022, Type: catalog.TypeAlbum, ImageURL: "https://x/y.jpg",
	}

	var created []string
	for range 3 {
		result, err := store.CreateSubmission(ctx, catalog.SubmissionInput{
			PhotocardInput: base,
			UserEmail:      "fan@example.com",
			Status:         catalog.StatusAccepted,
		})
		require.NoError(t, err)
		created = append(created, result.Record.ID)
	}
	_, err := store.CreateSubmission(ctx, catalog.SubmissionInput{PhotocardInput: base, UserEmail: "other@example.com", Status: catalog.StatusPending})
	require.NoError(t, err)

	submissions, err := store.ListSubmissionsByEmail(ctx, "fan@example.com", 10)
	require.NoError(t, err)
	require.Len(t, submissions, 3)
	assert.Equal(t, created[2], submissions[0].ID)
	assert.Equal(t, created[0], submissions[2].ID)

	limited, err := store.ListSubmissionsByEmail(ctx, "fan@example.com", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
