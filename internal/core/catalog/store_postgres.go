// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EarnestL/k-atalog/internal/platform/constants"
	"github.com/EarnestL/k-atalog/internal/platform/dberr"
	"github.com/EarnestL/k-atalog/pkg/uuid"
)

// PostgresStore implements [Repository] over JSONB document tables.
//
// Each row pairs a database-minted 24-hex storage id with the entity
// document. Rows are read back in insertion order.
type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore constructs a store whose every call is bounded by timeout.
func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (repository *PostgresStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, repository.timeout)
}

// documentRow is one (storage id, document) pair.
type documentRow struct {
	storageID string
	body      []byte
}

func (repository *PostgresStore) queryDocuments(context context.Context, action, query string, args ...any) ([]documentRow, error) {
	context, cancel := repository.bounded(context)
	defer cancel()

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	documents := []documentRow{}
	for rows.Next() {
		var row documentRow
		if err := rows.Scan(&row.storageID, &row.body); err != nil {
			return nil, dberr.Wrap(err, action)
		}
		documents = append(documents, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return documents, nil
}

func (repository *PostgresStore) queryPhotocards(context context.Context, action, query string, args ...any) ([]Photocard, error) {
	rows, err := repository.queryDocuments(context, action, query, args...)
	if err != nil {
		return nil, err
	}

	cards := make([]Photocard, 0, len(rows))
	for _, row := range rows {
		card, err := decodePhotocard(row.storageID, row.body)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (repository *PostgresStore) findGroup(context context.Context, action, query string, arg string) (*GroupRecord, error) {
	context, cancel := repository.bounded(context)
	defer cancel()

	var row documentRow
	err := repository.db.QueryRow(context, query, arg).Scan(&row.storageID, &row.body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	record, err := decodeGroup(row.storageID, row.body)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (repository *PostgresStore) insertDocument(context context.Context, action, query string, args ...any) (string, error) {
	context, cancel := repository.bounded(context)
	defer cancel()

	var storageID string
	if err := repository.db.QueryRow(context, query, args...).Scan(&storageID); err != nil {
		return "", dberr.Wrap(err, action)
	}
	return storageID, nil
}

// # Group Retrieval

func (repository *PostgresStore) ListGroups(context context.Context) ([]Group, error) {
	const query = `SELECT _id, doc FROM catalog.groups ORDER BY seq`

	rows, err := repository.queryDocuments(context, "list_groups", query)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		record, err := decodeGroup(row.storageID, row.body)
		if err != nil {
			return nil, err
		}
		groups = append(groups, record.Group)
	}
	return groups, nil
}

// GroupByStorageID matches the internal identity exactly.
func (repository *PostgresStore) GroupByStorageID(context context.Context, id string) (*GroupRecord, error) {
	const query = `SELECT _id, doc FROM catalog.groups WHERE _id = $1`
	return repository.findGroup(context, "get_group_by_storage_id", query, id)
}

// GroupByLegacyID returns the earliest group whose document carries id.
func (repository *PostgresStore) GroupByLegacyID(context context.Context, id string) (*GroupRecord, error) {
	const query = `
		SELECT _id, doc FROM catalog.groups
		WHERE doc->>'id' = $1
		ORDER BY seq
		LIMIT 1
	`
	return repository.findGroup(context, "get_group_by_legacy_id", query, id)
}

// # Photocard Retrieval

func (repository *PostgresStore) ListPhotocards(context context.Context) ([]Photocard, error) {
	const query = `SELECT _id, doc FROM catalog.photocards ORDER BY seq`
	return repository.queryPhotocards(context, "list_photocards", query)
}

func (repository *PostgresStore) ListPhotocardsByGroup(context context.Context, groupIDs []string) ([]Photocard, error) {
	const query = `
		SELECT _id, doc FROM catalog.photocards
		WHERE doc->>'groupId' = ANY($1)
		ORDER BY seq
	`
	return repository.queryPhotocards(context, "list_photocards_by_group", query, groupIDs)
}

func (repository *PostgresStore) ListPhotocardsByMember(context context.Context, memberID string) ([]Photocard, error) {
	const query = `
		SELECT _id, doc FROM catalog.photocards
		WHERE doc->>'memberId' = $1
		ORDER BY seq
	`
	return repository.queryPhotocards(context, "list_photocards_by_member", query, memberID)
}

// # Seeding

func (repository *PostgresStore) HasGroups(context context.Context) (bool, error) {
	context, cancel := repository.bounded(context)
	defer cancel()

	var exists bool
	err := repository.db.QueryRow(context, `SELECT EXISTS (SELECT 1 FROM catalog.groups)`).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "count_groups")
	}
	return exists, nil
}

// InsertGroup stores group and returns its minted storage id.
func (repository *PostgresStore) InsertGroup(context context.Context, group Group) (string, error) {
	body, err := json.Marshal(group)
	if err != nil {
		return "", fmt.Errorf("encode group %s: %w", group.ID, err)
	}
	return repository.insertDocument(context, "insert_group",
		`INSERT INTO catalog.groups (doc) VALUES ($1) RETURNING _id`, body)
}

// InsertPhotocard stores card and returns its minted storage id.
func (repository *PostgresStore) InsertPhotocard(context context.Context, card Photocard) (string, error) {
	body, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("encode photocard %s: %w", card.ID, err)
	}
	return repository.insertDocument(context, "insert_photocard",
		`INSERT INTO catalog.photocards (doc) VALUES ($1) RETURNING _id`, body)
}

// # User Writes

/*
CreatePhotocard resolves the payload's names, assigns a fresh external id
and stores the card.

Description: An unresolved group never blocks the write; the card keeps the
normalized group name as its reference and the result is marked degraded.

Returns:
  - *CreateResult[Photocard]: The stored card
  - error: [ErrBackendUnavailable] on timeout or lost connectivity
*/
func (repository *PostgresStore) CreatePhotocard(context context.Context, input PhotocardInput) (*CreateResult[Photocard], error) {
	refs, err := ResolveReferences(context, repository, input.GroupName, input.MemberName)
	if err != nil {
		return nil, err
	}

	card := BuildPhotocard(uuid.New(), refs, input)
	if _, err := repository.InsertPhotocard(context, card); err != nil {
		return nil, err
	}

	return &CreateResult[Photocard]{Record: card, Degraded: refs.Degraded}, nil
}

// CreateSubmission appends one submission stamped with the current time.
func (repository *PostgresStore) CreateSubmission(context context.Context, input SubmissionInput) (*CreateResult[Submission], error) {
	if input.Status == "" {
		input.Status = StatusPending
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("submission status %q is not recognised", input.Status)
	}

	refs, err := ResolveReferences(context, repository, input.GroupName, input.MemberName)
	if err != nil {
		return nil, err
	}

	submission := Submission{
		Photocard:   BuildPhotocard(uuid.New(), refs, input.PhotocardInput),
		UserEmail:   strings.TrimSpace(input.UserEmail),
		SubmittedAt: time.Now().UTC(),
		Status:      input.Status,
		PhotocardID: input.PhotocardID,
	}

	body, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("encode submission %s: %w", submission.ID, err)
	}

	_, err = repository.insertDocument(context, "insert_submission", `
		INSERT INTO catalog.submissions (user_email, submitted_at, doc)
		VALUES ($1, $2, $3)
		RETURNING _id
	`, submission.UserEmail, submission.SubmittedAt, body)
	if err != nil {
		return nil, err
	}

	return &CreateResult[Submission]{Record: submission, Degraded: refs.Degraded}, nil
}

// ListSubmissionsByEmail returns up to limit submissions for email, newest first.
func (repository *PostgresStore) ListSubmissionsByEmail(context context.Context, email string, limit int) ([]Submission, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []Submission{}, nil
	}
	if limit <= 0 {
		limit = constants.SubmissionListLimit
	}

	const query = `
		SELECT _id, doc FROM catalog.submissions
		WHERE user_email = $1
		ORDER BY submitted_at DESC, seq DESC
		LIMIT $2
	`
	rows, err := repository.queryDocuments(context, "list_submissions_by_email", query, email, limit)
	if err != nil {
		return nil, err
	}

	submissions := make([]Submission, 0, len(rows))
	for _, row := range rows {
		submission, err := decodeSubmission(row.storageID, row.body)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}
