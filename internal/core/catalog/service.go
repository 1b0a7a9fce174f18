// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/EarnestL/k-atalog/internal/platform/apperr"
	"github.com/EarnestL/k-atalog/internal/platform/constants"
	"github.com/EarnestL/k-atalog/internal/platform/validate"
	"github.com/EarnestL/k-atalog/pkg/pagination"
)

// # Service Layer

const (
	minPhotocardYear = 1990
	maxPhotocardYear = 2100
	maxTextLength    = 200
	maxURLLength     = 2048
)

// Service applies request rules on top of the [Store] and turns store
// outcomes into API errors.
type Service struct {
	store  *Store
	logger *slog.Logger
}

// NewService constructs a new catalog [Service].
func NewService(store *Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// PersistentBackendActive reports whether writes can be served.
func (service *Service) PersistentBackendActive() bool {
	return service.store.IsPersistentBackendActive()
}

// translate maps store failures to [apperr.AppError]. Lookup misses never
// reach here; callers check for nil results themselves.
func (service *Service) translate(err error, action string) error {
	if err == nil || apperr.IsAppError(err) {
		return err
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return apperr.ServiceUnavailable("Catalog storage is unavailable. Try again later.", err)
	}
	if errors.Is(err, ErrSnapshotLoad) {
		return apperr.ServiceUnavailable("Catalog data could not be loaded.", err)
	}
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// # Groups & Members

func (service *Service) ListGroups(context context.Context) ([]Group, error) {
	groups, err := service.store.ListGroups(context)
	return groups, service.translate(err, "list_groups")
}

/*
GetGroup retrieves a group by legacy or storage id.

Returns:
  - *Group: The group
  - error: apperr.NotFound when neither id namespace matches
*/
func (service *Service) GetGroup(context context.Context, ref string) (*Group, error) {
	group, err := service.store.GetGroup(context, ref)
	if err != nil {
		return nil, service.translate(err, "get_group")
	}
	if group == nil {
		return nil, apperr.NotFound("Group")
	}
	return group, nil
}

func (service *Service) ListMembers(context context.Context, groupRef string) ([]Member, error) {
	group, err := service.GetGroup(context, groupRef)
	if err != nil {
		return nil, err
	}
	return group.Members, nil
}

func (service *Service) GetMember(context context.Context, groupRef, memberID string) (*Member, error) {
	if _, err := service.GetGroup(context, groupRef); err != nil {
		return nil, err
	}

	member, err := service.store.GetMember(context, groupRef, memberID)
	if err != nil {
		return nil, service.translate(err, "get_member")
	}
	if member == nil {
		return nil, apperr.NotFound("Member")
	}
	return member, nil
}

// ListMemberPhotocards returns the cards of a member that exists in the group.
func (service *Service) ListMemberPhotocards(context context.Context, groupRef, memberID string) ([]Photocard, error) {
	member, err := service.GetMember(context, groupRef, memberID)
	if err != nil {
		return nil, err
	}

	cards, err := service.store.ListGroupMemberPhotocards(context, groupRef, member.ID)
	return cards, service.translate(err, "list_member_photocards")
}

// # Photocards

func (service *Service) ListPhotocards(context context.Context) ([]Photocard, error) {
	cards, err := service.store.ListAllPhotocards(context)
	return cards, service.translate(err, "list_photocards")
}

// ListGroupPhotocards pages through a group's cards; the group must exist.
func (service *Service) ListGroupPhotocards(context context.Context, groupRef string, params pagination.Params) (pagination.Page[Photocard], error) {
	if _, err := service.GetGroup(context, groupRef); err != nil {
		return pagination.Page[Photocard]{}, err
	}

	page, err := service.store.ListPhotocardsByGroupPaginated(context, groupRef, params.Limit, params.Offset)
	return page, service.translate(err, "list_group_photocards")
}

// # Search

/*
Search runs a query. The query must be present, but a whitespace-only query
matches the whole catalog.

Returns:
  - SearchResult: Matched groups, members and one page of photocards
  - error: 400 when the query is missing or longer than the allowed length
*/
func (service *Service) Search(context context.Context, query string, params pagination.Params) (SearchResult, error) {
	validator := &validate.Validator{}
	validator.
		Present("q", query).
		MaxLen("q", query, constants.SearchQueryMaxLength)
	if err := validator.Err(); err != nil {
		return SearchResult{}, err
	}

	result, err := service.store.Search(context, query, params.Limit, params.Offset)
	return result, service.translate(err, "search")
}

// SearchAll returns the whole catalog with one page of photocards.
func (service *Service) SearchAll(context context.Context, params pagination.Params) (SearchResult, error) {
	result, err := service.store.Search(context, "", params.Limit, params.Offset)
	return result, service.translate(err, "search_all")
}

// # Contributions

func validatePhotocardInput(input PhotocardInput) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldMemberName, input.MemberName).
		MaxLen(FieldMemberName, input.MemberName, maxTextLength).
		Required(FieldGroupName, input.GroupName).
		MaxLen(FieldGroupName, input.GroupName, maxTextLength).
		Required(FieldAlbum, input.Album).
		MaxLen(FieldAlbum, input.Album, maxTextLength).
		Required(FieldVersion, input.Version).
		MaxLen(FieldVersion, input.Version, maxTextLength).
		Range(FieldYear, input.Year, minPhotocardYear, maxPhotocardYear).
		OneOf(FieldType, string(input.Type), PhotocardTypes...).
		URL(FieldImageURL, input.ImageURL).
		MaxLen(FieldImageURL, input.ImageURL, maxURLLength).
		OptionalURL(FieldBackImageURL, input.BackImageURL)

	if input.BackImageURL != nil && utf8.RuneCountInString(*input.BackImageURL) > maxURLLength {
		validator.Custom(FieldBackImageURL, true, fmt.Sprintf("Maximum %d characters", maxURLLength))
	}

	return validator.Err()
}

/*
CreatePhotocard stores a user-contributed card and records an accepted
submission linked to it.

Description: The submission is written after the card; a failure there is
logged and does not undo the card.

Parameters:
  - context: context.Context
  - email: string (Submitter, from the verified token)
  - input: PhotocardInput

Returns:
  - *Photocard: The created card
  - error: 400 on invalid input, 503 without a reachable persistent backend
*/
func (service *Service) CreatePhotocard(context context.Context, email string, input PhotocardInput) (*Photocard, error) {
	if err := validatePhotocardInput(input); err != nil {
		return nil, err
	}
	if input.BackImageURL != nil && strings.TrimSpace(*input.BackImageURL) == "" {
		input.BackImageURL = nil
	}

	created, err := service.store.CreatePhotocard(context, input)
	if err != nil {
		return nil, service.translate(err, "create_photocard")
	}
	card := created.Record

	photocardID := card.ID
	_, err = service.store.CreateSubmission(context, SubmissionInput{
		PhotocardInput: input,
		UserEmail:      email,
		Status:         StatusAccepted,
		PhotocardID:    &photocardID,
	})
	if err != nil {
		service.logger.Error("submission_record_failed",
			slog.String("photocard_id", card.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("photocard_created",
		slog.String("photocard_id", card.ID),
		slog.String("group_id", card.GroupID),
		slog.String("member_id", card.MemberID),
		slog.Bool("degraded", created.Degraded),
	)

	return &card, nil
}

// ListSubmissions returns the caller's newest submissions. A token without
// an email has no history.
func (service *Service) ListSubmissions(context context.Context, email string) ([]Submission, error) {
	if !service.store.IsPersistentBackendActive() {
		return nil, apperr.ServiceUnavailable("Submissions require the persistent catalog backend.", ErrBackendUnavailable)
	}
	if strings.TrimSpace(email) == "" {
		return []Submission{}, nil
	}

	submissions, err := service.store.ListSubmissionsByEmail(context, email, constants.SubmissionListLimit)
	return submissions, service.translate(err, "list_submissions")
}
