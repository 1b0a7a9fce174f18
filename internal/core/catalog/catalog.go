// Copyright (c) 2026 Katalog. All rights reserved.

/*
Package catalog serves the Groups → Members → Photocards hierarchy and the
append-only Submission log.

It hides which of two interchangeable backends answers a call: an in-process
snapshot loaded once from a static source, or a persistent document store.

# Core Responsibility

  - Entities: Defines [Group], [Member], [Photocard] and [Submission].
  - Identity: Reconciles legacy (human-assigned) ids with storage-assigned ids.
  - Seeding: Populates an empty persistent backend from the static source.
  - Search: Substring matching with independent Photocard pagination.

Every entity returned to a caller is a value copy; nothing handed out is ever
mutated afterwards.
*/
package catalog

import (
	"time"

	"github.com/EarnestL/k-atalog/pkg/slice"
)

// # Catalog Enums

// PhotocardType classifies how a photocard was distributed.
type PhotocardType string

const (
	TypeAlbum   PhotocardType = "album"
	TypePOB     PhotocardType = "pob"
	TypeFansign PhotocardType = "fansign"
	TypeSpecial PhotocardType = "special"
)

// PhotocardTypes lists every accepted [PhotocardType] value.
var PhotocardTypes = []string{string(TypeAlbum), string(TypePOB), string(TypeFansign), string(TypeSpecial)}

// Valid reports whether t is one of the known types.
func (t PhotocardType) Valid() bool {
	switch t {
	case TypeAlbum, TypePOB, TypeFansign, TypeSpecial:
		return true
	default:
		return false
	}
}

// SubmissionStatus is the review outcome of a user submission.
type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "accepted"
	StatusRejected SubmissionStatus = "rejected"
	StatusPending  SubmissionStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusPending:
		return true
	default:
		return false
	}
}

// # Core Entities

// Group is an artist group. Members keep their source order, which is the
// canonical member ordering.
type Group struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localizedName"`
	Company       string   `json:"company"`
	DebutYear     int      `json:"debutYear"`
	ImageURL      string   `json:"imageUrl"`
	Members       []Member `json:"members"`
}

// Member belongs to exactly one group but carries no reference to it; the
// id is only unique within the parent group.
type Member struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName"`
	ImageURL      string `json:"imageUrl"`
}

// Photocard is a single collectible card.
//
// GroupID and MemberID are soft references: they are never validated against
// live records. MemberName and GroupName are denormalized at creation time and
// stay authoritative for display.
type Photocard struct {
	ID           string        `json:"id"`
	MemberID     string        `json:"memberId"`
	MemberName   string        `json:"memberName"`
	GroupID      string        `json:"groupId"`
	GroupName    string        `json:"groupName"`
	Album        string        `json:"album"`
	Version      string        `json:"version"`
	Year         int           `json:"year"`
	Type         PhotocardType `json:"type"`
	ImageURL     string        `json:"imageUrl"`
	BackImageURL *string       `json:"backImageUrl,omitempty"`
}

// Submission records one user contribution. The embedded Photocard's ID is
// the submission's own id; PhotocardID links to the card it produced.
type Submission struct {
	Photocard
	UserEmail   string           `json:"userEmail"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Status      SubmissionStatus `json:"status"`
	PhotocardID *string          `json:"photocardId,omitempty"`
}

// # Write Payloads

// PhotocardInput is a user-supplied photocard described by display names
// rather than ids.
type PhotocardInput struct {
	MemberName   string        `json:"memberName"`
	GroupName    string        `json:"groupName"`
	Album        string        `json:"album"`
	Version      string        `json:"version"`
	Year         int           `json:"year"`
	Type         PhotocardType `json:"type"`
	ImageURL     string        `json:"imageUrl"`
	BackImageURL *string       `json:"backImageUrl,omitempty"`
}

// SubmissionInput is a [PhotocardInput] plus submission bookkeeping.
type SubmissionInput struct {
	PhotocardInput
	UserEmail   string
	Status      SubmissionStatus
	PhotocardID *string
}

// # Read Results

// SearchResult holds the three independently matched subsets of a search.
// Only Photocards is paginated; TotalPhotocards is the pre-slice match count.
type SearchResult struct {
	Groups          []Group     `json:"groups"`
	Members         []Member    `json:"members"`
	Photocards      []Photocard `json:"photocards"`
	TotalPhotocards int         `json:"totalPhotocards"`
}

// # Value Copies

// clone returns a deep copy so callers cannot reach shared member slices.
func (g Group) clone() Group {
	copied := g
	copied.Members = make([]Member, len(g.Members))
	copy(copied.Members, g.Members)
	return copied
}

func cloneGroups(groups []Group) []Group {
	return slice.Map(groups, Group.clone)
}

// # Field Identifiers

const (
	FieldID            = "id"
	FieldName          = "name"
	FieldLocalizedName = "localizedName"
	FieldCompany       = "company"
	FieldDebutYear     = "debutYear"
	FieldImageURL      = "imageUrl"
	FieldMembers       = "members"
	FieldMemberID      = "memberId"
	FieldMemberName    = "memberName"
	FieldGroupID       = "groupId"
	FieldGroupName     = "groupName"
	FieldAlbum         = "album"
	FieldVersion       = "version"
	FieldYear          = "year"
	FieldType          = "type"
	FieldBackImageURL  = "backImageUrl"
	FieldUserEmail     = "userEmail"
	FieldSubmittedAt   = "submittedAt"
)
