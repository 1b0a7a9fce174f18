// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// # Identifier Reconciliation

// StorageIDLength is the fixed length of a storage-assigned id.
const StorageIDLength = 24

// GroupRecord pairs a Group with the identity its backend stores it under.
// StorageID is empty for records served from the snapshot.
type GroupRecord struct {
	Group     Group
	StorageID string
}

// RefID returns the id a new soft reference to this group should carry.
func (record GroupRecord) RefID() string {
	if record.StorageID != "" {
		return record.StorageID
	}
	return record.Group.ID
}

// RefIDs returns every id a stored soft reference may use for this group.
func (record GroupRecord) RefIDs() []string {
	if record.StorageID == "" || record.StorageID == record.Group.ID {
		return []string{record.Group.ID}
	}
	return []string{record.Group.ID, record.StorageID}
}

// GroupFinder looks groups up by each identity namespace. A miss is
// (nil, nil); only backend failures are errors.
type GroupFinder interface {
	GroupByStorageID(context context.Context, id string) (*GroupRecord, error)
	GroupByLegacyID(context context.Context, id string) (*GroupRecord, error)
}

// IsStorageID reports whether s has the exact shape of a storage id:
// 24 lowercase hexadecimal characters.
func IsStorageID(s string) bool {
	if len(s) != StorageIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

/*
ResolveGroupRef finds the group a reference points at.

Description: A reference shaped like a storage id is tried against storage
ids first; on a miss (or when the shape doesn't match) it falls back to the
legacy id. A miss in both namespaces is (nil, nil).

Parameters:
  - context: context.Context
  - finder: GroupFinder
  - ref: string

Returns:
  - *GroupRecord: The matched record or nil
  - error: Backend failures only
*/
func ResolveGroupRef(context context.Context, finder GroupFinder, ref string) (*GroupRecord, error) {
	if ref == "" {
		return nil, nil
	}

	if IsStorageID(ref) {
		record, err := finder.GroupByStorageID(context, ref)
		if err != nil || record != nil {
			return record, err
		}
	}

	return finder.GroupByLegacyID(context, ref)
}

// NormalizeHumanName lowercases name and strips all whitespace, turning a
// display name like "Stray Kids" into the candidate legacy id "straykids".
func NormalizeHumanName(name string) string {
	lowered := cases.Lower(language.Und).String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, lowered)
}

// # Reference Resolution

// References is the outcome of joining a name-based payload against the
// stored groups.
type References struct {
	GroupID    string
	GroupName  string
	MemberID   string
	MemberName string

	// Degraded is set when no group matched and GroupID fell back to the
	// normalized name.
	Degraded bool
}

/*
ResolveReferences turns display names into soft references.

Description: The group name is normalized and resolved; a hit yields the
group's storage-preferred id and canonical name, a miss keeps the normalized
string as a degraded reference. The member is matched by normalized id or
name within the resolved group, falling back to the normalized member name.

Returns:
  - References: The joined ids and display names
  - error: Backend failures only
*/
func ResolveReferences(context context.Context, finder GroupFinder, groupName, memberName string) (References, error) {
	groupKey := NormalizeHumanName(groupName)
	memberKey := NormalizeHumanName(memberName)

	refs := References{
		GroupID:    groupKey,
		GroupName:  strings.TrimSpace(groupName),
		MemberID:   memberKey,
		MemberName: strings.TrimSpace(memberName),
	}

	record, err := ResolveGroupRef(context, finder, groupKey)
	if err != nil {
		return References{}, err
	}
	if record == nil {
		refs.Degraded = true
		return refs, nil
	}

	refs.GroupID = record.RefID()
	refs.GroupName = record.Group.Name

	if member, ok := matchMember(record.Group.Members, memberKey); ok {
		refs.MemberID = member.ID
		refs.MemberName = member.Name
	}

	return refs, nil
}

func matchMember(members []Member, key string) (Member, bool) {
	for _, member := range members {
		if member.ID == key || NormalizeHumanName(member.Name) == key {
			return member, true
		}
	}
	return Member{}, false
}

// BuildPhotocard assembles a card from a name-based payload and its
// resolved references.
func BuildPhotocard(id string, refs References, input PhotocardInput) Photocard {
	return Photocard{
		ID:           id,
		MemberID:     refs.MemberID,
		MemberName:   refs.MemberName,
		GroupID:      refs.GroupID,
		GroupName:    refs.GroupName,
		Album:        strings.TrimSpace(input.Album),
		Version:      strings.TrimSpace(input.Version),
		Year:         input.Year,
		Type:         input.Type,
		ImageURL:     strings.TrimSpace(input.ImageURL),
		BackImageURL: input.BackImageURL,
	}
}
