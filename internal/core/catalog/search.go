// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/EarnestL/k-atalog/pkg/pagination"
	"github.com/EarnestL/k-atalog/pkg/slice"
)

// # Search Engine

// foldQuery lower-cases and trims a raw query. Casers are not safe for
// concurrent use, so each call gets its own.
func foldQuery(query string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(query))
}

// containsAny reports whether any field contains the already-folded query.
func containsAny(query string, fields ...string) bool {
	caser := cases.Lower(language.Und)
	for _, field := range fields {
		if strings.Contains(caser.String(field), query) {
			return true
		}
	}
	return false
}

// MatchGroups returns the groups whose name or localized name contains query.
func MatchGroups(groups []Group, query string) []Group {
	folded := foldQuery(query)
	matched := slice.Filter(groups, func(group Group) bool {
		return folded == "" || containsAny(folded, group.Name, group.LocalizedName)
	})
	if matched == nil {
		return []Group{}
	}
	return matched
}

// MatchMembers flattens members across groups, in group then member order,
// and keeps those whose name or localized name contains query.
func MatchMembers(groups []Group, query string) []Member {
	folded := foldQuery(query)
	matched := []Member{}
	for _, group := range groups {
		for _, member := range group.Members {
			if folded == "" || containsAny(folded, member.Name, member.LocalizedName) {
				matched = append(matched, member)
			}
		}
	}
	return matched
}

// MatchPhotocards keeps cards whose album, member name, group name or
// version contains query.
func MatchPhotocards(photocards []Photocard, query string) []Photocard {
	folded := foldQuery(query)
	matched := slice.Filter(photocards, func(card Photocard) bool {
		return folded == "" || containsAny(folded, card.Album, card.MemberName, card.GroupName, card.Version)
	})
	if matched == nil {
		return []Photocard{}
	}
	return matched
}

/*
Search matches query independently against groups, members and photocards.

Description: An empty or whitespace-only query matches everything. Only the
photocard subset is paginated; groups and members are always returned whole.

Parameters:
  - groups, photocards: The full catalog, already fetched
  - query: Free text, matched case-insensitively as a substring
  - limit, offset: Photocard window

Returns:
  - SearchResult: Matched subsets plus the pre-slice photocard total
*/
func Search(groups []Group, photocards []Photocard, query string, limit, offset int) SearchResult {
	page := pagination.Slice(MatchPhotocards(photocards, query), limit, offset)

	return SearchResult{
		Groups:          cloneGroups(MatchGroups(groups, query)),
		Members:         MatchMembers(groups, query),
		Photocards:      page.Items,
		TotalPhotocards: page.Total,
	}
}
