// Copyright (c) 2026 Katalog. All rights reserved.

// Package pagination provides shared types and helpers for offset-based list endpoints.
//
// # Overview
//
// It standardizes how limit/offset navigation is requested via query parameters
// and how an already-fetched collection is sliced into a deterministic page
// that still reports the size of the full matching set.
package pagination

import (
	"net/http"

	"github.com/EarnestL/k-atalog/pkg/convert"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 40
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 200
)

// Params holds the parsed limit and offset from a request's query string.
type Params struct {
	Limit  int
	Offset int
}

// Page is one slice of a larger ordered collection.
//
// Total always reflects the full matching set, never len(Items).
type Page[T any] struct {
	Items []T
	Total int
}

// Slice returns the window [offset, offset+limit) of items together with the
// total item count.
//
// Out-of-range windows yield an empty (non-nil) slice. A non-positive limit
// yields an empty page; a negative offset is treated as zero.
func Slice[T any](items []T, limit, offset int) Page[T] {
	total := len(items)

	if offset < 0 {
		offset = 0
	}

	if limit <= 0 || offset >= total {
		return Page[T]{Items: []T{}, Total: total}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	window := make([]T, end-offset)
	copy(window, items[offset:end])

	return Page[T]{Items: window, Total: total}
}

// FromRequest parses limit/offset query parameters from an HTTP request using
// the given parameter names.
//
// # Clamping
//
// Invalid or non-positive limits fall back to [DefaultLimit]; limits above
// [MaxLimit] are clamped. Invalid or negative offsets fall back to zero.
func FromRequest(r *http.Request, limitKey, offsetKey string) Params {
	query := r.URL.Query()

	limit := convert.ToIntD(query.Get(limitKey), DefaultLimit)
	offset := convert.ToIntD(query.Get(offsetKey), 0)

	if limit < 1 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}
