// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"errors"
	"fmt"

	"github.com/EarnestL/k-atalog/internal/platform/dberr"
)

// ErrBackendUnavailable means the persistent store could not answer in time
// or a write was attempted without one. It is never folded into an empty
// result.
var ErrBackendUnavailable = dberr.ErrUnavailable

// ErrSnapshotLoad wraps any failure to produce the in-process snapshot.
var ErrSnapshotLoad = errors.New("catalog snapshot load failed")

// ValidationError reports a static-source record that violates an entity
// invariant. It aborts a load or a seed.
type ValidationError struct {
	Entity string
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s at index %d: field %q %s", e.Entity, e.Index, e.Field, e.Reason)
}

// IsValidationError reports whether err carries a [*ValidationError].
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
