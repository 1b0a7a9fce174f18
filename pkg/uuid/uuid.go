// Copyright (c) 2026 Katalog. All rights reserved.

/*
Package uuid provides time-ordered external identifiers for catalog records.

It wraps the google/uuid library to generate Version 7 values. External ids
are deliberately never in the storage backend's native id shape, so a created
record can always be told apart from a storage-assigned identity.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Portable: Same format regardless of which backend holds the record.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}
