// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"context"
	"fmt"
)

// SeedReport summarizes one seeding attempt.
type SeedReport struct {
	Skipped    bool
	Groups     int
	Photocards int
}

/*
Seed copies the static source into an empty target.

Description: The target counts as empty when it holds no groups. Groups are
inserted first so each legacy id can be mapped to its storage id; photocards
are then inserted with groupId rewritten through that map. A photocard whose
groupId names no seeded group keeps its original value. The source is fully
validated before anything is written.

Parameters:
  - context: context.Context
  - target: SeedTarget
  - source: Source

Returns:
  - SeedReport: Counts written, or Skipped when the target already had groups
  - error: Source, validation, or backend failures
*/
func Seed(context context.Context, target SeedTarget, source Source) (SeedReport, error) {
	populated, err := target.HasGroups(context)
	if err != nil {
		return SeedReport{}, fmt.Errorf("seed empty check: %w", err)
	}
	if populated {
		return SeedReport{Skipped: true}, nil
	}

	dataset, err := LoadDataset(source)
	if err != nil {
		return SeedReport{}, fmt.Errorf("seed: %w", err)
	}

	storageIDs := make(map[string]string, len(dataset.Groups))
	for _, group := range dataset.Groups {
		storageID, err := target.InsertGroup(context, group)
		if err != nil {
			return SeedReport{}, fmt.Errorf("seed group %s: %w", group.ID, err)
		}
		storageIDs[group.ID] = storageID
	}

	for _, card := range dataset.Photocards {
		if storageID, ok := storageIDs[card.GroupID]; ok {
			card.GroupID = storageID
		}
		if _, err := target.InsertPhotocard(context, card); err != nil {
			return SeedReport{}, fmt.Errorf("seed photocard %s: %w", card.ID, err)
		}
	}

	return SeedReport{Groups: len(dataset.Groups), Photocards: len(dataset.Photocards)}, nil
}
