// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines two ingested city collections into one.
package merge

import "github.com/pdiddy/atlas-engine/pkg/types"

// ancientCutoff is the year below which the secondary source wins on
// merge. The secondary (Modelski) table is the better source for the
// ancient era; the primary (Chandler) is authoritative from 1000 CE on.
// The comparison is purely numeric, so every BCE year falls below it.
const ancientCutoff = 1000

// Collections overlays secondary onto a deep copy of primary. Records
// are never deleted; only population-year entries may be overwritten. A
// secondary entry replaces the primary's when the year is absent from
// the primary record or lies below ancientCutoff. Result order is
// primary's insertion order followed by secondary-only records in
// theirs.
func Collections(primary, secondary *types.Collection) *types.Collection {
	merged := types.NewCollection()

	for _, rec := range primary.Records() {
		merged.Add(rec.Clone())
	}

	for _, rec := range secondary.Records() {
		existing, ok := merged.Get(rec.Key())
		if !ok {
			merged.Add(rec.Clone())
			continue
		}
		for year, pop := range rec.Populations {
			if _, have := existing.Populations[year]; !have || year < ancientCutoff {
				existing.Populations[year] = pop
			}
		}
	}

	return merged
}
