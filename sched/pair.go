// Pairing Heuristic
//
// Copyright (c) 2023, 2024  The go-cgos authors
//
// This file is part of go-cgos.
//
// go-cgos is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License, version 3,
// as published by the Free Software Foundation.
//
// go-cgos is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-cgos. If not, see
// <http://www.gnu.org/licenses/>

package sched

import (
	"math/rand"
	"sort"

	cgos "go-cgos"
)

// Tuning of the jitter window.  The window grows with the gaps in the
// rating ladder, so a sparse top does not starve while a dense middle
// still gets close pairings.
const (
	pairSkip     = 4
	pairSpread   = 1.5
	pairFloor    = 500.0
	pairFallback = 2000.0
)

// averageRating is the mean of the waiting pool, DEF when it is
// empty.  New accounts are opened at this value.
func averageRating(ws []cgos.Candidate, def float64) float64 {
	if len(ws) == 0 {
		return def
	}
	sum := 0.0
	for _, w := range ws {
		sum += w.Rating
	}
	return sum / float64(len(ws))
}

// jitterRange computes the window within which pairing order is
// randomised.  WS must be sorted by descending rating.
func jitterRange(ws []cgos.Candidate) float64 {
	maxdiff := pairFallback
	if len(ws) > pairSkip {
		maxdiff = 0
		for i := 0; i+pairSkip < len(ws); i++ {
			if d := ws[i].Rating - ws[i+pairSkip].Rating; d > maxdiff {
				maxdiff = d
			}
		}
	}

	if r := pairSpread * maxdiff; r > pairFloor {
		return r
	}
	return pairFloor
}

// Pairings pairs the waiting pool for a new round.
//
// The pool is ordered by rating with a bounded random jitter and
// walked in adjacent pairs.  A pair of two anchors is usually dropped
// so the reference players do not burn their games on each other.
// Colours go to whichever assignment the two players have seen less,
// as counted by PRIOR.
func Pairings(ws []cgos.Candidate, anchors map[string]float64, anchorRate float64, prior func(white, black string) int, rnd *rand.Rand) []cgos.Pairing {
	if len(ws) < 2 {
		return nil
	}

	sorted := make([]cgos.Candidate, len(ws))
	copy(sorted, ws)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	spread := jitterRange(sorted)
	keys := make(map[string]float64, len(sorted))
	for _, w := range sorted {
		keys[w.Name] = w.Rating + spread*rnd.Float64()
	}
	sort.Slice(sorted, func(i, j int) bool {
		return keys[sorted[i].Name] > keys[sorted[j].Name]
	})

	var pairs []cgos.Pairing
	for i := 0; i+1 < len(sorted); i += 2 {
		a, b := sorted[i], sorted[i+1]

		_, aa := anchors[a.Name]
		_, ab := anchors[b.Name]
		if aa && ab && rnd.Float64() >= anchorRate {
			continue
		}

		if prior(a.Name, b.Name) <= prior(b.Name, a.Name) {
			pairs = append(pairs, cgos.Pairing{White: a.Name, Black: b.Name})
		} else {
			pairs = append(pairs, cgos.Pairing{White: b.Name, Black: a.Name})
		}
	}
	return pairs
}
