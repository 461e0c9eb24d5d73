// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batchmatch merges the results of several overlapping
// FindGenomesWithThisDNA calls run against the same library, discarding any
// DNAMatch that is wholly contained within a longer one for the same
// genome. This supplements the core engine, which only guarantees a single
// best match per genome within one call; a caller scanning a query in
// overlapping windows needs this extra pass to avoid reporting the same
// underlying hit several times at different lengths.
package batchmatch

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/zackeberger/genomics/seqmatch"
)

// MergeOverlaps groups matches by genome name and, within each group,
// discards any match completely contained within a strictly longer match
// from the same group. The result is sorted by genome name, then position,
// for determinism.
func MergeOverlaps(matches []seqmatch.DNAMatch) []seqmatch.DNAMatch {
	byName := make(map[string][]seqmatch.DNAMatch)
	for _, m := range matches {
		byName[m.GenomeName] = append(byName[m.GenomeName], m)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var out []seqmatch.DNAMatch
	for _, n := range names {
		kept := mergeOne(byName[n])
		sort.Slice(kept, func(i, j int) bool { return kept[i].Position < kept[j].Position })
		out = append(out, kept...)
	}
	return out
}

// ivl is a DNAMatch addressable in a github.com/biogo/store/interval
// IntTree. Overlap is defined as containment, not ordinary range overlap,
// so that Get returns only the matches that fully cover a given candidate.
type ivl struct {
	uid uintptr
	seqmatch.DNAMatch
}

// Overlap returns whether b completely contains i.
func (i ivl) Overlap(b interval.IntRange) bool {
	return b.Start <= i.Position && i.Position+i.Length <= b.End
}
func (i ivl) ID() uintptr { return i.uid }
func (i ivl) Range() interval.IntRange {
	return interval.IntRange{Start: i.Position, End: i.Position + i.Length}
}

func mergeOne(hits []seqmatch.DNAMatch) []seqmatch.DNAMatch {
	var tree interval.IntTree
	for i, h := range hits {
		err := tree.Insert(ivl{uid: uintptr(i), DNAMatch: h}, true)
		if err != nil {
			panic(err)
		}
	}
	tree.AdjustRanges()

	var kept []seqmatch.DNAMatch
outer:
	for _, h := range hits {
		for _, o := range tree.Get(ivl{DNAMatch: h}) {
			if o.(ivl).Length > h.Length {
				continue outer
			}
		}
		kept = append(kept, h)
	}
	return kept
}
