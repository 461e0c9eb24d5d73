// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqmatch implements the indexed approximate-match search engine:
// a Matcher that indexes a library of genomes by fixed-length prefix and
// answers fragment-containment and whole-genome relatedness queries against
// it.
package seqmatch

import (
	"sort"
	"sync"

	"github.com/zackeberger/genomics/genome"
	"github.com/zackeberger/genomics/trie"
)

// GenomeID is an opaque, stable index into a Matcher's genome library,
// assigned in insertion order starting at 0.
type GenomeID int

// DNAMatch describes one contiguous run in a library genome matching a
// query fragment. The first base of the run always matches. In an exact
// search the whole run matches; otherwise the run may differ from the
// fragment in one base inside the first k bases (a mismatch taken by the
// seed lookup) and in one further base past them (the extension's own
// mismatch), so up to two bases in all.
type DNAMatch struct {
	GenomeName string
	Length     int
	Position   int
}

// GenomeMatch describes a library genome's aggregate similarity to a query
// genome, as a percentage of query windows with at least one hit in that
// genome.
type GenomeMatch struct {
	GenomeName   string
	PercentMatch float64
}

type seed struct {
	id  GenomeID
	pos int
}

// Matcher is the search engine. It owns a genome library and a trie keyed
// on k-length prefixes of every offset in every indexed genome. A Matcher
// is safe for concurrent reads (FindGenomesWithThisDNA, FindRelatedGenomes,
// MinimumSearchLength) as long as no AddGenome call is concurrently in
// flight; AddGenome requires exclusive access.
type Matcher struct {
	mu      sync.RWMutex
	k       int
	genomes []genome.Genome
	index   *trie.Trie[seed]
}

// New returns a Matcher with the given minimum search length k, the fixed
// seed width used to key the trie. It panics if k < 1.
func New(k int) *Matcher {
	if k < 1 {
		panic("seqmatch: minimum search length must be at least 1")
	}
	return &Matcher{k: k, index: trie.New[seed]()}
}

// MinimumSearchLength returns k, the fixed seed width this Matcher was
// constructed with.
func (m *Matcher) MinimumSearchLength() int {
	return m.k
}

// AddGenome registers g in the library, assigning it the next sequential
// GenomeID, and indexes every k-length substring of g under its starting
// offset. If g is shorter than k, no seeds are inserted; g remains in the
// library but is unreachable by queries.
func (m *Matcher) AddGenome(g genome.Genome) GenomeID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := GenomeID(len(m.genomes))
	m.genomes = append(m.genomes, g)

	n := g.Length()
	for i := 0; i <= n-m.k; i++ {
		key, ok := g.Extract(i, m.k)
		if !ok {
			panic("seqmatch: unreachable extraction failure during indexing")
		}
		m.index.Insert([]byte(key), seed{id: id, pos: i})
	}
	return id
}

// FindGenomesWithThisDNA reports which library genomes contain fragment (or
// an approximate match to it, if exactOnly is false), at what position, and
// for how long. At most one DNAMatch is returned per library genome: the
// longest admissible match found from any seed. It returns false if
// len(fragment) < minimumLength, if minimumLength < k, or if no genome
// matches.
func (m *Matcher) FindGenomesWithThisDNA(fragment string, minimumLength int, exactOnly bool) ([]DNAMatch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(fragment) < minimumLength || minimumLength < m.k {
		return nil, false
	}

	seedKey := fragment[:m.k]
	seeds := m.index.Find([]byte(seedKey), exactOnly)

	type candidate struct {
		length int
		pos    int
	}
	best := make(map[GenomeID]candidate)

	for _, s := range seeds {
		g := m.genomes[s.id]
		snipped := exactOnly
		actualLength := m.k
		for actualLength < len(fragment) {
			lib, ok := g.Extract(s.pos, actualLength+1)
			if !ok {
				break
			}
			if lib[actualLength] == fragment[actualLength] {
				actualLength++
				continue
			}
			if snipped {
				break
			}
			snipped = true
			actualLength++
		}

		if actualLength < minimumLength {
			continue
		}

		cur, ok := best[s.id]
		if !ok || actualLength > cur.length || (actualLength == cur.length && s.pos < cur.pos) {
			best[s.id] = candidate{length: actualLength, pos: s.pos}
		}
	}

	if len(best) == 0 {
		return nil, false
	}
	out := make([]DNAMatch, 0, len(best))
	for id, c := range best {
		out = append(out, DNAMatch{GenomeName: m.genomes[id].Name(), Length: c.length, Position: c.pos})
	}
	return out, true
}

// FindRelatedGenomes reports which library genomes are related to query, by
// chopping query into non-overlapping fragmentMatchLength-sized pieces and
// counting, per library genome name, how many pieces produce a hit. A
// genome is reported if its hit percentage strictly exceeds thresholdPercent.
// Results are sorted by percentMatch descending, then genomeName ascending.
// It returns false if fragmentMatchLength < k, if query has no complete
// piece, or if no genome clears the threshold.
func (m *Matcher) FindRelatedGenomes(query genome.Genome, fragmentMatchLength int, exactOnly bool, thresholdPercent float64) ([]GenomeMatch, bool) {
	if fragmentMatchLength < m.MinimumSearchLength() {
		return nil, false
	}

	pieces := query.Length() / fragmentMatchLength
	if pieces == 0 {
		return nil, false
	}

	counts := make(map[string]int)
	for i := 0; i < pieces; i++ {
		piece, ok := query.Extract(i*fragmentMatchLength, fragmentMatchLength)
		if !ok {
			panic("seqmatch: unreachable extraction failure while chopping query")
		}
		matches, ok := m.FindGenomesWithThisDNA(piece, fragmentMatchLength, exactOnly)
		if !ok {
			continue
		}
		for _, dm := range matches {
			counts[dm.GenomeName]++
		}
	}

	m.mu.RLock()
	library := append([]genome.Genome(nil), m.genomes...)
	m.mu.RUnlock()

	seen := make(map[string]bool, len(library))
	var out []GenomeMatch
	for _, g := range library {
		name := g.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		percent := 100 * float64(counts[name]) / float64(pieces)
		if percent > thresholdPercent {
			out = append(out, GenomeMatch{GenomeName: name, PercentMatch: percent})
		}
	}
	if len(out) == 0 {
		return nil, false
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PercentMatch != out[j].PercentMatch {
			return out[i].PercentMatch > out[j].PercentMatch
		}
		return out[i].GenomeName < out[j].GenomeName
	})
	return out, true
}
