// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmatch

import (
	"testing"

	"github.com/zackeberger/genomics/genome"
)

func TestScenario1ExactShortFragment(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	matches, ok := m.FindGenomesWithThisDNA("ACGT", 4, true)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one DNAMatch, got %d: %+v", len(matches), matches)
	}
	got := matches[0]
	if got.GenomeName != "A" || got.Length != 4 {
		t.Errorf("got %+v, want GenomeName=A Length=4", got)
	}
}

func TestScenario2ExactFullFragment(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	matches, ok := m.FindGenomesWithThisDNA("ACGTACGT", 4, true)
	if !ok || len(matches) != 1 {
		t.Fatalf("got %v, %v", matches, ok)
	}
	want := DNAMatch{GenomeName: "A", Length: 8, Position: 0}
	if matches[0] != want {
		t.Errorf("got %+v, want %+v", matches[0], want)
	}
}

func TestScenario3OneMismatchExtension(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	matches, ok := m.FindGenomesWithThisDNA("ACGTTCGT", 6, false)
	if !ok || len(matches) != 1 {
		t.Fatalf("got %v, %v", matches, ok)
	}
	want := DNAMatch{GenomeName: "A", Length: 8, Position: 0}
	if matches[0] != want {
		t.Errorf("got %+v, want %+v", matches[0], want)
	}
}

func TestScenario4ExactStopsShortOfMinimum(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	_, ok := m.FindGenomesWithThisDNA("ACGTTCGT", 6, true)
	if ok {
		t.Fatal("expected no match under exactOnly below minimum length")
	}
}

func TestScenario5OneMatchPerGenome(t *testing.T) {
	m := New(3)
	m.AddGenome(genome.New("X", "AAAA"))
	m.AddGenome(genome.New("Y", "CCCCAAAA"))

	matches, ok := m.FindGenomesWithThisDNA("AAA", 3, true)
	if !ok || len(matches) != 2 {
		t.Fatalf("got %v, %v", matches, ok)
	}
	byName := map[string]DNAMatch{}
	for _, dm := range matches {
		byName[dm.GenomeName] = dm
	}
	if byName["X"].Length < 3 || byName["Y"].Length < 3 {
		t.Errorf("got %+v", byName)
	}
}

func TestScenario6Relatedness(t *testing.T) {
	m := New(3)
	m.AddGenome(genome.New("P", "AAACCCGGG"))
	m.AddGenome(genome.New("Q", "AAATTTGGG"))

	query := genome.New("query", "AAACCCGGG")
	matches, ok := m.FindRelatedGenomes(query, 3, true, 50)
	if !ok {
		t.Fatal("expected related genomes")
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	if matches[0].GenomeName != "P" || matches[0].PercentMatch != 100 {
		t.Errorf("first result: got %+v, want P @ 100", matches[0])
	}
	if matches[1].GenomeName != "Q" {
		t.Errorf("second result: got %+v, want Q", matches[1])
	}
	want := 200.0 / 3.0
	if diff := matches[1].PercentMatch - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Q percent: got %v, want ~%v", matches[1].PercentMatch, want)
	}

	// At a threshold above Q's percentage, only P clears the strict bound.
	matches, ok = m.FindRelatedGenomes(query, 3, true, 66.67)
	if !ok || len(matches) != 1 || matches[0].GenomeName != "P" {
		t.Fatalf("got %+v, %v, want only P", matches, ok)
	}
}

func TestPreconditionsFindGenomesWithThisDNA(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	if _, ok := m.FindGenomesWithThisDNA("AC", 2, true); ok {
		t.Error("minimumLength < k should fail")
	}
	if _, ok := m.FindGenomesWithThisDNA("ACG", 4, true); ok {
		t.Error("fragment shorter than minimumLength should fail")
	}
}

func TestPreconditionsFindRelatedGenomes(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGT"))

	if _, ok := m.FindRelatedGenomes(genome.New("q", "ACGTACGT"), 2, true, 0); ok {
		t.Error("fragmentMatchLength < k should fail")
	}
	if _, ok := m.FindRelatedGenomes(genome.New("q", "ACG"), 4, true, 0); ok {
		t.Error("query shorter than one piece should fail")
	}
}

func TestShortGenomeUnreachable(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("short", "AC"))
	if _, ok := m.FindGenomesWithThisDNA("ACGT", 4, true); ok {
		t.Error("genome shorter than k must be unreachable, not matched")
	}
}

func TestApproximateMatchNeverMismatchesAtZero(t *testing.T) {
	m := New(4)
	// No 4-mer in the library starts with A, so every one differs from the
	// query seed at position 0, which the trie never tolerates even with
	// exactOnly=false.
	m.AddGenome(genome.New("A", "GCGTGCGT"))

	if _, ok := m.FindGenomesWithThisDNA("ACGTACGT", 4, false); ok {
		t.Error("expected no match: seed mismatch at position 0 is never tolerated")
	}
}

func TestPerGenomeMaximalityKeepsLongest(t *testing.T) {
	m := New(4)
	m.AddGenome(genome.New("A", "ACGTACGTAAAA"))

	matches, ok := m.FindGenomesWithThisDNA("ACGTACGTAAAA", 4, true)
	if !ok || len(matches) != 1 {
		t.Fatalf("got %v, %v", matches, ok)
	}
	if matches[0].Length != 12 {
		t.Errorf("got length %d, want 12", matches[0].Length)
	}
}
