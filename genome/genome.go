// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genome holds the immutable named DNA sequence type shared by the
// loader and the search engine.
package genome

import "strings"

// Genome is an immutable, value-semantic named DNA sequence. Two Genomes
// compare equal with == iff their name and sequence are equal.
type Genome struct {
	name     string
	sequence string
}

// New constructs a Genome, normalising sequence to uppercase. No alphabet
// validation is performed; callers that read from external input should
// validate first (see package fasta).
func New(name, sequence string) Genome {
	return Genome{name: name, sequence: strings.ToUpper(sequence)}
}

// Name returns the genome's name.
func (g Genome) Name() string { return g.name }

// Length returns the number of bases in the genome.
func (g Genome) Length() int { return len(g.sequence) }

// Extract returns the substring sequence[position:position+length) and
// true, or "", false if position < 0 or position+length exceeds the
// genome's length.
func (g Genome) Extract(position, length int) (string, bool) {
	if position < 0 || length < 0 || position+length > len(g.sequence) {
		return "", false
	}
	return g.sequence[position : position+length], true
}

// IsValidBase reports whether b is one of A, C, G, T, N (upper or lower
// case), the alphabet this system supports. Unlike biogo's DNAredundant
// alphabet (which also accepts the full IUPAC ambiguity set), this system
// stops at N.
func IsValidBase(b byte) bool {
	switch upper(b) {
	case 'A', 'C', 'G', 'T', 'N':
		return true
	}
	return false
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
