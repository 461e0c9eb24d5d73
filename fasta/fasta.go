// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fasta loads the FASTA-like genome library format this system
// consumes: a stream of records, each a name line beginning with '>'
// followed by one or more base lines. It is the out-of-scope loader the
// core engine's addGenome assumes upstream of it.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/zackeberger/genomics/genome"
)

// Load reads a FASTA-like stream and returns the genomes it describes, in
// file order. The entire stream is rejected, with no partial library
// returned, if: the first non-empty byte is not '>'; a name line is
// immediately followed by no base line or by a blank line; a name line has
// an empty name; a blank line appears between base lines of the same
// record; or any base line contains a character outside {A,C,G,T,N}
// (case-insensitive).
//
// Record layout is validated line-by-line, as the rules above are stricter
// than what a generic FASTA reader enforces; actual decoding of each
// record's sequence is delegated to biogo/biogo's io/seqio/fasta.Reader,
// the same reader the teacher repo scans its FASTA input with in
// cmd/ins/fragment.go and cmd/ins/blast.go.
func Load(r io.Reader) ([]genome.Genome, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fasta: %w", err)
	}
	if err := checkLayout(data); err != nil {
		return nil, err
	}

	sc := seqio.NewScanner(fasta.NewReader(bytes.NewReader(data), linear.NewSeq("", nil, alphabet.DNAredundant)))
	var genomes []genome.Genome
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		name := s.ID
		if s.Desc != "" {
			name = name + " " + s.Desc
		}

		bases := make([]byte, s.Len())
		for i, l := range s.Seq {
			b := byte(l)
			if !genome.IsValidBase(b) {
				return nil, fmt.Errorf("fasta: invalid base %q in record %q", b, name)
			}
			bases[i] = b
		}
		genomes = append(genomes, genome.New(name, string(bases)))
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("fasta: %w", err)
	}

	return genomes, nil
}

// layoutState tracks where the scanner is relative to the record currently
// being read.
type layoutState int

const (
	lNone      layoutState = iota // before any record, or between records
	lAfterName                    // just read a name line; no base line seen yet
	lInBases                      // at least one base line seen
	lAfterBlank                   // a blank line followed the last base line, pending resolution
)

// checkLayout validates the structural line rules Load documents: rules a
// generic FASTA reader has no hook to enforce, since it either tolerates or
// silently ignores blank lines within a record.
func checkLayout(data []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	var (
		name    string
		st      = lNone
		started bool
		lineNo  int
	)

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		isName := strings.HasPrefix(line, ">")
		isBlank := strings.TrimSpace(line) == ""

		switch {
		case isName:
			if st == lAfterName {
				return fmt.Errorf("fasta: record %q at line %d has no base line", name, lineNo-1)
			}
			name = strings.TrimSpace(line[1:])
			if name == "" {
				return fmt.Errorf("fasta: empty record name at line %d", lineNo)
			}
			st = lAfterName
			started = true

		case isBlank:
			switch st {
			case lAfterName:
				return fmt.Errorf("fasta: record %q at line %d has no base line", name, lineNo-1)
			case lInBases:
				st = lAfterBlank
			}
			// lNone and lAfterBlank: blank lines outside a record, or
			// repeated blank lines, are tolerated.

		default:
			if !started {
				return fmt.Errorf("fasta: input must begin with a record name ('>'), at line %d", lineNo)
			}
			if st == lAfterBlank {
				return fmt.Errorf("fasta: blank line inside record %q before line %d", name, lineNo)
			}
			st = lInBases
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta: %w", err)
	}

	if st == lAfterName {
		return fmt.Errorf("fasta: record %q at line %d has no base line", name, lineNo)
	}
	if !started {
		return fmt.Errorf("fasta: empty input")
	}
	return nil
}
