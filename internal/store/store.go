// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists an append-only audit trail of query results — not
// the trie or genome library, which this system never persists. Each
// DNAMatch or GenomeMatch a command-line run produces can be appended to an
// ordered on-disk key/value database and later dumped for inspection, the
// same role the teacher repo's forward.db/regions.db/reverse.db and
// audit-ins-db command play for BLAST hit records.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"path/filepath"

	"modernc.org/kv"

	"github.com/zackeberger/genomics/seqmatch"
)

var order = binary.BigEndian

// MarshalDNAMatchKey encodes m as an ordered key: genome name, position,
// length.
func MarshalDNAMatchKey(m seqmatch.DNAMatch) []byte {
	var buf bytes.Buffer
	var b [8]byte
	order.PutUint64(b[:], uint64(len(m.GenomeName)))
	buf.Write(b[:])
	buf.WriteString(m.GenomeName)
	order.PutUint64(b[:], uint64(m.Position))
	buf.Write(b[:])
	order.PutUint64(b[:], uint64(m.Length))
	buf.Write(b[:])
	return buf.Bytes()
}

// UnmarshalDNAMatchKey decodes a key produced by MarshalDNAMatchKey.
func UnmarshalDNAMatchKey(data []byte) seqmatch.DNAMatch {
	const n64 = 8
	n := order.Uint64(data[:n64])
	data = data[n64:]
	name := string(data[:n])
	data = data[n:]
	pos := order.Uint64(data[:n64])
	data = data[n64:]
	length := order.Uint64(data[:n64])
	return seqmatch.DNAMatch{GenomeName: name, Position: int(pos), Length: int(length)}
}

// ByNamePosition is a kv compare function ordering DNAMatch keys by genome
// name, then position, then length.
func ByNamePosition(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	rx := UnmarshalDNAMatchKey(x)
	ry := UnmarshalDNAMatchKey(y)
	switch {
	case rx.GenomeName < ry.GenomeName:
		return -1
	case rx.GenomeName > ry.GenomeName:
		return 1
	}
	switch {
	case rx.Position < ry.Position:
		return -1
	case rx.Position > ry.Position:
		return 1
	}
	switch {
	case rx.Length < ry.Length:
		return -1
	case rx.Length > ry.Length:
		return 1
	}
	panic("unreachable")
}

// MarshalGenomeMatchKey encodes m as an ordered key: genome name, then
// percent match.
func MarshalGenomeMatchKey(m seqmatch.GenomeMatch) []byte {
	var buf bytes.Buffer
	var b [8]byte
	order.PutUint64(b[:], uint64(len(m.GenomeName)))
	buf.Write(b[:])
	buf.WriteString(m.GenomeName)
	order.PutUint64(b[:], math.Float64bits(m.PercentMatch))
	buf.Write(b[:])
	return buf.Bytes()
}

// UnmarshalGenomeMatchKey decodes a key produced by MarshalGenomeMatchKey.
func UnmarshalGenomeMatchKey(data []byte) seqmatch.GenomeMatch {
	const n64 = 8
	n := order.Uint64(data[:n64])
	data = data[n64:]
	name := string(data[:n])
	data = data[n:]
	pct := math.Float64frombits(order.Uint64(data[:n64]))
	return seqmatch.GenomeMatch{GenomeName: name, PercentMatch: pct}
}

// ByNamePercent is a kv compare function ordering GenomeMatch keys by genome
// name, then percent match.
func ByNamePercent(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	rx := UnmarshalGenomeMatchKey(x)
	ry := UnmarshalGenomeMatchKey(y)
	switch {
	case rx.GenomeName < ry.GenomeName:
		return -1
	case rx.GenomeName > ry.GenomeName:
		return 1
	}
	switch {
	case rx.PercentMatch < ry.PercentMatch:
		return -1
	case rx.PercentMatch > ry.PercentMatch:
		return 1
	}
	panic("unreachable")
}

// Writer records query results to a pair of kv databases, matches.db and
// related.db, rooted at dir.
type Writer struct {
	matches *kv.DB
	related *kv.DB
}

// Create makes a new, empty pair of databases in dir.
func Create(dir string) (*Writer, error) {
	matches, err := kv.Create(filepath.Join(dir, "matches.db"), &kv.Options{Compare: ByNamePosition})
	if err != nil {
		return nil, err
	}
	related, err := kv.Create(filepath.Join(dir, "related.db"), &kv.Options{Compare: ByNamePercent})
	if err != nil {
		matches.Close()
		return nil, err
	}
	return &Writer{matches: matches, related: related}, nil
}

// Close closes both underlying databases.
func (w *Writer) Close() error {
	err := w.matches.Close()
	if rerr := w.related.Close(); err == nil {
		err = rerr
	}
	return err
}

// Record appends a DNAMatch to matches.db.
func (w *Writer) Record(m seqmatch.DNAMatch) error {
	v, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return w.matches.Set(MarshalDNAMatchKey(m), v)
}

// RecordRelated appends a GenomeMatch to related.db.
func (w *Writer) RecordRelated(m seqmatch.GenomeMatch) error {
	v, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return w.related.Set(MarshalGenomeMatchKey(m), v)
}

// DumpMatches reads every DNAMatch recorded in the matches.db at path, in
// key order.
func DumpMatches(path string) ([]seqmatch.DNAMatch, error) {
	db, err := kv.Open(path, &kv.Options{Compare: ByNamePosition})
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return dumpInto(db, func(v []byte) (seqmatch.DNAMatch, error) {
		var m seqmatch.DNAMatch
		err := json.Unmarshal(v, &m)
		return m, err
	})
}

// DumpRelated reads every GenomeMatch recorded in the related.db at path, in
// key order.
func DumpRelated(path string) ([]seqmatch.GenomeMatch, error) {
	db, err := kv.Open(path, &kv.Options{Compare: ByNamePercent})
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return dumpInto(db, func(v []byte) (seqmatch.GenomeMatch, error) {
		var m seqmatch.GenomeMatch
		err := json.Unmarshal(v, &m)
		return m, err
	})
}

func dumpInto[T any](db *kv.DB, decode func([]byte) (T, error)) ([]T, error) {
	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	var out []T
	for {
		_, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		m, err := decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
