// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gseq is a genomic sequence search tool. It finds occurrences of a DNA
// fragment across a library of genomes, or reports how related a whole
// genome is to every genome in a library. find gives its result either in
// JSON or GFF feature format; related gives JSON or tab-separated text.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"sort"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/hts/fai"

	"github.com/zackeberger/genomics/fasta"
	"github.com/zackeberger/genomics/genome"
	"github.com/zackeberger/genomics/internal/store"
	"github.com/zackeberger/genomics/seqmatch"
)

func main() {
	if len(os.Args) < 2 {
		topUsage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "find":
		err = runFind(os.Args[2:])
	case "related":
		err = runRelated(os.Args[2:])
	default:
		topUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func topUsage() {
	fmt.Fprintf(os.Stderr, `Usage of %[1]s:
  $ %[1]s find -lib <library.fa> [-lib <library.fa> ...] -fragment <dna> -min <n> [options]
  $ %[1]s related -lib <library.fa> [-lib <library.fa> ...] -query <query.fa> -piece <n> -threshold <t> [options]
`, os.Args[0])
}

// sliceValue is a multi-value flag value.
type sliceValue []string

func (s *sliceValue) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (s *sliceValue) String() string {
	return fmt.Sprintf("%q", []string(*s))
}

func loadLibrary(libs []string, k int) (*seqmatch.Matcher, []string, error) {
	m := seqmatch.New(k)
	var names []string
	for _, path := range libs {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		genomes, err := fasta.Load(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, g := range genomes {
			m.AddGenome(g)
			names = append(names, g.Name())
		}
	}
	return m, names, nil
}

func runFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	var libs sliceValue
	fs.Var(&libs, "lib", "specify a search library FASTA file (required - may be present more than once)")
	fragment := fs.String("fragment", "", "specify the literal DNA fragment to search for")
	queryFile := fs.String("query", "", "specify a single-sequence FASTA file holding the fragment to search for")
	min := fs.Int("min", 0, "specify the minimum reported match length (required)")
	k := fs.Int("k", 12, "specify the seed length used to index the library")
	exact := fs.Bool("exact", false, "require exact matches only")
	jsonOut := fs.Bool("json", false, "specify JSON format for match output")
	audit := fs.String("audit", "", "specify a directory to record an audit trail of matches.db")

	fs.Parse(args)
	if len(libs) == 0 || *min <= 0 || (*fragment == "" && *queryFile == "") {
		fs.Usage()
		os.Exit(2)
	}

	frag := *fragment
	if frag == "" {
		f, err := os.Open(*queryFile)
		if err != nil {
			return err
		}
		genomes, err := fasta.Load(f)
		f.Close()
		if err != nil {
			return err
		}
		if len(genomes) != 1 {
			return fmt.Errorf("%s: expected exactly one sequence, got %d", *queryFile, len(genomes))
		}
		seqStr, ok := genomes[0].Extract(0, genomes[0].Length())
		if !ok {
			return fmt.Errorf("%s: empty sequence", *queryFile)
		}
		frag = seqStr
	}

	log.Println("indexing library")
	m, _, err := loadLibrary(libs, *k)
	if err != nil {
		return err
	}

	log.Println("searching")
	matches, ok := m.FindGenomesWithThisDNA(frag, *min, *exact)
	if !ok {
		matches = nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].GenomeName != matches[j].GenomeName {
			return matches[i].GenomeName < matches[j].GenomeName
		}
		return matches[i].Position < matches[j].Position
	})

	var w *store.Writer
	if *audit != "" {
		w, err = store.Create(*audit)
		if err != nil {
			return err
		}
		defer w.Close()
		for _, r := range matches {
			if err := w.Record(r); err != nil {
				return err
			}
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, r := range matches {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to write match: %w", err)
			}
		}
		return nil
	}

	enc := gff.NewWriter(os.Stdout, 60, true)
	for _, r := range matches {
		_, err := enc.Write(&gff.Feature{
			SeqName:    r.GenomeName,
			Source:     "gseq",
			Feature:    "match",
			FeatStart:  r.Position,
			FeatEnd:    r.Position + r.Length,
			FeatStrand: seq.Plus,
			FeatFrame:  gff.NoFrame,
			FeatAttributes: gff.Attributes{{
				Tag:   "Fragment",
				Value: frag,
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to write feature: %w", err)
		}
	}
	return nil
}

// loadQueryRecord returns the named record from a query FASTA file. If the
// file holds a single record, record may be empty and that record is used
// directly. Otherwise the file is faidx-indexed and the named record is
// extracted by random access, so that only that record's bases are read
// into memory regardless of how many other records the file holds.
func loadQueryRecord(path, record string) (genome.Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return genome.Genome{}, err
	}
	defer f.Close()

	if record == "" {
		genomes, err := fasta.Load(f)
		if err != nil {
			return genome.Genome{}, err
		}
		if len(genomes) != 1 {
			return genome.Genome{}, fmt.Errorf("%s: expected exactly one sequence, got %d (use -record to pick one)", path, len(genomes))
		}
		return genomes[0], nil
	}

	log.Println("indexing query")
	idx, err := fai.NewIndex(f)
	if err != nil {
		return genome.Genome{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return genome.Genome{}, err
	}

	var length int
	found := false
	for _, rec := range idx {
		if rec.Name == record {
			length = rec.Length
			found = true
			break
		}
	}
	if !found {
		return genome.Genome{}, fmt.Errorf("%s: no record named %q", path, record)
	}

	qfa := fai.NewFile(f, idx)
	r, err := qfa.SeqRange(record, 0, length)
	if err != nil {
		return genome.Genome{}, err
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return genome.Genome{}, err
	}
	return genome.New(record, string(b)), nil
}

func runRelated(args []string) error {
	fs := flag.NewFlagSet("related", flag.ExitOnError)
	var libs sliceValue
	fs.Var(&libs, "lib", "specify a search library FASTA file (required - may be present more than once)")
	queryFile := fs.String("query", "", "specify the query genome FASTA file (required)")
	record := fs.String("record", "", "specify which record of a multi-record query file to use (required if query holds more than one record)")
	piece := fs.Int("piece", 20, "specify the fragment length used to chop the query genome")
	exact := fs.Bool("exact", false, "require exact fragment matches")
	threshold := fs.Float64("threshold", 50, "specify the minimum percent match to report")
	jsonOut := fs.Bool("json", false, "specify JSON format for output")
	audit := fs.String("audit", "", "specify a directory to record an audit trail of related.db")

	fs.Parse(args)
	if len(libs) == 0 || *queryFile == "" {
		fs.Usage()
		os.Exit(2)
	}

	query, err := loadQueryRecord(*queryFile, *record)
	if err != nil {
		return err
	}

	log.Println("indexing library")
	m, _, err := loadLibrary(libs, *piece)
	if err != nil {
		return err
	}

	log.Println("scoring relatedness")
	related, ok := m.FindRelatedGenomes(query, *piece, *exact, *threshold)
	if !ok {
		related = nil
	}

	var w *store.Writer
	if *audit != "" {
		w, err = store.Create(*audit)
		if err != nil {
			return err
		}
		defer w.Close()
		for _, r := range related {
			if err := w.RecordRelated(r); err != nil {
				return err
			}
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, r := range related {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
		}
		return nil
	}

	for _, r := range related {
		fmt.Printf("%s\t%.2f\n", r.GenomeName, r.PercentMatch)
	}
	return nil
}
