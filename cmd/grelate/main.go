// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The grelate command computes the relatedness of every genome in a
// library against every other genome in that same library, and
// optionally emits the result as a weighted graph in DOT format for
// visualisation, the way cmpint emits a discordance graph between two
// annotation sets.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/zackeberger/genomics/fasta"
	"github.com/zackeberger/genomics/internal/store"
	"github.com/zackeberger/genomics/relategraph"
	"github.com/zackeberger/genomics/seqmatch"
)

func main() {
	lib := flag.String("lib", "", "specify the library FASTA file (required)")
	piece := flag.Int("piece", 20, "specify the fragment length used to chop each query genome")
	exact := flag.Bool("exact", false, "require exact fragment matches")
	threshold := flag.Float64("threshold", 50, "specify the minimum percent match to report")
	out := flag.String("dot", "", "specify path for a DOT file describing the relatedness graph")
	audit := flag.String("audit", "", "specify a directory to record an audit trail of related.db")

	flag.Usage = func() {
		log.Printf("Usage: grelate -lib <library.fa> [-piece n] [-exact] [-threshold t] [-dot path]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *lib == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*lib)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	log.Println("loading library")
	genomes, err := fasta.Load(f)
	if err != nil {
		log.Fatal(err)
	}

	m := seqmatch.New(*piece)
	for _, g := range genomes {
		m.AddGenome(g)
	}

	var w *store.Writer
	if *audit != "" {
		w, err = store.Create(*audit)
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
	}

	related := make(map[string][]seqmatch.GenomeMatch, len(genomes))
	for _, g := range genomes {
		log.Printf("relating %s", g.Name())
		matches, ok := m.FindRelatedGenomes(g, *piece, *exact, *threshold)
		if !ok {
			continue
		}
		related[g.Name()] = matches
		if w != nil {
			for _, r := range matches {
				if err := w.RecordRelated(r); err != nil {
					log.Fatal(err)
				}
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	for query, matches := range related {
		for _, r := range matches {
			if err := enc.Encode(struct {
				Query string `json:"query"`
				seqmatch.GenomeMatch
			}{query, r}); err != nil {
				log.Fatal(err)
			}
		}
	}

	if *out != "" {
		g := relategraph.Build(related)
		df, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		defer df.Close()
		if err := relategraph.WriteDOT(df, g); err != nil {
			log.Fatal(err)
		}
	}
}
