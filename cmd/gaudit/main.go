// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The gaudit command allows the audit trail written by gseq to be
// inspected. A gseq run writes matches.db and related.db inside the
// directory given to its -audit flag; each file is named as described
// here for gaudit to understand its contents. Output is a JSON stream on
// stdout.
//
// matches.db
//
// matches.db contains DNAMatch results in JSON, one per line, ordered by
// genome name then position then length.
//
// related.db
//
// related.db contains GenomeMatch results in JSON, one per line, ordered
// by genome name then percent match.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/zackeberger/genomics/internal/store"
)

func main() {
	path := flag.String("db", "", "specify db file to audit (base must be matches.db or related.db)")
	flag.Parse()

	base := filepath.Base(*path)
	enc := json.NewEncoder(os.Stdout)
	switch base {
	case "matches.db":
		matches, err := store.DumpMatches(*path)
		if err != nil {
			log.Fatal(err)
		}
		for _, m := range matches {
			if err := enc.Encode(m); err != nil {
				log.Fatal(err)
			}
		}
	case "related.db":
		related, err := store.DumpRelated(*path)
		if err != nil {
			log.Fatal(err)
		}
		for _, g := range related {
			if err := enc.Encode(g); err != nil {
				log.Fatal(err)
			}
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}
