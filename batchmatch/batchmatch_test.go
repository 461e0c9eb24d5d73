// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package batchmatch

import (
	"reflect"
	"testing"

	"github.com/zackeberger/genomics/seqmatch"
)

func TestMergeOverlapsDropsContained(t *testing.T) {
	in := []seqmatch.DNAMatch{
		{GenomeName: "A", Position: 0, Length: 10},
		{GenomeName: "A", Position: 2, Length: 4}, // contained in [0,10)
		{GenomeName: "A", Position: 20, Length: 5},
		{GenomeName: "B", Position: 0, Length: 3},
	}
	got := MergeOverlaps(in)
	want := []seqmatch.DNAMatch{
		{GenomeName: "A", Position: 0, Length: 10},
		{GenomeName: "A", Position: 20, Length: 5},
		{GenomeName: "B", Position: 0, Length: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMergeOverlapsKeepsEqualLengthTies(t *testing.T) {
	in := []seqmatch.DNAMatch{
		{GenomeName: "A", Position: 0, Length: 4},
		{GenomeName: "A", Position: 10, Length: 4},
	}
	got := MergeOverlaps(in)
	if len(got) != 2 {
		t.Errorf("got %d matches, want 2 (no containment between equal, disjoint matches): %+v", len(got), got)
	}
}

func TestMergeOverlapsEmpty(t *testing.T) {
	if got := MergeOverlaps(nil); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
