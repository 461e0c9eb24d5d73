// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package relategraph builds a weighted relatedness graph from repeated
// FindRelatedGenomes results and exports it as DOT, the same
// gonum.org/v1/gonum/graph + encoding/dot combination the teacher repo uses
// in cmd/cmpint to visualise discordances between two annotation sets.
package relategraph

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/zackeberger/genomics/seqmatch"
)

// Graph is an undirected graph of genome names, with a weighted edge
// between each pair of distinct genomes that matched, weighted by percent
// match.
type Graph struct {
	*simple.WeightedUndirectedGraph
	idFor map[string]int64
}

// New returns an empty relatedness graph.
func New() *Graph {
	return &Graph{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		idFor:                   make(map[string]int64),
	}
}

func (g *Graph) nodeFor(name string) graph.Node {
	if id, ok := g.idFor[name]; ok {
		return g.Node(id)
	}
	id := g.WeightedUndirectedGraph.NewNode().ID()
	g.idFor[name] = id
	n := node{id: id, name: name}
	g.AddNode(n)
	return n
}

// Build adds one edge per GenomeMatch in related (keyed by the query genome
// name that produced it) to a new Graph. A query's match against itself
// adds no edge. The graph is undirected, so when both genomes of a pair
// matched each other the edge holds one of the two weights, whichever was
// set last in map iteration order.
func Build(related map[string][]seqmatch.GenomeMatch) *Graph {
	g := New()
	for query, matches := range related {
		for _, m := range matches {
			if m.GenomeName == query {
				continue
			}
			g.SetWeightedEdge(edge{
				f: g.nodeFor(query),
				t: g.nodeFor(m.GenomeName),
				w: m.PercentMatch,
			})
		}
	}
	return g
}

// WriteDOT marshals g as a DOT graph named "relatedness".
func WriteDOT(w io.Writer, g *Graph) error {
	b, err := dot.Marshal(g, "relatedness", "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

type node struct {
	id   int64
	name string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }

type edge struct {
	f, t graph.Node
	w    float64
}

func (e edge) From() graph.Node         { return e.f }
func (e edge) To() graph.Node           { return e.t }
func (e edge) ReversedEdge() graph.Edge { return edge{f: e.t, t: e.f, w: e.w} }
func (e edge) Weight() float64          { return e.w }
func (e edge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "weight", Value: fmt.Sprint(e.w)}}
}
