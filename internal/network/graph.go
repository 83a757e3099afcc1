// Package network builds undirected co-authorship graphs and lays them out.
package network

import (
	"gonum.org/v1/gonum/graph/simple"
)

// Pair is one observed collaboration between two scholars.
// (A, B) and (B, A) describe the same collaboration.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Reverse returns the pair with its endpoints swapped.
func (p Pair) Reverse() Pair {
	return Pair{A: p.B, B: p.A}
}

// IsSelf reports whether both endpoints are the same scholar.
func (p Pair) IsSelf() bool {
	return p.A == p.B
}

// Canonical returns the pair with its endpoints in lexical order.
func (p Pair) Canonical() Pair {
	if p.B < p.A {
		return p.Reverse()
	}
	return p
}

// node is a gonum node carrying a scholar name.
type node struct {
	id   int64
	name string
}

func (n node) ID() int64 { return n.id }

// Graph is an undirected simple graph of scholar names.
// Nodes and edges iterate in first-seen order.
type Graph struct {
	g     *simple.UndirectedGraph
	ids   map[string]int64
	names []string
	edges []Pair
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		g:   simple.NewUndirectedGraph(),
		ids: make(map[string]int64),
	}
}

// Build constructs a graph from co-authorship pairs. Duplicate pairs in
// either orientation collapse to one edge. A pair naming the same scholar
// twice adds the node without an edge.
func Build(pairs []Pair) *Graph {
	g := NewGraph()
	for _, p := range pairs {
		g.AddPair(p)
	}
	return g
}

// AddNode adds a scholar if not already present.
func (g *Graph) AddNode(name string) {
	if _, ok := g.ids[name]; ok {
		return
	}
	id := int64(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.g.AddNode(node{id: id, name: name})
}

// AddPair adds both endpoints and, unless it is a self pair or already
// present, the edge between them.
func (g *Graph) AddPair(p Pair) {
	g.AddNode(p.A)
	g.AddNode(p.B)
	if p.IsSelf() {
		return
	}
	a, b := g.ids[p.A], g.ids[p.B]
	if g.g.HasEdgeBetween(a, b) {
		return
	}
	g.g.SetEdge(g.g.NewEdge(g.g.Node(a), g.g.Node(b)))
	g.edges = append(g.edges, p)
}

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.names...)
}

// Edges returns edges in insertion order, oriented as first seen.
func (g *Graph) Edges() []Pair {
	return append([]Pair(nil), g.edges...)
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.names) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Contains reports whether name is a node.
func (g *Graph) Contains(name string) bool {
	_, ok := g.ids[name]
	return ok
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b string) bool {
	ia, ok := g.ids[a]
	if !ok {
		return false
	}
	ib, ok := g.ids[b]
	if !ok {
		return false
	}
	return g.g.HasEdgeBetween(ia, ib)
}

// Degree returns the number of edges incident to name, or 0 if absent.
func (g *Graph) Degree(name string) int {
	id, ok := g.ids[name]
	if !ok {
		return 0
	}
	return g.g.From(id).Len()
}

// MaxDegree returns the largest degree in the graph.
func (g *Graph) MaxDegree() int {
	most := 0
	for _, name := range g.names {
		if d := g.Degree(name); d > most {
			most = d
		}
	}
	return most
}

// Neighbors returns the names adjacent to name in insertion order.
func (g *Graph) Neighbors(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	var out []string
	for _, other := range g.names {
		if other != name && g.g.HasEdgeBetween(id, g.ids[other]) {
			out = append(out, other)
		}
	}
	return out
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.names) == 0
}
