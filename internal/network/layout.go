package network

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// Point is a 2-D node position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps every node of a graph to its position.
type Layout map[string]Point

// SpringOptions configures Spring.
// The zero value runs DefaultIterations unseeded updates.
type SpringOptions struct {
	Iterations int
	Seed       *uint64 // nil leaves the initial placement random
}

// Force parameters are the gonum EadesR2 recommended values.
const (
	DefaultIterations = 30
	eadesRepulsion    = 1
	eadesRate         = 0.05
	eadesTheta        = 0.2
)

// Seed returns a pointer to s, for SpringOptions.Seed.
func Seed(s uint64) *uint64 {
	return &s
}

// Spring computes a force-directed layout of g. Every node, isolated or
// not, gets a position, and positions are rescaled into [-1, 1] around
// the origin. With a nil seed repeated calls scatter nodes differently.
func Spring(g *Graph, opts SpringOptions) Layout {
	pos := make(Layout, g.NumNodes())
	switch g.NumNodes() {
	case 0:
		return pos
	case 1:
		pos[g.names[0]] = Point{}
		return pos
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	eades := layout.EadesR2{
		Updates:   iterations,
		Repulsion: eadesRepulsion,
		Rate:      eadesRate,
		Theta:     eadesTheta,
	}
	if opts.Seed != nil {
		eades.Src = rand.NewPCG(*opts.Seed, *opts.Seed^0x9e3779b97f4a7c15)
	}

	optimizer := layout.NewOptimizerR2(ordered{g.g}, eades.Update)
	for optimizer.Update() {
	}

	for _, name := range g.names {
		c := optimizer.Coord2(g.ids[name])
		pos[name] = Point{X: c.X, Y: c.Y}
	}
	return rescale(pos)
}

// rescale centers positions on the origin and scales the largest
// coordinate magnitude to 1.
func rescale(pos Layout) Layout {
	if len(pos) == 0 {
		return pos
	}

	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	var extent float64
	for _, p := range pos {
		extent = math.Max(extent, math.Max(math.Abs(p.X-cx), math.Abs(p.Y-cy)))
	}
	if extent == 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		for name := range pos {
			pos[name] = Point{}
		}
		return pos
	}

	for name, p := range pos {
		pos[name] = Point{X: (p.X - cx) / extent, Y: (p.Y - cy) / extent}
	}
	return pos
}

// ordered presents a simple graph with nodes and neighbors in ID order
// so a seeded layout does not depend on map iteration.
type ordered struct {
	*simple.UndirectedGraph
}

func (o ordered) Nodes() graph.Nodes {
	return sortedNodes(o.UndirectedGraph.Nodes())
}

func (o ordered) From(id int64) graph.Nodes {
	return sortedNodes(o.UndirectedGraph.From(id))
}

func sortedNodes(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	if len(nodes) == 0 {
		return graph.Empty
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}
