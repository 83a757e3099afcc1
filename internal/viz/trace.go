package viz

import (
	"errors"
	"fmt"

	"github.com/matsen/scholarnet/internal/network"
)

// ErrMissingPosition is returned when a layout lacks a graph node.
var ErrMissingPosition = errors.New("layout has no position for node")

// FocusLabel wraps a focus node's name in emphasis markers.
func FocusLabel(name string) string {
	return "**" + name + "**"
}

// HoverText is the per-node hover line.
func HoverText(degree int) string {
	return fmt.Sprintf("# of connections: %d", degree)
}

// BuildTraces produces the edge and node traces for a laid-out graph.
// Edges and nodes follow the graph's iteration order.
func BuildTraces(g *network.Graph, pos network.Layout, focus Focus) (EdgeTrace, NodeTrace, error) {
	edges := EdgeTrace{
		X: make([]Coord, 0, 3*g.NumEdges()),
		Y: make([]Coord, 0, 3*g.NumEdges()),
	}
	for _, e := range g.Edges() {
		p0, ok := pos[e.A]
		if !ok {
			return EdgeTrace{}, NodeTrace{}, fmt.Errorf("%w: %s", ErrMissingPosition, e.A)
		}
		p1, ok := pos[e.B]
		if !ok {
			return EdgeTrace{}, NodeTrace{}, fmt.Errorf("%w: %s", ErrMissingPosition, e.B)
		}
		edges.X = append(edges.X, At(p0.X), At(p1.X), GapCoord)
		edges.Y = append(edges.Y, At(p0.Y), At(p1.Y), GapCoord)
		edges.Pairs = append(edges.Pairs, e)
	}

	n := g.NumNodes()
	nodes := NodeTrace{
		Names:     make([]string, 0, n),
		X:         make([]float64, 0, n),
		Y:         make([]float64, 0, n),
		Labels:    make([]string, 0, n),
		Degrees:   make([]int, 0, n),
		HoverText: make([]string, 0, n),
		Scale:     make([]float64, 0, n),
		Colors:    make([]string, 0, n),
		MaxDegree: g.MaxDegree(),
	}
	for _, name := range g.Nodes() {
		p, ok := pos[name]
		if !ok {
			return EdgeTrace{}, NodeTrace{}, fmt.Errorf("%w: %s", ErrMissingPosition, name)
		}

		label := name
		if focus.Matches(name) {
			label = FocusLabel(name)
		}
		degree := g.Degree(name)
		scale := ScalePosition(degree, nodes.MaxDegree)

		nodes.Names = append(nodes.Names, name)
		nodes.X = append(nodes.X, p.X)
		nodes.Y = append(nodes.Y, p.Y)
		nodes.Labels = append(nodes.Labels, label)
		nodes.Degrees = append(nodes.Degrees, degree)
		nodes.HoverText = append(nodes.HoverText, HoverText(degree))
		nodes.Scale = append(nodes.Scale, scale)
		nodes.Colors = append(nodes.Colors, ColorAt(scale))
	}

	return edges, nodes, nil
}
