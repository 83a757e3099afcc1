// Package viz turns laid-out co-authorship graphs into plottable figures.
package viz

import (
	"encoding/json"
	"strconv"

	"github.com/matsen/scholarnet/internal/network"
)

// Coord is one entry of a trace coordinate sequence. A gap breaks the
// polyline so consecutive edges render as separate segments.
type Coord struct {
	Value float64
	Gap   bool
}

// At returns a coordinate holding v.
func At(v float64) Coord {
	return Coord{Value: v}
}

// GapCoord is the segment separator.
var GapCoord = Coord{Gap: true}

// MarshalJSON writes gaps as null.
func (c Coord) MarshalJSON() ([]byte, error) {
	if c.Gap {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(c.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON reads null as a gap.
func (c *Coord) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = GapCoord
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = At(v)
	return nil
}

// EdgeTrace draws every edge as a disconnected segment: for each edge,
// X and Y hold the two endpoint coordinates followed by a gap.
type EdgeTrace struct {
	X     []Coord        `json:"x"`
	Y     []Coord        `json:"y"`
	Pairs []network.Pair `json:"-"` // endpoints of each segment, in trace order
}

// Len returns the number of edges in the trace.
func (e EdgeTrace) Len() int {
	return len(e.X) / 3
}

// NodeTrace holds per-node render data, indexed in graph node order.
type NodeTrace struct {
	Names     []string  `json:"names"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Labels    []string  `json:"labels"`     // name, or **name** for focus nodes
	Degrees   []int     `json:"degrees"`    // incident edge count
	HoverText []string  `json:"hover_text"` // "# of connections: N"
	Scale     []float64 `json:"scale"`      // color-scale position in [0, 1]
	Colors    []string  `json:"colors"`     // hex color at Scale
	MaxDegree int       `json:"max_degree"`
}

// Len returns the number of nodes in the trace.
func (n NodeTrace) Len() int {
	return len(n.Names)
}

// Focus names up to two nodes to emphasize. An empty field is absent.
// Matching is exact string equality against node identifiers.
type Focus struct {
	First  string
	Second string
}

// NoFocus emphasizes nothing.
var NoFocus = Focus{}

// Matches reports whether name is one of the focus nodes.
func (f Focus) Matches(name string) bool {
	return name != "" && (name == f.First || name == f.Second)
}

// IsEmpty reports whether no focus is set.
func (f Focus) IsEmpty() bool {
	return f.First == "" && f.Second == ""
}
