package storage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/matsen/scholarnet/internal/network"
)

// Snapshot is a persisted graph and its layout, used to skip laying out
// whole-cohort graphs on every start.
type Snapshot struct {
	Name      string                   `json:"name"`
	Nodes     []string                 `json:"nodes"`
	Edges     []network.Pair           `json:"edges"`
	Positions map[string]network.Point `json:"positions"`
	Digest    string                   `json:"digest"` // PairsDigest of the pairs the graph was built from
	CreatedAt string                   `json:"created_at"`
}

// NewSnapshot captures g and pos.
func NewSnapshot(name string, g *network.Graph, pos network.Layout, digest string) *Snapshot {
	positions := make(map[string]network.Point, len(pos))
	for k, v := range pos {
		positions[k] = v
	}
	return &Snapshot{
		Name:      name,
		Nodes:     g.Nodes(),
		Edges:     g.Edges(),
		Positions: positions,
		Digest:    digest,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Graph rebuilds the stored graph, keeping node and edge order.
func (s *Snapshot) Graph() *network.Graph {
	g := network.NewGraph()
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	for _, e := range s.Edges {
		g.AddPair(e)
	}
	return g
}

// Layout returns the stored positions.
func (s *Snapshot) Layout() network.Layout {
	pos := make(network.Layout, len(s.Positions))
	for k, v := range s.Positions {
		pos[k] = v
	}
	return pos
}

// Validate checks that positions cover exactly the node set and that
// every edge endpoint is a node.
func (s *Snapshot) Validate() error {
	nodes := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes[n] = true
		if _, ok := s.Positions[n]; !ok {
			return fmt.Errorf("snapshot %s: no position for node %q", s.Name, n)
		}
	}
	if len(s.Positions) != len(nodes) {
		return fmt.Errorf("snapshot %s: %d positions for %d nodes", s.Name, len(s.Positions), len(nodes))
	}
	for _, e := range s.Edges {
		if !nodes[e.A] || !nodes[e.B] {
			return fmt.Errorf("snapshot %s: edge %s / %s has an unknown endpoint", s.Name, e.A, e.B)
		}
	}
	return nil
}

// SaveSnapshot writes a snapshot as JSON, creating parent directories.
func SaveSnapshot(path string, s *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads and validates a snapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// PairsDigest returns a BLAKE2b-256 digest of the distinct collaborations
// in pairs. It ignores pair order, endpoint order, duplicates and self
// pairs.
func PairsDigest(pairs []network.Pair) string {
	seen := make(map[network.Pair]bool, len(pairs))
	canon := make([]network.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.IsSelf() {
			continue
		}
		c := p.Canonical()
		if seen[c] {
			continue
		}
		seen[c] = true
		canon = append(canon, c)
	}
	sort.Slice(canon, func(i, j int) bool {
		if canon[i].A != canon[j].A {
			return canon[i].A < canon[j].A
		}
		return canon[i].B < canon[j].B
	})

	h, _ := blake2b.New256(nil)
	for _, p := range canon {
		h.Write([]byte(p.A))
		h.Write([]byte{0})
		h.Write([]byte(p.B))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDir stores one snapshot file per graph name in a directory.
type SnapshotDir string

// ErrInvalidSnapshotName is returned for names that are empty or would
// leave the snapshot directory.
var ErrInvalidSnapshotName = errors.New("invalid snapshot name")

// Path returns the file holding the named snapshot. Names must be a
// single path element.
func (d SnapshotDir) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSnapshotName, name)
	}
	return filepath.Join(string(d), name+".json"), nil
}

// Load reads the named snapshot. A missing file yields an error matching
// fs.ErrNotExist.
func (d SnapshotDir) Load(name string) (*Snapshot, error) {
	path, err := d.Path(name)
	if err != nil {
		return nil, err
	}
	return LoadSnapshot(path)
}

// Save writes s under its name.
func (d SnapshotDir) Save(s *Snapshot) error {
	path, err := d.Path(s.Name)
	if err != nil {
		return err
	}
	return SaveSnapshot(path, s)
}
