package app

import (
	"context"
	"fmt"

	"github.com/matsen/scholarnet/internal/cohort"
	"github.com/matsen/scholarnet/internal/network"
	"github.com/matsen/scholarnet/internal/storage"
)

// AllCohorts names the graph covering every registered cohort.
const AllCohorts = "all"

// Provider returns co-authorship pairs whose endpoints are already name
// keys, produced by the same normalizer as the registry's. Keys are not
// normalized again: a key function need not map a key to itself.
// No keys means the whole network; otherwise pairs touching any key.
// *storage.DB implements it.
type Provider interface {
	CoauthorPairs(ctx context.Context, keys ...string) ([]network.Pair, error)
}

// Builder computes cohort graphs from a provider.
type Builder struct {
	Registry *cohort.Registry
	Provider Provider
	Mode     network.FilterMode
	Spring   network.SpringOptions
}

// GraphNames returns every buildable graph: each cohort, then AllCohorts.
func (b Builder) GraphNames() []string {
	return append(b.Registry.Names(), AllCohorts)
}

// members returns the member keys of a cohort or of AllCohorts.
func (b Builder) members(name string) (map[string]bool, error) {
	if name == AllCohorts {
		return b.Registry.Keys()
	}
	return b.Registry.Keys(name)
}

// CohortPairs returns the normalized pairs kept for a cohort under the
// configured filter mode.
func (b Builder) CohortPairs(ctx context.Context, name string) ([]network.Pair, error) {
	keys, err := b.members(name)
	if err != nil {
		return nil, err
	}

	pairs, err := b.Provider.CoauthorPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	return network.FilterPairs(pairs, network.Touching(keys, b.Mode)), nil
}

// Snapshot builds and lays out a cohort graph.
func (b Builder) Snapshot(ctx context.Context, name string) (*storage.Snapshot, error) {
	pairs, err := b.CohortPairs(ctx, name)
	if err != nil {
		return nil, err
	}
	g := network.Build(pairs)
	pos := network.Spring(g, b.Spring)
	return storage.NewSnapshot(name, g, pos, storage.PairsDigest(pairs)), nil
}

// IsStale reports whether the provider's pairs for s.Name no longer match
// the digest the snapshot was built from.
func (b Builder) IsStale(ctx context.Context, s *storage.Snapshot) (bool, error) {
	pairs, err := b.CohortPairs(ctx, s.Name)
	if err != nil {
		return false, err
	}
	return storage.PairsDigest(pairs) != s.Digest, nil
}
