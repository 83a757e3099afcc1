// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/scholarnet/internal/network"
	"github.com/matsen/scholarnet/internal/scholar"
)

// Config represents repository configuration stored in .scholarnet/config.json.
type Config struct {
	Cohorts       []CohortConfig    `json:"cohorts"`
	DefaultCohort string            `json:"default_cohort,omitempty"`
	NameKey       string            `json:"name_key,omitempty"`       // initial-surname, first-last, identity
	NameOverrides map[string]string `json:"name_overrides,omitempty"` // key -> corrected key
	FilterMode    string            `json:"filter_mode,omitempty"`    // ego or induced
	Layout        LayoutConfig      `json:"layout"`
	Server        ServerConfig      `json:"server"`
	Scrape        ScrapeConfig      `json:"scrape"`
}

// CohortConfig names a cohort and the roster that defines it.
type CohortConfig struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Roster string `json:"roster"`          // CSV path, relative to the repository root
	Group  string `json:"group,omitempty"` // keep only rows with this Group value
}

// LayoutConfig configures the spring layout.
type LayoutConfig struct {
	Seed       *uint64 `json:"seed,omitempty"` // unset leaves layouts unseeded
	Iterations int     `json:"iterations,omitempty"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Addr       string `json:"addr,omitempty"`
	CORSOrigin string `json:"cors_origin,omitempty"`
}

// ScrapeConfig configures the co-author scraper.
type ScrapeConfig struct {
	Delay      string `json:"delay,omitempty"` // Go duration between requests
	Retry      bool   `json:"retry"`           // one retry pass over failures
	PaperLimit int    `json:"paper_limit,omitempty"`
}

const (
	ScholarnetDir = ".scholarnet"
	ConfigFile    = "config.json"
	PairsFile     = "pairs.jsonl"
	CacheDir      = "cache"
	DBFile        = "pairs.db"
	SnapshotsDir  = "snapshots"
)

// ReservedCohort names the graph covering every cohort and cannot be
// used for a configured cohort.
const ReservedCohort = "all"

// Defaults.
const (
	DefaultAddr       = ":8050"
	DefaultDelay      = 5 * time.Second
	DefaultPaperLimit = 100
)

// Default returns the configuration written by `snet init`.
func Default() *Config {
	return &Config{
		Cohorts: []CohortConfig{
			{Name: "COP", Title: "COP Scholars", Roster: "rosters/COPscholars.csv"},
			{Name: "IPOP", Title: "IPOP Scholars", Roster: "rosters/IPOP-Scholars.csv"},
			{Name: "SURE", Title: "SURE Scholars", Roster: "rosters/SURE-Scholars.csv"},
		},
		DefaultCohort: "COP",
		NameKey:       scholar.KeyInitialSurname,
		NameOverrides: map[string]string{},
		FilterMode:    string(network.ModeEgo),
		Layout:        LayoutConfig{Iterations: network.DefaultIterations},
		Server:        ServerConfig{Addr: DefaultAddr},
		Scrape: ScrapeConfig{
			Delay:      DefaultDelay.String(),
			Retry:      true,
			PaperLimit: DefaultPaperLimit,
		},
	}
}

// ScholarnetPath returns the path to the .scholarnet directory from a root path.
func ScholarnetPath(root string) string {
	return filepath.Join(root, ScholarnetDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ScholarnetDir, ConfigFile)
}

// PairsPath returns the path to pairs.jsonl from a root path.
func PairsPath(root string) string {
	return filepath.Join(root, ScholarnetDir, PairsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, ScholarnetDir, CacheDir)
}

// DBPath returns the path to pairs.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, ScholarnetDir, CacheDir, DBFile)
}

// SnapshotsPath returns the snapshot directory from a root path.
func SnapshotsPath(root string) string {
	return filepath.Join(root, ScholarnetDir, SnapshotsDir)
}

// SnapshotPath returns the snapshot file for a named graph.
func SnapshotPath(root, name string) string {
	return filepath.Join(SnapshotsPath(root), name+".json")
}

// RosterPath resolves a cohort roster path against the repository root.
func RosterPath(root string, c CohortConfig) string {
	p := ExpandPath(c.Roster)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// IsRepository checks if the given path contains a scholarnet repository.
func IsRepository(root string) bool {
	info, err := os.Stat(ScholarnetPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a scholarnet repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a scholarnet repository (no %s directory found)", ScholarnetDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks cohort definitions and enumerated settings.
func (c *Config) Validate() error {
	if len(c.Cohorts) == 0 {
		return fmt.Errorf("no cohorts configured")
	}

	seen := make(map[string]bool, len(c.Cohorts))
	for i, co := range c.Cohorts {
		if co.Name == "" {
			return fmt.Errorf("cohort %d: name is required", i)
		}
		if co.Name == ReservedCohort {
			return fmt.Errorf("cohort name %q is reserved for the combined graph", ReservedCohort)
		}
		if seen[co.Name] {
			return fmt.Errorf("cohort %s: duplicate name", co.Name)
		}
		seen[co.Name] = true
		if co.Roster == "" {
			return fmt.Errorf("cohort %s: roster is required", co.Name)
		}
	}
	if c.DefaultCohort != "" && !seen[c.DefaultCohort] {
		return fmt.Errorf("default_cohort %q is not a configured cohort", c.DefaultCohort)
	}

	if _, err := scholar.KeyFuncByName(c.NameKey); err != nil {
		return err
	}
	if _, err := network.ParseFilterMode(c.FilterMode); err != nil {
		return err
	}
	if _, err := c.Scrape.DelayDuration(); err != nil {
		return err
	}
	if c.Layout.Iterations < 0 {
		return fmt.Errorf("layout.iterations must not be negative")
	}

	return nil
}

// Cohort returns the named cohort configuration.
func (c *Config) Cohort(name string) (CohortConfig, bool) {
	for _, co := range c.Cohorts {
		if co.Name == name {
			return co, true
		}
	}
	return CohortConfig{}, false
}

// DefaultCohortName returns the configured default, or the first cohort.
func (c *Config) DefaultCohortName() string {
	if c.DefaultCohort != "" {
		return c.DefaultCohort
	}
	if len(c.Cohorts) > 0 {
		return c.Cohorts[0].Name
	}
	return ""
}

// Normalizer builds the configured name normalizer.
func (c *Config) Normalizer() (scholar.Normalizer, error) {
	key, err := scholar.KeyFuncByName(c.NameKey)
	if err != nil {
		return scholar.Normalizer{}, err
	}
	return scholar.NewNormalizer(key, c.NameOverrides), nil
}

// Mode returns the configured filter mode.
func (c *Config) Mode() network.FilterMode {
	m, err := network.ParseFilterMode(c.FilterMode)
	if err != nil {
		return network.ModeEgo
	}
	return m
}

// SpringOptions returns layout options from the configuration.
func (c *Config) SpringOptions() network.SpringOptions {
	return network.SpringOptions{
		Iterations: c.Layout.Iterations,
		Seed:       c.Layout.Seed,
	}
}

// ServerAddr returns the listen address, defaulting to DefaultAddr.
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultAddr
	}
	return c.Server.Addr
}

// DelayDuration parses the scrape delay. Empty selects DefaultDelay.
func (s ScrapeConfig) DelayDuration() (time.Duration, error) {
	if s.Delay == "" {
		return DefaultDelay, nil
	}
	d, err := time.ParseDuration(s.Delay)
	if err != nil {
		return 0, fmt.Errorf("invalid scrape.delay %q: %w", s.Delay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("scrape.delay must not be negative")
	}
	return d, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
