package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/scholarnet/internal/network"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"ScholarnetPath", ScholarnetPath, "/test/repo/.scholarnet"},
		{"ConfigPath", ConfigPath, "/test/repo/.scholarnet/config.json"},
		{"PairsPath", PairsPath, "/test/repo/.scholarnet/pairs.jsonl"},
		{"CachePath", CachePath, "/test/repo/.scholarnet/cache"},
		{"DBPath", DBPath, "/test/repo/.scholarnet/cache/pairs.db"},
		{"SnapshotsPath", SnapshotsPath, "/test/repo/.scholarnet/snapshots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestSnapshotPath(t *testing.T) {
	got := SnapshotPath("/r", "COP")
	want := "/r/.scholarnet/snapshots/COP.json"
	if got != want {
		t.Errorf("SnapshotPath() = %q, want %q", got, want)
	}
}

func TestRosterPath(t *testing.T) {
	if got := RosterPath("/r", CohortConfig{Roster: "rosters/COP.csv"}); got != "/r/rosters/COP.csv" {
		t.Errorf("RosterPath(relative) = %q", got)
	}
	if got := RosterPath("/r", CohortConfig{Roster: "/abs/COP.csv"}); got != "/abs/COP.csv" {
		t.Errorf("RosterPath(absolute) = %q", got)
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, ScholarnetDir), 0755); err != nil {
		t.Fatalf("Failed to create .scholarnet: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, ScholarnetDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .scholarnet file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .scholarnet is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "rosters", "2024")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, ScholarnetDir), 0755); err != nil {
		t.Fatalf("Failed to create .scholarnet: %v", err)
	}

	found, err := FindRepository(nestedDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}

	found, err = FindRepository(repoDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if err == nil {
		t.Error("FindRepository() should return error when no repo found")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ScholarnetDir), 0755); err != nil {
		t.Fatalf("Failed to create .scholarnet: %v", err)
	}

	cfg := Default()
	cfg.FilterMode = string(network.ModeInduced)
	cfg.Layout.Seed = network.Seed(42)
	cfg.NameOverrides = map[string]string{"A Obrien": "A O'Brien"}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loaded.Cohorts) != 3 {
		t.Fatalf("len(Cohorts) = %d, want 3", len(loaded.Cohorts))
	}
	if loaded.Mode() != network.ModeInduced {
		t.Errorf("Mode() = %q, want %q", loaded.Mode(), network.ModeInduced)
	}
	if loaded.Layout.Seed == nil || *loaded.Layout.Seed != 42 {
		t.Errorf("Layout.Seed = %v, want 42", loaded.Layout.Seed)
	}
	norm, err := loaded.Normalizer()
	if err != nil {
		t.Fatalf("Normalizer() error = %v", err)
	}
	if got := norm.Normalize("Ann Obrien"); got != "A O'Brien" {
		t.Errorf("Normalize(Ann Obrien) = %q, want %q", got, "A O'Brien")
	}
	if got := norm.Normalize("Jane Mcginty"); got != "J McGinty" {
		t.Errorf("Normalize(Jane Mcginty) = %q, want default override", got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ScholarnetDir), 0755); err != nil {
		t.Fatalf("Failed to create .scholarnet: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error when config not found")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ScholarnetDir), 0755); err != nil {
		t.Fatalf("Failed to create .scholarnet: %v", err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no cohorts", func(c *Config) { c.Cohorts = nil }, true},
		{"empty cohort name", func(c *Config) { c.Cohorts[0].Name = "" }, true},
		{"duplicate cohort", func(c *Config) { c.Cohorts[1].Name = "COP" }, true},
		{"reserved cohort name", func(c *Config) { c.Cohorts[2].Name = ReservedCohort }, true},
		{"missing roster", func(c *Config) { c.Cohorts[2].Roster = "" }, true},
		{"unknown default cohort", func(c *Config) { c.DefaultCohort = "NOPE" }, true},
		{"bad name key", func(c *Config) { c.NameKey = "soundex" }, true},
		{"bad filter mode", func(c *Config) { c.FilterMode = "or" }, true},
		{"bad delay", func(c *Config) { c.Scrape.Delay = "five" }, true},
		{"negative delay", func(c *Config) { c.Scrape.Delay = "-1s" }, true},
		{"negative iterations", func(c *Config) { c.Layout.Iterations = -1 }, true},
		{"empty enums", func(c *Config) { c.NameKey, c.FilterMode, c.Scrape.Delay = "", "", "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{Cohorts: []CohortConfig{{Name: "SURE", Roster: "s.csv"}}}

	if got := cfg.DefaultCohortName(); got != "SURE" {
		t.Errorf("DefaultCohortName() = %q, want SURE", got)
	}
	if got := cfg.ServerAddr(); got != DefaultAddr {
		t.Errorf("ServerAddr() = %q, want %q", got, DefaultAddr)
	}
	if got := cfg.Mode(); got != network.ModeEgo {
		t.Errorf("Mode() = %q, want %q", got, network.ModeEgo)
	}
	d, err := cfg.Scrape.DelayDuration()
	if err != nil || d != DefaultDelay {
		t.Errorf("DelayDuration() = %v, %v, want %v", d, err, DefaultDelay)
	}

	cfg.Scrape.Delay = "250ms"
	d, _ = cfg.Scrape.DelayDuration()
	if d != 250*time.Millisecond {
		t.Errorf("DelayDuration() = %v, want 250ms", d)
	}
}

func TestCohort(t *testing.T) {
	cfg := Default()
	co, ok := cfg.Cohort("IPOP")
	if !ok {
		t.Fatal("Cohort(IPOP) not found")
	}
	if co.Roster != "rosters/IPOP-Scholars.csv" {
		t.Errorf("Roster = %q", co.Roster)
	}
	if _, ok := cfg.Cohort("cop"); ok {
		t.Error("Cohort() should be case-sensitive")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in, want string
	}{
		{"~/rosters", filepath.Join(home, "rosters")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConstants(t *testing.T) {
	if ScholarnetDir != ".scholarnet" {
		t.Errorf("ScholarnetDir = %q, want .scholarnet", ScholarnetDir)
	}
	if ConfigFile != "config.json" {
		t.Errorf("ConfigFile = %q, want config.json", ConfigFile)
	}
	if PairsFile != "pairs.jsonl" {
		t.Errorf("PairsFile = %q, want pairs.jsonl", PairsFile)
	}
}
