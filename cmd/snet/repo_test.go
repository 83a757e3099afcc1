package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/scholar"
	"github.com/matsen/scholarnet/internal/storage"
)

func setupRepo(t *testing.T) (string, *storage.DB) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		t.Fatalf("creating cache dir: %v", err)
	}
	pairs := `{"author_a":"Alice Smith","author_b":"Bob Jones","paper_id":"p1"}
`
	if err := os.WriteFile(config.PairsPath(root), []byte(pairs), 0644); err != nil {
		t.Fatalf("writing pairs.jsonl: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return root, db
}

func TestNeedsRebuild(t *testing.T) {
	root, db := setupRepo(t)
	cfg := config.Default()

	stale, err := needsRebuild(db, config.PairsPath(root), nameKey(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Error("empty cache should need a rebuild")
	}

	res, err := rebuildCache(db, root, cfg)
	if err != nil {
		t.Fatalf("rebuildCache: %v", err)
	}
	if res.Pairs != 1 {
		t.Errorf("Pairs = %d, want 1", res.Pairs)
	}

	stale, err = needsRebuild(db, config.PairsPath(root), nameKey(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if stale {
		t.Error("freshly rebuilt cache should not need a rebuild")
	}

	stale, err = needsRebuild(db, config.PairsPath(root), scholar.KeyIdentity)
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Error("changed name key should need a rebuild")
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(config.PairsPath(root), later, later); err != nil {
		t.Fatal(err)
	}
	stale, err = needsRebuild(db, config.PairsPath(root), nameKey(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Error("pairs.jsonl modified after rebuild should need a rebuild")
	}
}

func TestNeedsRebuild_WriteInSameSecond(t *testing.T) {
	root, db := setupRepo(t)
	cfg := config.Default()
	if _, err := rebuildCache(db, root, cfg); err != nil {
		t.Fatal(err)
	}

	rebuiltAt, err := db.Meta(storage.MetaRebuiltAt)
	if err != nil {
		t.Fatal(err)
	}
	at, err := time.Parse(time.RFC3339Nano, rebuiltAt)
	if err != nil {
		t.Fatalf("rebuilt_at %q: %v", rebuiltAt, err)
	}

	// An append a millisecond after the rebuild started, within the same second.
	mtime := at.Add(time.Millisecond)
	if err := os.Chtimes(config.PairsPath(root), mtime, mtime); err != nil {
		t.Fatal(err)
	}
	stale, err := needsRebuild(db, config.PairsPath(root), nameKey(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Error("write after the rebuild started should need a rebuild")
	}
}

func TestNeedsRebuild_MissingPairsFile(t *testing.T) {
	root, db := setupRepo(t)
	cfg := config.Default()
	if _, err := rebuildCache(db, root, cfg); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(config.PairsPath(root)); err != nil {
		t.Fatal(err)
	}

	stale, err := needsRebuild(db, filepath.Join(root, "missing.jsonl"), nameKey(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if stale {
		t.Error("missing pairs file should not force a rebuild")
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Cohorts = cfg.Cohorts[:2]
	rosters := []roster{
		{Cohort: cfg.Cohorts[0], Directory: &scholar.Directory{Scholars: []scholar.Scholar{{Name: "Alice Smith"}}}},
		{Cohort: cfg.Cohorts[1], Directory: &scholar.Directory{Scholars: []scholar.Scholar{{Name: "Bob Jones"}, {Name: "Alice Smith"}}}},
	}

	reg, err := buildRegistry(cfg, rosters)
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "COP" || got[1] != "IPOP" {
		t.Errorf("Names() = %v", got)
	}
	if !reg.Contains("IPOP", "A Smith") {
		t.Error("IPOP should contain A Smith")
	}
}

func TestScrapeTargets(t *testing.T) {
	rosters := []roster{
		{
			Cohort: config.CohortConfig{Name: "COP"},
			Directory: &scholar.Directory{Scholars: []scholar.Scholar{
				{Name: "Alice Smith", ID: "1"},
				{Name: "No Id"},
			}},
		},
		{
			Cohort: config.CohortConfig{Name: "IPOP"},
			Directory: &scholar.Directory{Scholars: []scholar.Scholar{
				{Name: "Alice Smith", ID: "1"},
				{Name: "Bob Jones", ID: "2"},
			}},
		},
	}

	t.Run("all cohorts dedupes by id", func(t *testing.T) {
		got, err := scrapeTargets(rosters, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d targets, want 3: %v", len(got), got)
		}
	})

	t.Run("one cohort", func(t *testing.T) {
		got, err := scrapeTargets(rosters, []string{"COP"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d targets, want 2: %v", len(got), got)
		}
		for _, s := range got {
			if s.Name == "Bob Jones" {
				t.Error("IPOP scholar selected for COP")
			}
		}
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := scrapeTargets(rosters, []string{"COP", "SURE"})
		if err == nil || !strings.Contains(err.Error(), "SURE") {
			t.Errorf("expected unknown cohort error naming SURE, got %v", err)
		}
	})
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{"filter-mode", "induced", false, func(c *config.Config) bool { return c.FilterMode == "induced" }},
		{"layout-seed", "42", false, func(c *config.Config) bool { return c.Layout.Seed != nil && *c.Layout.Seed == 42 }},
		{"layout-seed", "none", false, func(c *config.Config) bool { return c.Layout.Seed == nil }},
		{"layout-seed", "-1", true, nil},
		{"scrape-retry", "false", false, func(c *config.Config) bool { return !c.Scrape.Retry }},
		{"paper-limit", "0", true, nil},
		{"server-addr", ":9000", false, func(c *config.Config) bool { return c.ServerAddr() == ":9000" }},
		{"bogus", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := config.Default()
			err := setConfigValue(cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setConfigValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("setConfigValue(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	cfg := config.Default()
	if got := configValue(cfg, "layout-seed"); got != "none" {
		t.Errorf("layout-seed = %q, want none", got)
	}
	if got := configValue(cfg, "scrape-delay"); got != "5s" {
		t.Errorf("scrape-delay = %q, want 5s", got)
	}
	if got := configValue(cfg, "filter-mode"); got != "ego" {
		t.Errorf("filter-mode = %q, want ego", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	for in, want := range map[string]string{
		"filter-mode": "filter-mode",
		"FILTER_MODE": "filter-mode",
		"Layout_Seed": "layout-seed",
	} {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitRepository(t *testing.T) {
	root := t.TempDir()
	if err := initRepository(root); err != nil {
		t.Fatalf("initRepository: %v", err)
	}

	if !config.IsRepository(root) {
		t.Error("initialized directory is not a repository")
	}
	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if cfg.DefaultCohortName() != "COP" {
		t.Errorf("default cohort = %q, want COP", cfg.DefaultCohortName())
	}
	for _, p := range []string{config.PairsPath(root), config.SnapshotsPath(root), config.CachePath(root)} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}
