package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/scholar"
)

var (
	scholarsCohort     string
	scholarsCollisions bool
)

var scholarsCmd = &cobra.Command{
	Use:   "scholars",
	Short: "List roster scholars and their name keys",
	Long: `List the scholars in each configured roster together with the key the
configured name normalizer assigns them.

With --collisions, list only keys shared by more than one distinct name;
these scholars are merged into a single graph node.`,
	Args: cobra.NoArgs,
	RunE: runScholars,
}

func init() {
	scholarsCmd.Flags().StringVar(&scholarsCohort, "cohort", "", "Only list this cohort")
	scholarsCmd.Flags().BoolVar(&scholarsCollisions, "collisions", false, "Only report colliding name keys")
	rootCmd.AddCommand(scholarsCmd)
}

// ScholarEntry is one roster row in scholars output.
type ScholarEntry struct {
	Cohort string `json:"cohort"`
	Key    string `json:"key"`
	scholar.Scholar
}

// Collision is a key shared by several names.
type Collision struct {
	Key   string   `json:"key"`
	Names []string `json:"names"`
}

func runScholars(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	log := newLogger()

	if scholarsCohort != "" {
		c, ok := cfg.Cohort(scholarsCohort)
		if !ok {
			exitWithError(ExitConfigError, "unknown cohort: %s", scholarsCohort)
		}
		cfg.Cohorts = []config.CohortConfig{c}
	}

	norm, err := cfg.Normalizer()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	rosters, err := loadRosters(repoRoot, cfg, log)
	if err != nil {
		exitWithError(ExitDataError, "loading rosters: %v", err)
	}

	if scholarsCollisions {
		var names []string
		for _, r := range rosters {
			names = append(names, r.Directory.Names()...)
		}
		out := collisionList(scholar.Collisions(names, norm))
		if humanOutput {
			if len(out) == 0 {
				fmt.Println("No colliding name keys")
			}
			for _, c := range out {
				fmt.Printf("%-20s %s\n", c.Key, formatNameList(c.Names))
			}
		} else {
			outputJSON(out)
		}
		return nil
	}

	var entries []ScholarEntry
	for _, r := range rosters {
		for _, s := range r.Directory.Scholars {
			entries = append(entries, ScholarEntry{
				Cohort:  r.Cohort.Name,
				Key:     norm.Normalize(s.Name),
				Scholar: s,
			})
		}
	}

	if humanOutput {
		for _, e := range entries {
			id := e.ID
			if id == "" {
				id = "-"
			}
			fmt.Printf("%-6s %-20s %-30s %s\n", e.Cohort, e.Key, truncateString(e.Name, 30), id)
		}
		fmt.Printf("%d scholars\n", len(entries))
	} else {
		outputJSON(entries)
	}
	return nil
}

// collisionList flattens a collision map in key order.
func collisionList(m map[string][]string) []Collision {
	out := make([]Collision, 0, len(m))
	for k, names := range m {
		out = append(out, Collision{Key: k, Names: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
