package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/network"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs [author...]",
	Short: "Print co-authorship pairs",
	Long: `Print distinct co-authorship pairs from the query cache, keyed by the
configured name key.

With no authors the whole network is printed; with one or more, every pair
touching any of them.

Examples:
  snet pairs
  snet pairs "Jane Doe" "Bo Smith" --human`,
	RunE: runPairs,
}

func init() {
	rootCmd.AddCommand(pairsCmd)
}

// PairsResponse is the response for the pairs command.
type PairsResponse struct {
	Keys  []string       `json:"keys"`
	Count int            `json:"count"`
	Pairs []network.Pair `json:"pairs"`
}

func runPairs(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	log := newLogger()

	norm, err := cfg.Normalizer()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db := mustOpenPairs(repoRoot, cfg, log)
	defer db.Close()

	keys := norm.NormalizeAll(args)
	pairs, err := db.CoauthorPairs(context.Background(), keys...)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		for _, p := range pairs {
			fmt.Printf("%s -- %s\n", p.A, p.B)
		}
		fmt.Printf("%d pairs\n", len(pairs))
	} else {
		outputJSON(PairsResponse{Keys: keys, Count: len(pairs), Pairs: pairs})
	}
	return nil
}
