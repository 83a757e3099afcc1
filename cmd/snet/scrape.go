package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/asta"
	"github.com/matsen/scholarnet/internal/config"
	"github.com/matsen/scholarnet/internal/scholar"
	"github.com/matsen/scholarnet/internal/scrape"
	"github.com/matsen/scholarnet/internal/storage"
)

var (
	scrapeCohorts []string
	scrapeDelay   string
	scrapeLimit   int
	scrapeNoRetry bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect co-authors for roster scholars from ASTA",
	Long: `Fetch each roster scholar's papers from ASTA and append one record per
co-author to .scholarnet/pairs.jsonl.

Scholars are scraped one at a time with a fixed delay between requests.
Failures get a single retry pass at the end. Scholars without an ID column
value are skipped; use 'snet find-author' to look IDs up.

Environment Variables:
  ASTA_API_KEY  Your ASTA API key (required)

Examples:
  snet scrape
  snet scrape --cohort IPOP --delay 2s`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeCohorts, "cohort", nil, "Cohort to scrape (repeatable; default all)")
	scrapeCmd.Flags().StringVar(&scrapeDelay, "delay", "", "Pause between requests (overrides config, e.g. 5s)")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "Papers per scholar (overrides config)")
	scrapeCmd.Flags().BoolVar(&scrapeNoRetry, "no-retry", false, "Skip the retry pass over failures")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	log := newLogger()

	apiKey := config.GetASTAAPIKey()
	if apiKey == "" {
		exitWithError(ExitASTAAuthError, "ASTA_API_KEY is not set\n\nSet it in the environment, a .env file, or asta_api_key in %s", config.GlobalConfigPath())
	}

	if scrapeDelay != "" {
		cfg.Scrape.Delay = scrapeDelay
	}
	delay, err := cfg.Scrape.DelayDuration()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	limit := cfg.Scrape.PaperLimit
	if scrapeLimit > 0 {
		limit = scrapeLimit
	}

	rosters, err := loadRosters(repoRoot, cfg, log)
	if err != nil {
		exitWithError(ExitDataError, "loading rosters: %v", err)
	}
	scholars, err := scrapeTargets(rosters, scrapeCohorts)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := &scrape.Scraper{
		Fetcher: asta.NewClient(asta.WithAPIKey(apiKey)),
		Sink:    storage.RecordSink{Path: config.PairsPath(repoRoot)},
		Delay:   delay,
		Limit:   limit,
		Retry:   cfg.Scrape.Retry && !scrapeNoRetry,
		Logger:  log,
	}
	res, err := s.Run(ctx, scholars)
	if err != nil {
		if asta.IsAuthError(err) {
			exitWithError(ExitASTAAuthError, "%v", err)
		}
		exitWithError(ExitASTAAPIError, "scrape stopped: %v (%d scholars done)", err, res.Scraped)
	}

	if humanOutput {
		fmt.Printf("Scraped %d scholars, %d records\n", res.Scraped, res.Records)
		fmt.Printf("  Failed:  %s\n", formatNameList(res.Failed))
		fmt.Printf("  Skipped: %s\n", formatNameList(res.Skipped))
	} else {
		outputJSON(res)
	}
	return nil
}

// scrapeTargets returns the scholars of the named cohorts (all when none),
// each ID once, in roster order.
func scrapeTargets(rosters []roster, cohorts []string) ([]scholar.Scholar, error) {
	want := make(map[string]bool, len(cohorts))
	for _, c := range cohorts {
		want[c] = true
	}
	missing := make(map[string]bool, len(want))
	for c := range want {
		missing[c] = true
	}

	seen := make(map[string]bool)
	var out []scholar.Scholar
	for _, r := range rosters {
		if len(want) > 0 && !want[r.Cohort.Name] {
			continue
		}
		delete(missing, r.Cohort.Name)
		for _, s := range r.Directory.Scholars {
			if s.ID != "" {
				if seen[s.ID] {
					continue
				}
				seen[s.ID] = true
			}
			out = append(out, s)
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for c := range missing {
			names = append(names, c)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown cohort: %s", strings.Join(names, ", "))
	}
	return out, nil
}
