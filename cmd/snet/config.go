package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in .scholarnet/config.json.

Usage:
  snet config                         # Show all config
  snet config filter-mode             # Get specific value
  snet config filter-mode induced     # Set value
  snet config layout-seed none        # Unset the layout seed

Keys:
  default-cohort     Cohort shown when the dashboard opens
  name-key           Name normalizer (initial-surname, first-last, identity)
  filter-mode        Cohort graph filter (ego, induced)
  layout-seed        Spring layout seed, or "none" for unseeded layouts
  layout-iterations  Spring layout iterations (0 uses the default)
  server-addr        Dashboard listen address
  cors-origin        Allowed CORS origin
  scrape-delay       Delay between scrape requests (e.g. 5s)
  scrape-retry       Retry failed scrapes once (true, false)
  paper-limit        Papers requested per scholar

Cohorts and name overrides are edited directly in config.json.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			for _, k := range configKeys {
				fmt.Printf("%-18s %s\n", k+":", configValue(cfg, k))
			}
			for _, c := range cfg.Cohorts {
				fmt.Printf("cohort %-11s %s\n", c.Name+":", c.Roster)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])
	if !isConfigKey(key) {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if len(args) == 1 {
		value := configValue(cfg, key)
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	if err := setConfigValue(cfg, key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}

var configKeys = []string{
	"default-cohort",
	"name-key",
	"filter-mode",
	"layout-seed",
	"layout-iterations",
	"server-addr",
	"cors-origin",
	"scrape-delay",
	"scrape-retry",
	"paper-limit",
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// configValue formats one setting for display.
func configValue(cfg *config.Config, key string) string {
	switch key {
	case "default-cohort":
		return cfg.DefaultCohortName()
	case "name-key":
		return nameKey(cfg)
	case "filter-mode":
		return string(cfg.Mode())
	case "layout-seed":
		if cfg.Layout.Seed == nil {
			return "none"
		}
		return strconv.FormatUint(*cfg.Layout.Seed, 10)
	case "layout-iterations":
		return strconv.Itoa(cfg.Layout.Iterations)
	case "server-addr":
		return cfg.ServerAddr()
	case "cors-origin":
		return cfg.Server.CORSOrigin
	case "scrape-delay":
		d, err := cfg.Scrape.DelayDuration()
		if err != nil {
			return cfg.Scrape.Delay
		}
		return d.String()
	case "scrape-retry":
		return strconv.FormatBool(cfg.Scrape.Retry)
	case "paper-limit":
		if cfg.Scrape.PaperLimit == 0 {
			return strconv.Itoa(config.DefaultPaperLimit)
		}
		return strconv.Itoa(cfg.Scrape.PaperLimit)
	}
	return ""
}

// setConfigValue parses value into the setting named by key. Enumerated
// values are checked by Config.Validate afterwards.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "default-cohort":
		cfg.DefaultCohort = value
	case "name-key":
		cfg.NameKey = value
	case "filter-mode":
		cfg.FilterMode = value
	case "layout-seed":
		if value == "none" || value == "" {
			cfg.Layout.Seed = nil
			return nil
		}
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid layout-seed %q: %w", value, err)
		}
		cfg.Layout.Seed = &seed
	case "layout-iterations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid layout-iterations %q: %w", value, err)
		}
		cfg.Layout.Iterations = n
	case "server-addr":
		cfg.Server.Addr = value
	case "cors-origin":
		cfg.Server.CORSOrigin = value
	case "scrape-delay":
		cfg.Scrape.Delay = value
	case "scrape-retry":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid scrape-retry %q: %w", value, err)
		}
		cfg.Scrape.Retry = b
	case "paper-limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid paper-limit %q: must be a positive integer", value)
		}
		cfg.Scrape.PaperLimit = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (filter-mode, filter_mode, Filter-Mode)
// to a consistent format.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
