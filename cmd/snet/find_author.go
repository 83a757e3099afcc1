package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/asta"
	"github.com/matsen/scholarnet/internal/author"
	"github.com/matsen/scholarnet/internal/config"
)

var (
	findAuthorLimit int
	findAuthorExact bool
)

var findAuthorCmd = &cobra.Command{
	Use:   "find-author <name>",
	Short: "Look up ASTA author IDs for a roster name",
	Long: `Search ASTA for authors by name. Copy the matching authorId into the
roster's ID column so 'snet scrape' can fetch that scholar.

Results whose name agrees with the query (same surname, given names
matching by prefix) are listed first and marked; --exact drops the rest.

Examples:
  snet find-author "Jane Doe"
  snet find-author "J Doe" --exact --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFindAuthor,
}

func init() {
	findAuthorCmd.Flags().IntVar(&findAuthorLimit, "limit", asta.DefaultAuthorSearchLimit, "Maximum number of results")
	findAuthorCmd.Flags().BoolVar(&findAuthorExact, "exact", false, "Only show authors whose name matches")
	rootCmd.AddCommand(findAuthorCmd)
}

// FindAuthorResponse is the response for the find-author command.
type FindAuthorResponse struct {
	Query   string             `json:"query"`
	Authors []author.Candidate `json:"authors"`
}

func runFindAuthor(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	client := asta.NewClient(asta.WithAPIKey(config.GetASTAAPIKey()))

	resp, err := client.SearchAuthors(context.Background(), name, findAuthorLimit)
	if err != nil {
		switch {
		case asta.IsAuthError(err):
			exitWithError(ExitASTAAuthError, "%v", err)
		case asta.IsNotFound(err):
			exitWithError(ExitASTANotFound, "no authors found for %q", name)
		default:
			exitWithError(ExitASTAAPIError, "%v", err)
		}
	}

	candidates := author.Rank(name, resp.Authors)
	if findAuthorExact {
		candidates = author.Matching(candidates)
	}

	if humanOutput {
		if len(candidates) == 0 {
			fmt.Printf("No authors found for %q\n", name)
			return nil
		}
		for _, a := range candidates {
			mark := " "
			if a.Match {
				mark = "*"
			}
			fmt.Printf("%s %-12s %s (%d papers, h-index %d)\n", mark, a.AuthorID, a.Name, a.PaperCount, a.HIndex)
			if len(a.Affiliations) > 0 {
				fmt.Printf("               %s\n", truncateString(strings.Join(a.Affiliations, "; "), 70))
			}
		}
	} else {
		outputJSON(FindAuthorResponse{Query: name, Authors: candidates})
	}
	return nil
}
