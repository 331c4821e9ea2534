package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/entity-engine/internal/exa"
)

var similarCmd = &cobra.Command{
	Use:   "similar [url]",
	Short: "Find pages similar to a URL",
	Long: `Similar finds pages semantically similar to the given URL. Point it at a
person's profile page to surface comparable people, or at an article to find
related coverage. Results from the source URL's own domain are excluded
unless --include-source-domain is set.`,
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("url")
	if target == "" && len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("url required: pass it as an argument or via --url")
	}

	numResults, _ := cmd.Flags().GetInt("num-results")
	includeSource, _ := cmd.Flags().GetBool("include-source-domain")
	includeSummary, _ := cmd.Flags().GetBool("summary")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := serviceConfig()
	if err != nil {
		return err
	}
	provider, closeCache, err := newProvider(cfg)
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}

	results, err := provider.FindSimilar(cmd.Context(), exa.SimilarQuery{
		URL:                 target,
		NumResults:          numResults,
		ExcludeSourceDomain: !includeSource,
		IncludeSummary:      includeSummary,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return exa.FormatJSON(results, os.Stdout)
	}
	exa.FormatTable(results, os.Stdout)
	return nil
}

func init() {
	similarCmd.Flags().String("url", "", "source URL to find similar pages for")
	similarCmd.Flags().Int("num-results", 10, "number of similar results")
	similarCmd.Flags().Bool("include-source-domain", false, "include results from the source URL's own domain")
	similarCmd.Flags().Bool("summary", false, "request provider summaries for each result")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(similarCmd)
}
