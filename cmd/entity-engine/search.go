package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/entity-engine/internal/entity"
	"github.com/pdiddy/entity-engine/internal/exa"
	"github.com/pdiddy/entity-engine/internal/llm"
	"github.com/pdiddy/entity-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [name]",
	Short: "Search for a person and cluster the results by identity",
	Long: `Search runs a person search and groups the results into clusters, one per
apparent real-world identity. Anchor flags (--role, --company, --location)
narrow the results to the identity matching those facts.

Use --save to write the outcome to a YAML file for later profile generation.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name == "" && len(args) > 0 {
		name = strings.Join(args, " ")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("person name required: pass it as an argument or via --name")
	}

	role, _ := cmd.Flags().GetString("role")
	company, _ := cmd.Flags().GetString("company")
	location, _ := cmd.Flags().GetString("location")
	numResults, _ := cmd.Flags().GetInt("num-results")
	autoSelect, _ := cmd.Flags().GetBool("auto-select")
	jsonOut, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")

	anchor := types.AnchorFacts{Role: role, Company: company, Location: location}

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

	builder := &entity.Builder{}
	if cfg.LLM.APIKey != "" {
		builder.Partitioner = &entity.ClaudePartitioner{LLM: llm.NewClient(cfg.LLM)}
	}

	ctx := cmd.Context()
	results, err := provider.Search(ctx, exa.Query{
		Text:              entity.ProviderQuery(name, anchor),
		NumResults:        numResults,
		IncludeHighlights: true,
	})
	if err != nil {
		return err
	}

	out := builder.Disambiguate(ctx, results, name, anchor, autoSelect, os.Stderr)

	if savePath != "" {
		if err := entity.WriteSaveFile(savePath, anchor, numResults, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved outcome to %s\n", savePath)
	}

	if jsonOut {
		return entity.FormatJSON(out, os.Stdout)
	}
	entity.FormatClusters(out, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("name", "", "person name to search for")
	searchCmd.Flags().String("role", "", "anchor: job title or function")
	searchCmd.Flags().String("company", "", "anchor: employer or organization")
	searchCmd.Flags().String("location", "", "anchor: city, region, or country")
	searchCmd.Flags().Int("num-results", 15, "number of search results to cluster")
	searchCmd.Flags().Bool("auto-select", false, "pre-select a cluster when exactly one is unambiguous")
	searchCmd.Flags().Bool("json", false, "output the outcome as JSON")
	searchCmd.Flags().String("save", "", "write the outcome to a YAML save file")

	rootCmd.AddCommand(searchCmd)
}
