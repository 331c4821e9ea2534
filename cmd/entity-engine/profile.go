// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/entity-engine/internal/entity"
	"github.com/pdiddy/entity-engine/internal/llm"
	"github.com/pdiddy/entity-engine/internal/profile"
	"github.com/pdiddy/entity-engine/internal/scrape"
	"github.com/pdiddy/entity-engine/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Generate a profile for a cluster from a saved search",
	Long: `Profile expands one cluster from a saved search outcome (see search --save)
into a professional profile with sources. Content comes from the provider's
summaries when available, falling back to provider text with LLM
summarization, then to direct web scraping.`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	savePath, _ := cmd.Flags().GetString("save")
	clusterID, _ := cmd.Flags().GetString("cluster")
	focus, _ := cmd.Flags().GetString("focus")
	jsonOut, _ := cmd.Flags().GetBool("json")

	if savePath == "" {
		return fmt.Errorf("--save file required (create one with: entity-engine search --save)")
	}

	sf, err := entity.ReadSaveFile(savePath)
	if err != nil {
		return err
	}
	out := sf.Outcome()

	if clusterID == "" {
		clusterID = out.AutoSelected
	}
	if clusterID == "" {
		return fmt.Errorf("--cluster required: %s has %d cluster(s) and no auto-selection", savePath, len(out.Clusters))
	}

	var cluster *types.EntityCluster
	for i := range out.Clusters {
		if out.Clusters[i].ClusterID == clusterID {
			cluster = &out.Clusters[i]
			break
		}
	}
	if cluster == nil {
		return fmt.Errorf("cluster %q not found in %s", clusterID, savePath)
	}

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

	assembler := &profile.Assembler{Provider: provider, Scraper: scrape.New(cfg.Scrape)}
	if cfg.LLM.APIKey != "" {
		assembler.LLM = llm.NewClient(cfg.LLM)
	}

	req := profile.Request{
		Name:      cluster.PersonName,
		ClusterID: cluster.ClusterID,
	}
	for _, cand := range cluster.Candidates {
		if cand.ID != "" {
			req.ResultIDs = append(req.ResultIDs, cand.ID)
		}
		if cand.URL != "" {
			req.URLs = append(req.URLs, cand.URL)
		}
	}
	if focus != "" {
		for _, f := range strings.Split(focus, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.FocusAreas = append(req.FocusAreas, f)
			}
		}
	}

	res, err := assembler.Assemble(cmd.Context(), req, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOut {
		return profile.FormatJSON(res, os.Stdout)
	}
	profile.FormatProfile(res, os.Stdout)
	return nil
}

func init() {
	profileCmd.Flags().String("save", "", "path to a YAML save file from search --save")
	profileCmd.Flags().String("cluster", "", "cluster id to profile (defaults to the auto-selected cluster)")
	profileCmd.Flags().String("focus", "", "focus areas for the summary (comma-separated)")
	profileCmd.Flags().Bool("json", false, "output the profile as JSON")

	rootCmd.AddCommand(profileCmd)
}
