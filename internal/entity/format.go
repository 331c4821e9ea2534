// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatClusters writes an outcome as a human-readable report to w.
func FormatClusters(out Outcome, w io.Writer) {
	if len(out.Clusters) == 0 {
		fmt.Fprintf(w, "No candidate clusters found for %q.\n", out.Name)
		return
	}

	fmt.Fprintf(w, "%d cluster(s) for %q, %d candidates total\n\n", len(out.Clusters), out.Name, out.TotalCandidates)

	for _, c := range out.Clusters {
		marker := " "
		if c.ClusterID == out.AutoSelected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-14s  %-6s  %3d results  %s\n", marker, c.ClusterID, c.Confidence, c.TotalResults, c.Description)
		if len(c.KeyFacts) > 0 {
			fmt.Fprintf(w, "    facts: %s\n", strings.Join(c.KeyFacts, "; "))
		}
		for i, cand := range c.Candidates {
			title := cand.Title
			if title == "" {
				title = cand.URL
			}
			if len(title) > 70 {
				title = title[:67] + "..."
			}
			fmt.Fprintf(w, "    %2d. %-70s  %s\n", i+1, title, cand.Domain)
		}
		fmt.Fprintln(w)
	}

	if out.AutoSelected != "" {
		fmt.Fprintf(w, "auto-selected: %s\n", out.AutoSelected)
	}
}

// FormatJSON writes an outcome as indented JSON to w.
func FormatJSON(out Outcome, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
