// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exa

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-55s  %-25s  %-6s\n", "Rank", "Title", "Domain", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 95))

	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		domain := r.Domain
		if len(domain) > 25 {
			domain = domain[:22] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-55s  %-25s  %-6.2f\n", i+1, title, domain, r.Score)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
