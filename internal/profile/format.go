// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"encoding/json"
	"fmt"
	"io"
)

// FormatProfile writes an assembled profile as a human-readable report to w.
func FormatProfile(res *Result, w io.Writer) {
	p := res.Profile

	fmt.Fprintln(w, p.Name)
	if p.Headline != "" {
		fmt.Fprintln(w, p.Headline)
	}

	if len(p.Sections) == 0 {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}
	for _, sec := range p.Sections {
		fmt.Fprintf(w, "\n%s\n\n%s\n", sec.Title, sec.Content)
	}

	if len(p.Links) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, l := range p.Links {
			fmt.Fprintf(w, "  - %s (%s)\n", l.Title, l.URL)
		}
	}

	used := 0
	for _, s := range res.SourcesUsed {
		if s.ScrapedSuccessfully {
			used++
		}
	}
	fmt.Fprintf(w, "\n%d/%d sources contributed, generated by %s\n", used, len(res.SourcesUsed), p.Metadata["generated_by"])
}

// FormatJSON writes the result as indented JSON to w.
func FormatJSON(res *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
