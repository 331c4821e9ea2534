// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile assembles a structured person profile from a selected
// cluster's sources. Content comes from a tiered chain tried in fixed
// order: provider-generated summaries, provider page text plus LLM
// summarization, direct scraping plus LLM summarization. A tier is
// attempted only after the previous one failed or is unavailable; the
// winning tier is recorded in the profile metadata.
// Implements: prd003-profile (R1-R5);
//
//	docs/ARCHITECTURE.md § Content tiers.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/entity-engine/internal/exa"
	"github.com/pdiddy/entity-engine/internal/scrape"
	"github.com/pdiddy/entity-engine/pkg/types"
)

// Tier names recorded in profile metadata under "generated_by".
const (
	TierProviderSummary = "exa-summary-api"
	TierProviderText    = "exa-text-api-claude"
	TierScraping        = "web-scraping-claude"
)

// maxSources caps how many sources one profile draws from.
const maxSources = 5

// minContentChars rejects provider text or scraped pages too thin to
// summarize.
const minContentChars = 100

// ErrNoContent reports that every content tier failed to produce text. The
// caller must surface this instead of returning an empty profile.
var ErrNoContent = errors.New("no content available from any source")

// ContentFetcher retrieves page contents from the search provider.
// *exa.Client implements it.
type ContentFetcher interface {
	Contents(ctx context.Context, req exa.ContentsRequest) ([]exa.ContentItem, error)
}

// Completer produces a completion for a prompt. *llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PageFetcher fetches one page's readable text. *scrape.Scraper implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scrape.Page, error)
}

// Assembler builds profiles. Nil collaborators disable the tiers that need
// them: without Provider the provider tiers are skipped, without LLM the
// two summarization tiers are skipped, without Scraper the scraping tier is
// skipped.
type Assembler struct {
	Provider ContentFetcher
	LLM      Completer
	Scraper  PageFetcher
}

// Request identifies the sources a profile is assembled from.
type Request struct {
	// Name is the person's name, used for the profile header and to steer
	// summarization.
	Name string

	// ClusterID is the caller's cluster token, echoed back verbatim.
	ClusterID string

	// ResultIDs are provider result ids, preferred over URLs when present.
	ResultIDs []string

	// URLs are source page locations. Required for the scraping tier when
	// the ids are not themselves URLs.
	URLs []string

	// FocusAreas steer the summary and become profile sections when an LLM
	// tier answers.
	FocusAreas []string
}

// Result couples the assembled profile with per-source outcomes.
type Result struct {
	ClusterID   string        `json:"cluster_id"`
	Profile     types.Profile `json:"profile"`
	SourcesUsed []SourceInfo  `json:"sources_used"`
}

// SourceInfo records whether one source contributed content to the profile.
type SourceInfo struct {
	URL                 string `json:"url"`
	Title               string `json:"title,omitempty"`
	ScrapedSuccessfully bool   `json:"scraped_successfully"`
}

// Assemble builds a profile for the request, walking the tier chain until
// one produces content. Warnings about failed tiers go to w. When every
// tier fails or is unavailable the error is ErrNoContent.
func (a *Assembler) Assemble(ctx context.Context, req Request, w io.Writer) (*Result, error) {
	ids, urls := req.ResultIDs, req.URLs
	if len(ids) == 0 && len(urls) == 0 {
		return nil, fmt.Errorf("either result_ids or urls must be provided")
	}
	if len(ids) > maxSources {
		ids = ids[:maxSources]
	}
	if len(urls) > maxSources {
		urls = urls[:maxSources]
	}

	if a.Provider != nil {
		out, err := a.providerSummaries(ctx, ids, urls, req)
		if err == nil {
			return a.result(req, out), nil
		}
		fmt.Fprintf(w, "warning: provider summary tier failed: %v\n", err)

		if a.LLM != nil {
			out, err = a.providerText(ctx, ids, urls, req, w)
			if err == nil {
				return a.result(req, out), nil
			}
			fmt.Fprintf(w, "warning: provider text tier failed: %v\n", err)
		}
	}

	if a.LLM != nil && a.Scraper != nil {
		targets := scrapeTargets(ids, urls)
		if len(targets) == 0 {
			fmt.Fprintf(w, "warning: scraping tier skipped: no scrapeable urls\n")
			return nil, ErrNoContent
		}
		out, err := a.scraped(ctx, targets, req, w)
		if err == nil {
			return a.result(req, out), nil
		}
		fmt.Fprintf(w, "warning: scraping tier failed: %v\n", err)
	}

	return nil, ErrNoContent
}

// tierOutput is what a content tier produces before profile shaping.
type tierOutput struct {
	tier      string
	summary   string
	keyPoints []string
	sections  []types.ProfileSection
	sources   []SourceInfo
}

// providerSummaries is the first tier: the provider writes the summaries
// itself, no LLM involved.
func (a *Assembler) providerSummaries(ctx context.Context, ids, urls []string, req Request) (tierOutput, error) {
	creq := exa.ContentsRequest{SummaryQuery: summaryQuery(req)}
	if len(ids) > 0 {
		creq.IDs = ids
	} else {
		creq.URLs = urls
	}

	items, err := a.Provider.Contents(ctx, creq)
	if err != nil {
		return tierOutput{}, err
	}
	if len(items) == 0 {
		return tierOutput{}, fmt.Errorf("no results from provider")
	}

	var summaries []string
	sources := make([]SourceInfo, 0, len(items))
	for _, it := range items {
		if it.Summary != "" {
			summaries = append(summaries, it.Summary)
		}
		sources = append(sources, SourceInfo{
			URL:                 it.URL,
			Title:               it.Title,
			ScrapedSuccessfully: it.Summary != "",
		})
	}
	if len(summaries) == 0 {
		return tierOutput{}, fmt.Errorf("no summaries in provider response")
	}

	return tierOutput{
		tier:    TierProviderSummary,
		summary: strings.Join(summaries, "\n\n"),
		sources: sources,
	}, nil
}

// providerText is the second tier: the provider supplies page text and the
// LLM writes the summary.
func (a *Assembler) providerText(ctx context.Context, ids, urls []string, req Request, w io.Writer) (tierOutput, error) {
	creq := exa.ContentsRequest{TextMaxChars: maxSourceChars}
	if len(ids) > 0 {
		creq.IDs = ids
	} else {
		creq.URLs = urls
	}

	items, err := a.Provider.Contents(ctx, creq)
	if err != nil {
		return tierOutput{}, err
	}
	if len(items) == 0 {
		return tierOutput{}, fmt.Errorf("no results from provider")
	}

	var docs []sourceDoc
	sources := make([]SourceInfo, 0, len(items))
	for _, it := range items {
		usable := len(it.Text) > minContentChars
		if usable {
			title := it.Title
			if title == "" {
				title = "Untitled"
			}
			docs = append(docs, sourceDoc{url: it.URL, title: title, content: it.Text})
		}
		sources = append(sources, SourceInfo{
			URL:                 it.URL,
			Title:               it.Title,
			ScrapedSuccessfully: usable,
		})
	}
	if len(docs) == 0 {
		return tierOutput{}, fmt.Errorf("no text content from provider")
	}

	res := a.summarize(ctx, docs, req, w)
	return tierOutput{
		tier:      TierProviderText,
		summary:   res.Summary,
		keyPoints: res.KeyPoints,
		sections:  res.Sections,
		sources:   sources,
	}, nil
}

// scraped is the last tier: fetch the pages directly and have the LLM
// summarize whatever survives extraction.
func (a *Assembler) scraped(ctx context.Context, targets []string, req Request, w io.Writer) (tierOutput, error) {
	var docs []sourceDoc
	sources := make([]SourceInfo, 0, len(targets))
	for _, target := range targets {
		page, err := a.Scraper.Fetch(ctx, target)
		if err != nil {
			fmt.Fprintf(w, "warning: scrape failed for %s: %v\n", target, err)
			sources = append(sources, SourceInfo{URL: target})
			continue
		}
		title := page.Title
		if title == "" {
			title = target
		}
		docs = append(docs, sourceDoc{url: target, title: title, content: page.Text})
		sources = append(sources, SourceInfo{
			URL:                 target,
			Title:               page.Title,
			ScrapedSuccessfully: true,
		})
	}
	if len(docs) == 0 {
		return tierOutput{}, fmt.Errorf("could not scrape content from any of %d urls", len(targets))
	}

	res := a.summarize(ctx, docs, req, w)
	return tierOutput{
		tier:      TierScraping,
		summary:   res.Summary,
		keyPoints: res.KeyPoints,
		sections:  res.Sections,
		sources:   sources,
	}, nil
}

// result shapes a tier's output into the final profile.
func (a *Assembler) result(req Request, out tierOutput) *Result {
	return &Result{
		ClusterID: req.ClusterID,
		Profile: types.Profile{
			Name:        req.Name,
			Headline:    headline(out),
			Summary:     out.summary,
			Sections:    buildSections(out),
			Links:       buildLinks(out.sources),
			Metadata:    map[string]string{"generated_by": out.tier},
			GeneratedAt: time.Now().UTC(),
		},
		SourcesUsed: out.sources,
	}
}

// summaryQuery builds the steering query for the provider summary tier
// (e.g. "Create a comprehensive summary about: Jane Doe focusing on:
// career, education").
func summaryQuery(req Request) string {
	parts := []string{"Create a comprehensive summary"}
	if req.Name != "" {
		parts = append(parts, "about: "+req.Name)
	}
	if len(req.FocusAreas) > 0 {
		parts = append(parts, "focusing on: "+strings.Join(req.FocusAreas, ", "))
	}
	return strings.Join(parts, " ")
}

// scrapeTargets picks the URLs for the scraping tier: explicit URLs first,
// otherwise the result ids that are themselves web URLs (Exa-style ids are).
func scrapeTargets(ids, urls []string) []string {
	if len(urls) > 0 {
		return urls
	}
	var out []string
	for _, id := range ids {
		if u, err := url.Parse(id); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			out = append(out, id)
		}
	}
	return out
}

// headline picks a one-liner: the first key point when the summarizer
// produced any, otherwise the summary's first sentence.
func headline(out tierOutput) string {
	if len(out.keyPoints) > 0 {
		return out.keyPoints[0]
	}
	s := out.summary
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	const maxHeadline = 140
	if len(s) > maxHeadline {
		s = s[:maxHeadline-3] + "..."
	}
	return strings.TrimSpace(s)
}

// buildSections returns the LLM's focus-area sections when it produced
// them, otherwise a single catch-all section. Key points, when present,
// become a trailing bulleted section.
func buildSections(out tierOutput) []types.ProfileSection {
	var secs []types.ProfileSection
	for _, s := range out.sections {
		if s.Title != "" && s.Content != "" {
			secs = append(secs, s)
		}
	}
	if len(secs) == 0 {
		secs = []types.ProfileSection{{Title: "Professional Summary", Content: out.summary}}
	}
	if len(out.keyPoints) > 0 {
		var b strings.Builder
		for _, p := range out.keyPoints {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
		secs = append(secs, types.ProfileSection{
			Title:   "Key Points",
			Content: strings.TrimRight(b.String(), "\n"),
		})
	}
	return secs
}

// buildLinks lists every referenced source once, keyed by URL. Failed
// sources stay in: the caller can still follow them by hand.
func buildLinks(sources []SourceInfo) []types.ProfileLink {
	seen := make(map[string]bool, len(sources))
	var links []types.ProfileLink
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		title := s.Title
		if title == "" {
			title = s.URL
		}
		links = append(links, types.ProfileLink{Title: title, URL: s.URL})
	}
	return links
}
