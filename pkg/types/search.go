// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the entity-engine service.
// Implements: prd001-search-proxy (SearchResult, R4.1);
//
//	prd002-entity-disambiguation (AnchorFacts, EntityCluster, Confidence);
//	prd003-profile (Profile, R3.1-R3.4).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// SearchResult represents one normalized hit from the semantic search
// provider. Results are immutable once fetched; every downstream component
// (clustering, profile assembly) treats them as read-only inputs.
type SearchResult struct {
	// ID is the provider's identifier for this result, unique within one
	// search call. For Exa-style providers this is usually the result URL.
	ID string `json:"id" yaml:"id"`

	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical location of the result.
	URL string `json:"url" yaml:"url"`

	// Domain is the registrable host derived from URL (e.g. "linkedin.com").
	Domain string `json:"domain" yaml:"domain"`

	// Highlights holds short relevant text spans extracted by the provider,
	// in provider order.
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`

	// Score is a relevance value in [0,1]. When the provider reports no
	// score, a position-based fallback is assigned at fetch time.
	Score float64 `json:"score" yaml:"score"`

	// Author is the page author when the provider reports one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishedDate is the provider-reported publication date (YYYY-MM-DD),
	// empty when unknown.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Text is the extracted page text, present only when contents were
	// requested with the text flag.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Summary is the provider-generated summary, present only when contents
	// were requested with the summary flag.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}
