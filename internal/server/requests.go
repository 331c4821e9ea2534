// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// Request bounds. Queries longer than the provider accepts and oversized
// batches are rejected before any upstream call.
const (
	maxQueryChars   = 1000
	maxNumResults   = 100
	maxBatchQueries = 10
)

// Each request type validates (and defaults) itself; validate returns a
// caller-facing message, empty when the request is acceptable.

type searchRequest struct {
	Query              string   `json:"query"`
	NumResults         int      `json:"num_results"`
	SearchType         string   `json:"search_type"`
	Category           string   `json:"category"`
	IncludeDomains     []string `json:"include_domains"`
	ExcludeDomains     []string `json:"exclude_domains"`
	StartPublishedDate string   `json:"start_published_date"`
	EndPublishedDate   string   `json:"end_published_date"`
	IncludeText        bool     `json:"include_text"`
	IncludeHighlights  bool     `json:"include_highlights"`
}

func (r *searchRequest) validate() string {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return "query is required"
	}
	if len(r.Query) > maxQueryChars {
		return fmt.Sprintf("query exceeds %d characters", maxQueryChars)
	}
	if msg := defaultNumResults(&r.NumResults, 10); msg != "" {
		return msg
	}
	switch r.SearchType {
	case "":
		r.SearchType = "auto"
	case "neural", "keyword", "auto":
	default:
		return "search_type must be one of neural, keyword, auto"
	}
	if !validDate(r.StartPublishedDate) || !validDate(r.EndPublishedDate) {
		return "published dates must be YYYY-MM-DD"
	}
	return ""
}

type contentsRequest struct {
	IDs        []string `json:"ids"`
	URLs       []string `json:"urls"`
	Text       bool     `json:"text"`
	Highlights bool     `json:"highlights"`
	Summary    bool     `json:"summary"`
}

func (r *contentsRequest) validate() string {
	if len(r.IDs) == 0 && len(r.URLs) == 0 {
		return "either ids or urls is required"
	}
	if len(r.IDs) > 0 && len(r.URLs) > 0 {
		return "ids and urls are mutually exclusive"
	}
	return ""
}

type findSimilarRequest struct {
	URL                 string `json:"url"`
	NumResults          int    `json:"num_results"`
	ExcludeSourceDomain *bool  `json:"exclude_source_domain"`
	IncludeSummary      bool   `json:"include_summary"`
	Category            string `json:"category"`
}

func (r *findSimilarRequest) validate() string {
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "url must be a valid http(s) URL"
	}
	return defaultNumResults(&r.NumResults, 10)
}

// excludeSource defaults to true when the field is absent; the interesting
// similar pages are almost never on the source's own domain.
func (r *findSimilarRequest) excludeSource() bool {
	if r.ExcludeSourceDomain == nil {
		return true
	}
	return *r.ExcludeSourceDomain
}

type batchSearchRequest struct {
	Queries    []string `json:"queries"`
	NumResults int      `json:"num_results"`
}

func (r *batchSearchRequest) validate() string {
	if len(r.Queries) == 0 {
		return "queries is required"
	}
	if len(r.Queries) > maxBatchQueries {
		return fmt.Sprintf("maximum %d queries per batch request", maxBatchQueries)
	}
	return defaultNumResults(&r.NumResults, 10)
}

type entitySearchRequest struct {
	Name       string            `json:"name"`
	Anchor     types.AnchorFacts `json:"anchor"`
	NumResults int               `json:"num_results"`
	AutoSelect bool              `json:"auto_select"`
}

func (r *entitySearchRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	return defaultNumResults(&r.NumResults, 15)
}

type entityProfileRequest struct {
	Name       string   `json:"name"`
	ClusterID  string   `json:"cluster_id"`
	ResultIDs  []string `json:"result_ids"`
	URLs       []string `json:"urls"`
	FocusAreas []string `json:"focus_areas"`
}

func (r *entityProfileRequest) validate() string {
	if strings.TrimSpace(r.ClusterID) == "" {
		return "cluster_id is required"
	}
	if len(r.ResultIDs) == 0 && len(r.URLs) == 0 {
		return "either result_ids or urls is required"
	}
	return ""
}

func defaultNumResults(n *int, def int) string {
	if *n == 0 {
		*n = def
	}
	if *n < 1 || *n > maxNumResults {
		return fmt.Sprintf("num_results must be between 1 and %d", maxNumResults)
	}
	return ""
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
