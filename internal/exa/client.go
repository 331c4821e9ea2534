// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exa is a client for the Exa semantic search API.
// Implements: prd001-search-proxy (R1-R4);
//
//	docs/ARCHITECTURE.md § Search Provider.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/entity-engine/internal/httputil"
	"github.com/pdiddy/entity-engine/pkg/types"
)

// exaAPIBase is the Exa API root. Declared as a var so tests can
// substitute an httptest server.
var exaAPIBase = "https://api.exa.ai"

// ResponseCache stores raw provider response bodies keyed by endpoint and
// request payload. A nil cache disables caching. Only provider bytes are
// cached; everything derived from them is recomputed per request.
type ResponseCache interface {
	Get(endpoint string, request []byte) ([]byte, bool)
	Put(endpoint string, request, response []byte) error
}

// Client calls the Exa API. The zero value is unusable; construct with
// NewClient or fill in APIKey and HTTP.
type Client struct {
	HTTP       *http.Client
	APIKey     string
	UserAgent  string
	MaxRetries int

	// Cache, when non-nil, short-circuits repeated identical calls.
	Cache ResponseCache
}

// NewClient returns a Client configured from cfg.
func NewClient(cfg types.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Query holds the parameters for a search call (R1.1-R1.3).
type Query struct {
	Text               string
	NumResults         int
	Type               string // neural, keyword, or auto
	Category           string
	IncludeDomains     []string
	ExcludeDomains     []string
	StartPublishedDate string // YYYY-MM-DD
	EndPublishedDate   string // YYYY-MM-DD
	IncludeText        bool
	IncludeHighlights  bool
}

// Search runs a semantic search and returns normalized results (R1, R4.1).
func (c *Client) Search(ctx context.Context, q Query) ([]types.SearchResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	numResults := q.NumResults
	if numResults <= 0 {
		numResults = 10
	}

	payload := searchRequest{
		Query:              q.Text,
		Type:               q.Type,
		NumResults:         numResults,
		Category:           q.Category,
		IncludeDomains:     q.IncludeDomains,
		ExcludeDomains:     q.ExcludeDomains,
		StartPublishedDate: q.StartPublishedDate,
		EndPublishedDate:   q.EndPublishedDate,
	}
	if q.IncludeText || q.IncludeHighlights {
		payload.Contents = &contentsSpec{
			Text:       q.IncludeText,
			Highlights: q.IncludeHighlights,
		}
	}

	var sr searchResponse
	if err := c.postJSON(ctx, "/search", payload, &sr); err != nil {
		return nil, err
	}

	return convertResults(sr.Results), nil
}

// postJSON posts payload to the given API path and decodes the JSON
// response into out. When a cache is configured, identical calls are
// answered from stored response bytes.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding exa request: %w", err)
	}

	if c.Cache != nil {
		if cached, ok := c.Cache.Get(path, body); ok {
			if err := json.Unmarshal(cached, out); err == nil {
				return nil
			}
			// A corrupt cache entry falls through to a live call.
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exaAPIBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("exa API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exa API returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading exa response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing exa response: %w", err)
	}

	if c.Cache != nil {
		// Cache write failures never fail the request.
		_ = c.Cache.Put(path, body, data)
	}
	return nil
}

// convertResults normalizes raw API results (R4.1): the domain is derived
// from the URL, and results the provider did not score get a position-based
// relevance score.
func convertResults(raw []exaResult) []types.SearchResult {
	total := len(raw)
	var results []types.SearchResult
	for i, r := range raw {
		res := types.SearchResult{
			ID:            r.ID,
			Title:         r.Title,
			URL:           r.URL,
			Domain:        domainOf(r.URL),
			Highlights:    r.Highlights,
			Author:        r.Author,
			PublishedDate: r.PublishedDate,
			Text:          r.Text,
			Summary:       r.Summary,
		}
		if res.ID == "" {
			res.ID = r.URL
		}

		if r.Score > 0 {
			res.Score = clamp01(r.Score)
		} else if total > 1 {
			res.Score = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			res.Score = 1.0
		}

		results = append(results, res)
	}
	return results
}

// domainOf extracts the lowercased host from a URL, without a leading
// "www." (e.g. "https://www.linkedin.com/in/x" → "linkedin.com").
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Exa API JSON structures.
type searchRequest struct {
	Query              string        `json:"query"`
	Type               string        `json:"type,omitempty"`
	NumResults         int           `json:"numResults,omitempty"`
	Category           string        `json:"category,omitempty"`
	IncludeDomains     []string      `json:"includeDomains,omitempty"`
	ExcludeDomains     []string      `json:"excludeDomains,omitempty"`
	StartPublishedDate string        `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string        `json:"endPublishedDate,omitempty"`
	Contents           *contentsSpec `json:"contents,omitempty"`
}

type contentsSpec struct {
	Text       bool `json:"text,omitempty"`
	Highlights bool `json:"highlights,omitempty"`
	Summary    bool `json:"summary,omitempty"`
}

type searchResponse struct {
	Results          []exaResult `json:"results"`
	AutopromptString string      `json:"autopromptString"`
	RequestID        string      `json:"requestId"`
}

type exaResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Score         float64  `json:"score"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"publishedDate"`
	Text          string   `json:"text"`
	Highlights    []string `json:"highlights"`
	Summary       string   `json:"summary"`
}
