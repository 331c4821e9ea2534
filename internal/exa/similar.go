// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exa

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// SimilarQuery holds the parameters for a find-similar call (R3).
type SimilarQuery struct {
	URL                 string
	NumResults          int
	ExcludeSourceDomain bool
	IncludeSummary      bool
	Category            string
	StartPublishedDate  string
	EndPublishedDate    string
}

// FindSimilar returns pages semantically similar to the given URL. Used for
// similar-entity discovery: point it at a person's profile page and it
// surfaces comparable people (R3.1-R3.3).
func (c *Client) FindSimilar(ctx context.Context, q SimilarQuery) ([]types.SearchResult, error) {
	u, err := url.Parse(strings.TrimSpace(q.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", q.URL)
	}

	numResults := q.NumResults
	if numResults <= 0 {
		numResults = 10
	}

	payload := similarRequest{
		URL:                 u.String(),
		NumResults:          numResults,
		ExcludeSourceDomain: q.ExcludeSourceDomain,
		Category:            q.Category,
		StartPublishedDate:  q.StartPublishedDate,
		EndPublishedDate:    q.EndPublishedDate,
	}
	if q.IncludeSummary {
		payload.Contents = &contentsSpec{Summary: true}
	}

	var sr searchResponse
	if err := c.postJSON(ctx, "/findSimilar", payload, &sr); err != nil {
		return nil, err
	}
	return convertResults(sr.Results), nil
}

type similarRequest struct {
	URL                 string        `json:"url"`
	NumResults          int           `json:"numResults,omitempty"`
	ExcludeSourceDomain bool          `json:"excludeSourceDomain,omitempty"`
	Category            string        `json:"category,omitempty"`
	StartPublishedDate  string        `json:"startPublishedDate,omitempty"`
	EndPublishedDate    string        `json:"endPublishedDate,omitempty"`
	Contents            *contentsSpec `json:"contents,omitempty"`
}
