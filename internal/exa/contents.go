// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exa

import (
	"context"
	"fmt"
)

// ContentsRequest asks the provider for page contents of earlier results.
// Exactly one of IDs or URLs must be set (R2.1). When no content kind is
// requested, Text defaults to true.
type ContentsRequest struct {
	IDs  []string
	URLs []string

	Text       bool
	Highlights bool
	Summary    bool

	// SummaryQuery steers the provider-generated summary and implies
	// Summary (e.g. "Create a comprehensive summary focusing on: career").
	SummaryQuery string

	// TextMaxChars caps returned text length and implies Text.
	TextMaxChars int
}

// ContentItem is one entry returned by the contents endpoint.
type ContentItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Text          string   `json:"text,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}

// Contents fetches text, highlights, or summaries for prior results (R2).
func (c *Client) Contents(ctx context.Context, req ContentsRequest) ([]ContentItem, error) {
	if len(req.IDs) == 0 && len(req.URLs) == 0 {
		return nil, fmt.Errorf("either ids or urls must be provided")
	}
	if len(req.IDs) > 0 && len(req.URLs) > 0 {
		return nil, fmt.Errorf("ids and urls are mutually exclusive")
	}

	payload := contentsRequest{IDs: req.IDs, URLs: req.URLs}
	switch {
	case req.TextMaxChars > 0:
		payload.Text = textSpec{MaxCharacters: req.TextMaxChars}
	case req.Text:
		payload.Text = true
	}
	if req.Highlights {
		payload.Highlights = true
	}
	switch {
	case req.SummaryQuery != "":
		payload.Summary = summarySpec{Query: req.SummaryQuery}
	case req.Summary:
		payload.Summary = true
	}
	if payload.Text == nil && payload.Highlights == nil && payload.Summary == nil {
		payload.Text = true
	}

	var cr contentsResponse
	if err := c.postJSON(ctx, "/contents", payload, &cr); err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, len(cr.Results))
	for _, r := range cr.Results {
		item := ContentItem{
			ID:            r.ID,
			URL:           r.URL,
			Title:         r.Title,
			Text:          r.Text,
			Highlights:    r.Highlights,
			Summary:       r.Summary,
			Author:        r.Author,
			PublishedDate: r.PublishedDate,
		}
		if item.ID == "" {
			item.ID = r.URL
		}
		items = append(items, item)
	}
	return items, nil
}

// The text and summary keys accept either a bare true or an options object,
// so the wire struct carries them as any.
type contentsRequest struct {
	IDs        []string `json:"ids,omitempty"`
	URLs       []string `json:"urls,omitempty"`
	Text       any      `json:"text,omitempty"`
	Highlights any      `json:"highlights,omitempty"`
	Summary    any      `json:"summary,omitempty"`
}

type textSpec struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

type summarySpec struct {
	Query string `json:"query,omitempty"`
}

type contentsResponse struct {
	Results   []exaResult `json:"results"`
	RequestID string      `json:"requestId"`
}
