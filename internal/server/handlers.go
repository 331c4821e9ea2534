// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/pdiddy/entity-engine/internal/entity"
	"github.com/pdiddy/entity-engine/internal/exa"
	"github.com/pdiddy/entity-engine/internal/profile"
	"github.com/pdiddy/entity-engine/pkg/types"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Name:    serviceName,
		Version: s.version,
		Status:  "running",
		Endpoints: map[string]string{
			"search":         "/api/v1/search",
			"contents":       "/api/v1/contents",
			"find_similar":   "/api/v1/find-similar",
			"batch_search":   "/api/v1/batch-search",
			"entity_search":  "/api/v1/entity/search",
			"entity_profile": "/api/v1/entity/profile",
			"health":         "/health",
		},
	})
}

// handleHealth reports configuration state without touching upstreams, so
// probes stay cheap and never consume provider quota.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if s.provider == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:              status,
		Name:                serviceName,
		Version:             s.version,
		ExaConfigured:       s.provider != nil,
		AnthropicConfigured: s.llmEnabled,
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	results, err := s.provider.Search(r.Context(), exa.Query{
		Text:               req.Query,
		NumResults:         req.NumResults,
		Type:               req.SearchType,
		Category:           req.Category,
		IncludeDomains:     req.IncludeDomains,
		ExcludeDomains:     req.ExcludeDomains,
		StartPublishedDate: req.StartPublishedDate,
		EndPublishedDate:   req.EndPublishedDate,
		IncludeText:        req.IncludeText,
		IncludeHighlights:  req.IncludeHighlights,
	})
	if err != nil {
		s.log.Error("search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, "search provider request failed")
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: nonNil(results), TotalResults: len(results)})
}

func (s *Server) handleContents(w http.ResponseWriter, r *http.Request) {
	var req contentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	items, err := s.provider.Contents(r.Context(), exa.ContentsRequest{
		IDs:        req.IDs,
		URLs:       req.URLs,
		Text:       req.Text,
		Highlights: req.Highlights,
		Summary:    req.Summary,
	})
	if err != nil {
		s.log.Error("contents failed", "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, "content retrieval failed")
		return
	}
	if items == nil {
		items = []exa.ContentItem{}
	}
	writeJSON(w, http.StatusOK, contentsResponse{Contents: items, Total: len(items)})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	var req findSimilarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	results, err := s.provider.FindSimilar(r.Context(), exa.SimilarQuery{
		URL:                 req.URL,
		NumResults:          req.NumResults,
		ExcludeSourceDomain: req.excludeSource(),
		IncludeSummary:      req.IncludeSummary,
		Category:            req.Category,
	})
	if err != nil {
		s.log.Error("find similar failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, "find similar request failed")
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: nonNil(results), TotalResults: len(results)})
}

// handleBatchSearch fans a batch out as sequential provider calls. Each
// query succeeds or fails on its own; one bad query never voids the batch.
func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	var req batchSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	items := make([]batchSearchItem, 0, len(req.Queries))
	for _, q := range req.Queries {
		results, err := s.provider.Search(r.Context(), exa.Query{Text: q, NumResults: req.NumResults})
		if err != nil {
			s.log.Error("batch query failed", "query", q, "error", err)
			items = append(items, batchSearchItem{Query: q, Status: "error", Error: err.Error()})
			continue
		}
		items = append(items, batchSearchItem{
			Query:  q,
			Status: "success",
			Data:   &searchResponse{Results: nonNil(results), TotalResults: len(results)},
		})
	}
	writeJSON(w, http.StatusOK, batchSearchResponse{Results: items})
}

func (s *Server) handleEntitySearch(w http.ResponseWriter, r *http.Request) {
	var req entitySearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	results, err := s.provider.Search(r.Context(), exa.Query{
		Text:              entity.ProviderQuery(req.Name, req.Anchor),
		NumResults:        req.NumResults,
		IncludeHighlights: true,
	})
	if err != nil {
		s.log.Error("entity search failed", "name", req.Name, "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, "search provider request failed")
		return
	}

	out := s.entities.Disambiguate(r.Context(), results, req.Name, req.Anchor, req.AutoSelect, s.warnWriter())
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEntityProfile(w http.ResponseWriter, r *http.Request) {
	var req entityProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidation, msg)
		return
	}

	res, err := s.profiles.Assemble(r.Context(), profile.Request{
		Name:       req.Name,
		ClusterID:  req.ClusterID,
		ResultIDs:  req.ResultIDs,
		URLs:       req.URLs,
		FocusAreas: req.FocusAreas,
	}, s.warnWriter())
	if err != nil {
		if errors.Is(err, profile.ErrNoContent) {
			writeError(w, http.StatusBadGateway, codeNoContent, err.Error())
			return
		}
		s.log.Error("profile assembly failed", "cluster_id", req.ClusterID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "profile assembly failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func nonNil(results []types.SearchResult) []types.SearchResult {
	if results == nil {
		return []types.SearchResult{}
	}
	return results
}

type rootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

type healthResponse struct {
	Status              string `json:"status"`
	Name                string `json:"name"`
	Version             string `json:"version"`
	ExaConfigured       bool   `json:"exa_configured"`
	AnthropicConfigured bool   `json:"anthropic_configured"`
	Timestamp           string `json:"timestamp"`
}

type searchResponse struct {
	Results      []types.SearchResult `json:"results"`
	TotalResults int                  `json:"total_results"`
}

type contentsResponse struct {
	Contents []exa.ContentItem `json:"contents"`
	Total    int               `json:"total"`
}

type batchSearchResponse struct {
	Results []batchSearchItem `json:"results"`
}

type batchSearchItem struct {
	Query  string          `json:"query"`
	Status string          `json:"status"`
	Data   *searchResponse `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}
