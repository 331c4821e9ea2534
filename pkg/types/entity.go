// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// AnchorFacts holds the biographical hints a caller supplies to narrow an
// entity search. Any field may be empty; when all are empty the search runs
// in discovery mode.
type AnchorFacts struct {
	// Role is a job title or function (e.g. "Software Engineer").
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Company is an employer or organization name.
	Company string `json:"company,omitempty" yaml:"company,omitempty"`

	// Location is a city, region, or country.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// IsEmpty reports whether no anchor field carries a usable value.
func (a AnchorFacts) IsEmpty() bool {
	return len(a.Values()) == 0
}

// Values returns the non-empty anchor fields, trimmed, in role, company,
// location order.
func (a AnchorFacts) Values() []string {
	var vals []string
	for _, v := range []string{a.Role, a.Company, a.Location} {
		if t := strings.TrimSpace(v); t != "" {
			vals = append(vals, t)
		}
	}
	return vals
}

// Description joins the non-empty anchor fields for display
// (e.g. "Software Engineer, Hubtel").
func (a AnchorFacts) Description() string {
	return strings.Join(a.Values(), ", ")
}

// Confidence labels how strongly a cluster's candidates appear to refer to
// one real person.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchStrength records which signal justified a cluster's membership. It is
// one input to the confidence policy and never leaves the service.
type MatchStrength string

const (
	// StrengthAnchor marks clusters built by anchor-fact matching.
	StrengthAnchor MatchStrength = "anchor"

	// StrengthHeuristic marks clusters built by domain grouping, merged or not.
	StrengthHeuristic MatchStrength = "heuristic"

	// StrengthLLMHigh, StrengthLLMMedium, and StrengthLLMLow carry the
	// delegated partitioner's own confidence report for a group.
	StrengthLLMHigh   MatchStrength = "llm_high"
	StrengthLLMMedium MatchStrength = "llm_medium"
	StrengthLLMLow    MatchStrength = "llm_low"
)

// EntityCluster groups search results believed to refer to one distinct
// person. Clusters are built once per request and never mutated afterwards;
// cluster ids are opaque tokens meaningful only within the response that
// produced them.
type EntityCluster struct {
	// ClusterID identifies the cluster within one response. Anchor-mode
	// clustering always emits "anchor_match"; discovery mode emits
	// "entity_1".."entity_N" in final display order.
	ClusterID string `json:"cluster_id" yaml:"cluster_id"`

	// PersonName is the name the caller searched for.
	PersonName string `json:"person_name" yaml:"person_name"`

	// Description summarizes what distinguishes this cluster.
	Description string `json:"description" yaml:"description"`

	// Confidence is assigned by the confidence policy at build time.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// KeyFacts lists distinguishing evidence: anchor values in anchor mode,
	// source domains in heuristic mode, partitioner-reported facts in
	// delegated mode.
	KeyFacts []string `json:"key_facts" yaml:"key_facts"`

	// Candidates holds the member results in provider relevance order.
	Candidates []SearchResult `json:"candidates" yaml:"candidates"`

	// TotalResults always equals len(Candidates).
	TotalResults int `json:"total_results" yaml:"total_results"`
}
