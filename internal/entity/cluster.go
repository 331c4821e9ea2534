// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entity groups person-search results into clusters of distinct
// identities, scores each cluster's confidence, and decides when one cluster
// is unambiguous enough to pre-select.
// Implements: prd002-entity-disambiguation (R1-R5);
//
//	docs/ARCHITECTURE.md § Disambiguation.
package entity

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// seedWindow bounds how many leading results contribute domain seeds in the
// heuristic strategy. Results past the window still join their domain's
// group so the partition stays total.
const seedWindow = 20

// mergeThreshold is the highlight-similarity level at which two domain
// groups are considered the same person (Dice coefficient of the token sets).
const mergeThreshold = 0.8

// AnchorClusterID identifies the single cluster produced by anchor-mode
// clustering. Discovery-mode ids are "entity_1".."entity_N" in display
// order. Ids are only meaningful within the response that produced them.
const AnchorClusterID = "anchor_match"

// Builder groups search results into entity clusters.
type Builder struct {
	// Partitioner, when non-nil, is tried before domain grouping in
	// discovery mode. A structurally invalid partition falls back to
	// domain grouping.
	Partitioner Partitioner
}

// Outcome is the complete result of one entity search.
type Outcome struct {
	Name            string                `json:"name" yaml:"name"`
	Clusters        []types.EntityCluster `json:"clusters" yaml:"clusters"`
	TotalCandidates int                   `json:"total_candidates" yaml:"total_candidates"`
	AutoSelected    string                `json:"auto_selected,omitempty" yaml:"auto_selected,omitempty"`
}

// ProviderQuery builds the outbound search query for an entity lookup: the
// quoted name plus every anchor term. Anchors bias retrieval toward the
// intended identity without excluding namesakes.
func ProviderQuery(name string, anchor types.AnchorFacts) string {
	parts := append([]string{fmt.Sprintf("%q", name)}, anchor.Values()...)
	return strings.Join(parts, " ")
}

// Disambiguate builds clusters for the named person and, when requested,
// applies auto-selection. Warnings about degraded strategies are written to
// w. Zero clusters is a valid outcome, not an error.
func (b *Builder) Disambiguate(ctx context.Context, results []types.SearchResult, name string, anchor types.AnchorFacts, autoSelect bool, w io.Writer) Outcome {
	clusters := b.Build(ctx, results, name, anchor, w)
	if clusters == nil {
		clusters = []types.EntityCluster{}
	}

	total := 0
	for _, c := range clusters {
		total += c.TotalResults
	}

	out := Outcome{Name: name, Clusters: clusters, TotalCandidates: total}
	if autoSelect {
		if id, ok := AutoSelect(clusters); ok {
			out.AutoSelected = id
		}
	}
	return out
}

// Build groups results into clusters. With a non-empty anchor it emits at
// most one cluster of results matching the anchor facts. Without one it
// discovers identity groups via the delegated partitioner when configured,
// falling back to domain grouping. Clusters come back ordered by descending
// confidence, then descending candidate count.
func (b *Builder) Build(ctx context.Context, results []types.SearchResult, name string, anchor types.AnchorFacts, w io.Writer) []types.EntityCluster {
	if !anchor.IsEmpty() {
		return anchorCluster(results, name, anchor)
	}
	if len(results) == 0 {
		return nil
	}

	groups := b.delegatedGroups(ctx, results, w)
	if groups == nil {
		groups = heuristicGroups(results)
	}

	clusters := make([]types.EntityCluster, 0, len(groups))
	for _, g := range groups {
		clusters = append(clusters, types.EntityCluster{
			PersonName:   name,
			Description:  g.description,
			Confidence:   Score(len(g.members), g.strength),
			KeyFacts:     g.keyFacts,
			Candidates:   g.members,
			TotalResults: len(g.members),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		ri, rj := confidenceRank(clusters[i].Confidence), confidenceRank(clusters[j].Confidence)
		if ri != rj {
			return ri < rj
		}
		return clusters[i].TotalResults > clusters[j].TotalResults
	})

	// Ids reflect final display order.
	for i := range clusters {
		clusters[i].ClusterID = fmt.Sprintf("entity_%d", i+1)
	}
	return clusters
}

// anchorCluster filters results through the anchor matcher. A non-empty
// match set becomes exactly one cluster; an empty one means zero clusters,
// which the caller reports as "no matches", not as an error.
func anchorCluster(results []types.SearchResult, name string, anchor types.AnchorFacts) []types.EntityCluster {
	var members []types.SearchResult
	for _, r := range results {
		if Matches(r, anchor) {
			members = append(members, r)
		}
	}
	if len(members) == 0 {
		return nil
	}

	return []types.EntityCluster{{
		ClusterID:    AnchorClusterID,
		PersonName:   name,
		Description:  anchor.Description(),
		Confidence:   Score(len(members), types.StrengthAnchor),
		KeyFacts:     anchor.Values(),
		Candidates:   members,
		TotalResults: len(members),
	}}
}

// group is an identity group before scoring and id assignment.
type group struct {
	description string
	keyFacts    []string
	members     []types.SearchResult
	strength    types.MatchStrength
}

// delegatedGroups asks the configured partitioner to split the results and
// validates the partition. Any failure (call error, unparseable response,
// dropped or duplicated ids) is reported to w and answered with nil so the
// caller falls back to domain grouping. The fallback is never visible to
// the API caller as an error.
func (b *Builder) delegatedGroups(ctx context.Context, results []types.SearchResult, w io.Writer) []group {
	if b.Partitioner == nil {
		return nil
	}

	parts, err := b.Partitioner.Partition(ctx, results)
	if err != nil {
		fmt.Fprintf(w, "warning: delegated partition failed: %v; falling back to domain grouping\n", err)
		return nil
	}
	if err := validatePartition(parts, results); err != nil {
		fmt.Fprintf(w, "warning: delegated partition invalid: %v; falling back to domain grouping\n", err)
		return nil
	}

	byID := make(map[string]int, len(results))
	for i, r := range results {
		byID[r.ID] = i
	}

	groups := make([]group, 0, len(parts))
	for _, p := range parts {
		membership := make(map[string]bool, len(p.ResultIDs))
		for _, id := range p.ResultIDs {
			membership[id] = true
		}
		// Members keep provider relevance order.
		var members []types.SearchResult
		for _, r := range results {
			if membership[r.ID] {
				members = append(members, r)
			}
		}
		groups = append(groups, group{
			description: p.Description,
			keyFacts:    p.KeyFacts,
			members:     members,
			strength:    p.strength(),
		})
	}
	return groups
}

// validatePartition checks structural well-formedness: at least one group,
// no unknown ids, and every input id in exactly one group.
func validatePartition(parts []PartitionGroup, results []types.SearchResult) error {
	if len(parts) == 0 {
		return fmt.Errorf("no groups returned")
	}

	known := make(map[string]bool, len(results))
	for _, r := range results {
		known[r.ID] = true
	}

	seen := make(map[string]bool, len(results))
	for _, p := range parts {
		for _, id := range p.ResultIDs {
			if !known[id] {
				return fmt.Errorf("unknown result id %q", id)
			}
			if seen[id] {
				return fmt.Errorf("result id %q assigned twice", id)
			}
			seen[id] = true
		}
	}

	for _, r := range results {
		if !seen[r.ID] {
			return fmt.Errorf("result id %q missing from partition", r.ID)
		}
	}
	return nil
}

// heuristicGroups groups results by domain and merges groups whose highlight
// text nearly agrees. Domains seen in the first seedWindow results seed the
// group order; later results still join their domain's group, so every
// result lands in exactly one group. The strategy is deliberately coarse:
// it prefers splitting one person across domains over silently merging two
// different people.
func heuristicGroups(results []types.SearchResult) []group {
	index := make(map[string]int)
	var groups []group

	add := func(r types.SearchResult) {
		key := r.Domain
		if key == "" {
			// A result with no parseable domain stays alone rather than
			// pooling with other unknowns.
			key = r.URL
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{strength: types.StrengthHeuristic})
		}
		groups[i].members = append(groups[i].members, r)
	}

	seedEnd := len(results)
	if seedEnd > seedWindow {
		seedEnd = seedWindow
	}
	for _, r := range results[:seedEnd] {
		add(r)
	}
	for _, r := range results[seedEnd:] {
		add(r)
	}

	groups = mergeSimilar(groups)

	for i := range groups {
		domains := memberDomains(groups[i].members)
		groups[i].keyFacts = domains
		groups[i].description = "Results from " + strings.Join(domains, ", ")
	}
	return groups
}

// mergeSimilar folds together groups whose highlight token sets overlap at
// or above mergeThreshold. Greedy in group order: each group merges into the
// first earlier group it resembles.
func mergeSimilar(groups []group) []group {
	var merged []group
	tokens := make([]map[string]bool, 0, len(groups))

	for _, g := range groups {
		gt := highlightTokens(g.members)
		target := -1
		for i := range merged {
			if diceSimilarity(tokens[i], gt) >= mergeThreshold {
				target = i
				break
			}
		}
		if target == -1 {
			merged = append(merged, g)
			tokens = append(tokens, gt)
			continue
		}
		merged[target].members = append(merged[target].members, g.members...)
		for tok := range gt {
			tokens[target][tok] = true
		}
	}
	return merged
}

// highlightTokens collects the lowercase token set of all highlights in a
// member list.
func highlightTokens(members []types.SearchResult) map[string]bool {
	set := make(map[string]bool)
	for _, m := range members {
		for _, h := range m.Highlights {
			for _, tok := range strings.Fields(strings.ToLower(h)) {
				set[strings.Trim(tok, ".,;:!?\"'()")] = true
			}
		}
	}
	delete(set, "")
	return set
}

// diceSimilarity is 2|A∩B| / (|A|+|B|). Empty sets never match: two groups
// without highlights share no evidence of being the same person.
func diceSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if b[tok] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}

// memberDomains returns the distinct domains of members in first-seen order.
func memberDomains(members []types.SearchResult) []string {
	seen := make(map[string]bool)
	var domains []string
	for _, m := range members {
		d := m.Domain
		if d == "" {
			d = "unknown"
		}
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}
	return domains
}
