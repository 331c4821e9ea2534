// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import (
	"strings"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// Matches reports whether a result shows evidence for at least one anchor
// field. The check is a case-insensitive substring test of each non-empty
// anchor value against the result's title and highlights, falling back to
// requiring all tokens of the value when the exact phrase is absent.
//
// OR semantics across fields is deliberate: the search query that produced
// these results already embedded every anchor term, so the provider has done
// most of the narrowing. This matcher only excludes clearly unrelated
// stragglers. A result with no evidence is excluded, never an error.
func Matches(result types.SearchResult, anchor types.AnchorFacts) bool {
	values := anchor.Values()
	if len(values) == 0 {
		return false
	}

	haystack := strings.ToLower(result.Title + " " + strings.Join(result.Highlights, " "))
	for _, v := range values {
		if containsValue(haystack, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// containsValue checks for the whole phrase first, then for every token of
// the phrase individually ("Software Engineer" also matches a result saying
// "engineer of software").
func containsValue(haystack, value string) bool {
	if strings.Contains(haystack, value) {
		return true
	}
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}
