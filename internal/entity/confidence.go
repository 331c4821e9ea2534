// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import "github.com/pdiddy/entity-engine/pkg/types"

// Score maps a cluster's candidate count and match strength to a confidence
// label. The thresholds are fixed: callers depend on identical inputs always
// producing identical labels.
//
// An empty cluster is always low. A partition the LLM itself reported as low
// confidence stays low regardless of size. Three or more candidates backed
// by anchor evidence or a high-confidence partition are high. Everything
// else is medium.
func Score(count int, strength types.MatchStrength) types.Confidence {
	if count == 0 {
		return types.ConfidenceLow
	}
	if strength == types.StrengthLLMLow {
		return types.ConfidenceLow
	}
	if count >= 3 && (strength == types.StrengthAnchor || strength == types.StrengthLLMHigh) {
		return types.ConfidenceHigh
	}
	return types.ConfidenceMedium
}

// confidenceRank orders labels for cluster sorting, strongest first.
func confidenceRank(c types.Confidence) int {
	switch c {
	case types.ConfidenceHigh:
		return 0
	case types.ConfidenceMedium:
		return 1
	default:
		return 2
	}
}
