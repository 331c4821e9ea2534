// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import "github.com/pdiddy/entity-engine/pkg/types"

// AutoSelect returns the id of the one cluster that can safely be chosen
// without human review: exactly one cluster has high confidence, and it is
// either the only cluster or holds at least twice as many candidates as
// every other cluster. In every other case it returns false; guessing
// between comparably strong clusters is never acceptable.
func AutoSelect(clusters []types.EntityCluster) (string, bool) {
	high := -1
	for i, c := range clusters {
		if c.Confidence != types.ConfidenceHigh {
			continue
		}
		if high != -1 {
			return "", false
		}
		high = i
	}
	if high == -1 {
		return "", false
	}
	if len(clusters) == 1 {
		return clusters[high].ClusterID, true
	}

	for i, c := range clusters {
		if i == high {
			continue
		}
		if clusters[high].TotalResults < 2*c.TotalResults {
			return "", false
		}
	}
	return clusters[high].ClusterID, true
}
