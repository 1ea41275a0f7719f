package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/rohankatakam/depscope/internal/pathutil"
)

// BlastRadius partitions everything a change to one module can touch.
//
// HighRisk modules are reachable both structurally and temporally: the
// import graph says they depend on the target AND history says they
// actually change with it. Hidden modules co-change without any import
// path, the couplings refactoring tools cannot see.
type BlastRadius struct {
	Target      string   `json:"target"`
	HighRisk    []string `json:"high_risk"`
	Structural  []string `json:"structural_only"`
	Temporal    []string `json:"temporal_only"`
	Total       int      `json:"total"`
	HasHistory  bool     `json:"has_history"`
	MaxDepth    int      `json:"max_depth"`
	TemporalMin float64  `json:"temporal_threshold"`
}

// BlastRadius computes the impact partition for target. maxDepth
// bounds the structural walk; negative means unbounded.
func (a *Analyzer) BlastRadius(ctx context.Context, target string, maxDepth int) (*BlastRadius, error) {
	target = pathutil.Canonical(target)

	closure, err := a.graph.TransitiveDependents(ctx, target, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("structural closure for %s: %w", target, err)
	}
	structural := map[string]bool{}
	for _, p := range closure.All() {
		structural[p] = true
	}

	hasHistory, err := a.store.HasHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("check history: %w", err)
	}

	temporal := map[string]bool{}
	if hasHistory {
		couplings, err := a.store.CouplingsForFile(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("temporal couplings for %s: %w", target, err)
		}
		for _, tc := range couplings {
			if tc.JaccardSimilarity < DefaultTemporalThreshold {
				continue
			}
			other := tc.FileA
			if other == target {
				other = tc.FileB
			}
			temporal[other] = true
		}
	}

	radius := &BlastRadius{
		Target:      target,
		HighRisk:    []string{},
		Structural:  []string{},
		Temporal:    []string{},
		HasHistory:  hasHistory,
		MaxDepth:    maxDepth,
		TemporalMin: DefaultTemporalThreshold,
	}
	for p := range structural {
		if temporal[p] {
			radius.HighRisk = append(radius.HighRisk, p)
		} else {
			radius.Structural = append(radius.Structural, p)
		}
	}
	for p := range temporal {
		if !structural[p] {
			radius.Temporal = append(radius.Temporal, p)
		}
	}
	sort.Strings(radius.HighRisk)
	sort.Strings(radius.Structural)
	sort.Strings(radius.Temporal)
	radius.Total = len(radius.HighRisk) + len(radius.Structural) + len(radius.Temporal)
	return radius, nil
}
