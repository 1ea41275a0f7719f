package analytics

import (
	"context"
	"fmt"
	"sort"
)

// HiddenDependency is a pair of modules that change together in
// history but share no import edge in either direction. These usually
// mean duplicated logic, shared formats, or implicit protocols.
type HiddenDependency struct {
	FileA         string  `json:"file_a"`
	FileB         string  `json:"file_b"`
	CoChangeCount int     `json:"co_change_count"`
	Similarity    float64 `json:"similarity"`
}

// HiddenDependencies lists temporally coupled pairs without a
// structural edge, strongest first.
func (a *Analyzer) HiddenDependencies(ctx context.Context, minSimilarity float64) ([]HiddenDependency, error) {
	if minSimilarity <= 0 {
		minSimilarity = DefaultTemporalThreshold
	}
	couplings, err := a.store.TemporalCouplings(ctx, 1, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("load couplings: %w", err)
	}

	hidden := []HiddenDependency{}
	for _, tc := range couplings {
		if a.structurallyLinked(tc.FileA, tc.FileB) {
			continue
		}
		hidden = append(hidden, HiddenDependency{
			FileA:         tc.FileA,
			FileB:         tc.FileB,
			CoChangeCount: tc.CoChangeCount,
			Similarity:    tc.JaccardSimilarity,
		})
	}

	sort.Slice(hidden, func(i, j int) bool {
		if hidden[i].Similarity != hidden[j].Similarity {
			return hidden[i].Similarity > hidden[j].Similarity
		}
		if hidden[i].FileA != hidden[j].FileA {
			return hidden[i].FileA < hidden[j].FileA
		}
		return hidden[i].FileB < hidden[j].FileB
	})
	return hidden, nil
}

func (a *Analyzer) structurallyLinked(x, y string) bool {
	for _, dep := range a.graph.Dependencies(x) {
		if dep == y {
			return true
		}
	}
	for _, dep := range a.graph.Dependencies(y) {
		if dep == x {
			return true
		}
	}
	return false
}
