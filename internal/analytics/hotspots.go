package analytics

import (
	"context"
	"fmt"
	"sort"
)

// Hotspot is a module scoring high on the product of complexity,
// churn, and coupling. Any single dimension can be forgiven; all three
// together is where incidents live.
type Hotspot struct {
	Path       string  `json:"path"`
	Complexity int     `json:"complexity"`
	Churn      int     `json:"churn"`
	InDegree   int     `json:"in_degree"`
	OutDegree  int     `json:"out_degree"`
	Score      float64 `json:"score"`
}

// Hotspots ranks modules by complexity * churn * (out + in + 1) and
// returns the top limit entries. Modules missing any dimension score
// zero and are omitted.
func (a *Analyzer) Hotspots(ctx context.Context, limit int) ([]Hotspot, error) {
	complexities, err := a.store.ModuleComplexities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load complexities: %w", err)
	}
	churn, err := a.store.ChurnMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load churn: %w", err)
	}

	churnByPath := make(map[string]int, len(churn))
	for _, c := range churn {
		churnByPath[c.FilePath] = c.TotalChurn
	}

	hotspots := []Hotspot{}
	for _, mc := range complexities {
		totalChurn := churnByPath[mc.Path]
		if totalChurn == 0 || mc.TotalComplexity == 0 {
			continue
		}
		nc, ok := a.graph.CentralityFor(mc.Path)
		if !ok {
			continue
		}
		h := Hotspot{
			Path:       mc.Path,
			Complexity: mc.TotalComplexity,
			Churn:      totalChurn,
			InDegree:   nc.InDegree,
			OutDegree:  nc.OutDegree,
		}
		h.Score = float64(h.Complexity) * float64(h.Churn) * float64(h.OutDegree+h.InDegree+1)
		hotspots = append(hotspots, h)
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Score != hotspots[j].Score {
			return hotspots[i].Score > hotspots[j].Score
		}
		return hotspots[i].Path < hotspots[j].Path
	})
	if limit > 0 && len(hotspots) > limit {
		hotspots = hotspots[:limit]
	}
	return hotspots, nil
}
