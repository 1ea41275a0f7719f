package graph

import (
	"sort"

	"github.com/rohankatakam/depscope/internal/pathutil"
)

// Layer groups modules by their top-level directory, the cheapest
// useful proxy for architectural layering.
type Layer struct {
	Name      string   `json:"name"`
	Modules   []string `json:"modules"`
	DependsOn []string `json:"depends_on"`
}

// LayerReport is the directory-level view of the graph.
type LayerReport struct {
	Layers        []Layer     `json:"layers"`
	CircularPairs [][2]string `json:"circular_pairs"`
}

// Layers aggregates module edges up to top-level-directory edges and
// reports layer pairs that depend on each other in both directions.
func (g *DependencyGraph) Layers() *LayerReport {
	modulesByLayer := map[string][]string{}
	for _, p := range g.nodes {
		layer := pathutil.TopSegment(p)
		modulesByLayer[layer] = append(modulesByLayer[layer], p)
	}

	deps := map[string]map[string]bool{}
	for from, adj := range g.out {
		fromLayer := pathutil.TopSegment(g.nodes[from])
		for _, to := range adj {
			toLayer := pathutil.TopSegment(g.nodes[to])
			if fromLayer == toLayer {
				continue
			}
			if deps[fromLayer] == nil {
				deps[fromLayer] = map[string]bool{}
			}
			deps[fromLayer][toLayer] = true
		}
	}

	names := make([]string, 0, len(modulesByLayer))
	for name := range modulesByLayer {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &LayerReport{}
	for _, name := range names {
		mods := modulesByLayer[name]
		sort.Strings(mods)
		layer := Layer{Name: name, Modules: mods}
		for target := range deps[name] {
			layer.DependsOn = append(layer.DependsOn, target)
		}
		sort.Strings(layer.DependsOn)
		report.Layers = append(report.Layers, layer)
	}

	for _, a := range names {
		for b := range deps[a] {
			if a < b && deps[b][a] {
				report.CircularPairs = append(report.CircularPairs, [2]string{a, b})
			}
		}
	}
	sort.Slice(report.CircularPairs, func(i, j int) bool {
		return report.CircularPairs[i][0] < report.CircularPairs[j][0]
	})
	return report
}
