package graph

import (
	"sort"

	"github.com/rohankatakam/depscope/internal/pathutil"
)

// NodeCentrality are the per-module coupling metrics.
//
// DegreeScore is a normalized in-degree, not a random-walk rank:
// in_degree / node_count ranks "how much of the codebase points here"
// and is stable, cheap, and explainable.
type NodeCentrality struct {
	Path        string  `json:"path"`
	InDegree    int     `json:"in_degree"`
	OutDegree   int     `json:"out_degree"`
	DegreeScore float64 `json:"degree_score"`
	Instability float64 `json:"instability"`
	IsHub       bool    `json:"is_hub"`
	IsLeaf      bool    `json:"is_leaf"`
	IsRoot      bool    `json:"is_root"`
}

// hubFraction of the codebase depending on a module marks it a hub.
const hubFraction = 0.1

// Centrality computes coupling metrics for every node, sorted by
// degree score descending then path.
func (g *DependencyGraph) Centrality() []NodeCentrality {
	n := len(g.nodes)
	if n == 0 {
		return []NodeCentrality{}
	}

	out := make([]NodeCentrality, n)
	for i, path := range g.nodes {
		ce := len(g.out[i])
		ca := len(g.in[i])
		nc := NodeCentrality{
			Path:        path,
			InDegree:    ca,
			OutDegree:   ce,
			DegreeScore: float64(ca) / float64(n),
			IsHub:       float64(ca) > hubFraction*float64(n),
			IsLeaf:      ce == 0,
			IsRoot:      ca == 0 && ce > 0,
		}
		if ce+ca > 0 {
			nc.Instability = float64(ce) / float64(ce+ca)
		}
		out[i] = nc
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DegreeScore != out[j].DegreeScore {
			return out[i].DegreeScore > out[j].DegreeScore
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// CentralityFor returns metrics for a single module.
func (g *DependencyGraph) CentralityFor(path string) (NodeCentrality, bool) {
	id, ok := g.index[pathutil.Canonical(path)]
	if !ok {
		return NodeCentrality{}, false
	}
	n := len(g.nodes)
	ce := len(g.out[id])
	ca := len(g.in[id])
	nc := NodeCentrality{
		Path:        g.nodes[id],
		InDegree:    ca,
		OutDegree:   ce,
		DegreeScore: float64(ca) / float64(n),
		IsHub:       float64(ca) > hubFraction*float64(n),
		IsLeaf:      ce == 0,
		IsRoot:      ca == 0 && ce > 0,
	}
	if ce+ca > 0 {
		nc.Instability = float64(ce) / float64(ce+ca)
	}
	return nc, true
}
