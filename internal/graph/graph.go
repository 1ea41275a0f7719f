package graph

import (
	"sort"

	"github.com/rohankatakam/depscope/internal/pathutil"
)

// DependencyGraph is an immutable-after-load adjacency structure over
// module paths. Nodes are dense integer ids into the nodes slice;
// public methods speak paths.
type DependencyGraph struct {
	nodes      []string
	index      map[string]int
	out        [][]int
	in         [][]int
	unresolved []UnresolvedEdge
}

// New creates a graph containing the given nodes and no edges.
func New(paths []string) *DependencyGraph {
	g := &DependencyGraph{
		index: make(map[string]int, len(paths)),
	}
	for _, p := range paths {
		p = pathutil.Canonical(p)
		if _, ok := g.index[p]; ok {
			continue
		}
		g.index[p] = len(g.nodes)
		g.nodes = append(g.nodes, p)
	}
	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	return g
}

// AddEdge records a directed dependency. Unknown endpoints are added
// as nodes. Self-loops and duplicates are ignored.
func (g *DependencyGraph) AddEdge(from, to string) {
	f := g.ensure(pathutil.Canonical(from))
	t := g.ensure(pathutil.Canonical(to))
	if f == t {
		return
	}
	for _, existing := range g.out[f] {
		if existing == t {
			return
		}
	}
	g.out[f] = append(g.out[f], t)
	g.in[t] = append(g.in[t], f)
}

func (g *DependencyGraph) ensure(p string) int {
	if id, ok := g.index[p]; ok {
		return id
	}
	id := len(g.nodes)
	g.index[p] = id
	g.nodes = append(g.nodes, p)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// Has reports whether the node exists.
func (g *DependencyGraph) Has(path string) bool {
	_, ok := g.index[pathutil.Canonical(path)]
	return ok
}

// Nodes returns all node paths in insertion order.
func (g *DependencyGraph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Size returns the node count.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}

// EdgeCount returns the number of resolved directed edges.
func (g *DependencyGraph) EdgeCount() int {
	n := 0
	for _, adj := range g.out {
		n += len(adj)
	}
	return n
}

// Dependencies returns the direct forward neighbors of path, sorted.
func (g *DependencyGraph) Dependencies(path string) []string {
	return g.neighbors(path, g.out)
}

// Dependents returns the direct reverse neighbors of path, sorted.
func (g *DependencyGraph) Dependents(path string) []string {
	return g.neighbors(path, g.in)
}

func (g *DependencyGraph) neighbors(path string, adj [][]int) []string {
	id, ok := g.index[pathutil.Canonical(path)]
	if !ok {
		return nil
	}
	out := make([]string, len(adj[id]))
	for i, n := range adj[id] {
		out[i] = g.nodes[n]
	}
	sort.Strings(out)
	return out
}

// Unresolved returns the import edges that matched no known module.
func (g *DependencyGraph) Unresolved() []UnresolvedEdge {
	out := make([]UnresolvedEdge, len(g.unresolved))
	copy(out, g.unresolved)
	return out
}
