package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/rohankatakam/depscope/internal/pathutil"
)

// ErrUnknownModule is returned when a traversal starts from a path the
// graph has never seen.
var ErrUnknownModule = fmt.Errorf("module not found in dependency graph")

// Closure is the result of a bounded transitive reachability walk.
// ByDepth[0] holds direct neighbors; the start node is never included.
type Closure struct {
	Start   string     `json:"start"`
	ByDepth [][]string `json:"by_depth"`
	Total   int        `json:"total"`
}

// All flattens the depth buckets in breadth-first order.
func (c *Closure) All() []string {
	out := make([]string, 0, c.Total)
	for _, bucket := range c.ByDepth {
		out = append(out, bucket...)
	}
	return out
}

// Contains reports whether path appears at any depth.
func (c *Closure) Contains(path string) bool {
	p := pathutil.Canonical(path)
	for _, bucket := range c.ByDepth {
		for _, node := range bucket {
			if node == p {
				return true
			}
		}
	}
	return false
}

// TransitiveDependencies walks forward edges from start, up to
// maxDepth levels. A negative maxDepth walks until the frontier is
// exhausted.
func (g *DependencyGraph) TransitiveDependencies(ctx context.Context, start string, maxDepth int) (*Closure, error) {
	return g.walk(ctx, start, maxDepth, g.out)
}

// TransitiveDependents walks reverse edges from start; its result is
// the set of modules a change to start can reach.
func (g *DependencyGraph) TransitiveDependents(ctx context.Context, start string, maxDepth int) (*Closure, error) {
	return g.walk(ctx, start, maxDepth, g.in)
}

// walk is an iterative BFS. The frontier slice is the worklist; a node
// enters visited when enqueued, so each node lands in exactly one
// depth bucket, the shallowest.
func (g *DependencyGraph) walk(ctx context.Context, start string, maxDepth int, adj [][]int) (*Closure, error) {
	startPath := pathutil.Canonical(start)
	startID, ok := g.index[startPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, start)
	}

	closure := &Closure{Start: startPath}
	visited := make([]bool, len(g.nodes))
	visited[startID] = true

	frontier := []int{startID}
	for depth := 0; len(frontier) > 0 && (maxDepth < 0 || depth < maxDepth); depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := []int{}
		for _, node := range frontier {
			for _, nb := range adj[node] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				next = append(next, nb)
			}
		}
		if len(next) == 0 {
			break
		}
		bucket := make([]string, len(next))
		for i, n := range next {
			bucket[i] = g.nodes[n]
		}
		sort.Strings(bucket)
		closure.ByDepth = append(closure.ByDepth, bucket)
		closure.Total += len(bucket)
		frontier = next
	}
	return closure, nil
}
