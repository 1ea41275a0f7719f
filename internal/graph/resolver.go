// Package graph builds an in-memory dependency graph from stored
// structural facts and provides the traversal, cycle, and centrality
// primitives the analytics layers compose.
package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// ResolvedEdge is an import whose target matched a known module.
type ResolvedEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Line int    `json:"line"`
}

// UnresolvedEdge is an import whose target matched nothing we parsed,
// usually a third-party or standard library reference.
type UnresolvedEdge struct {
	From   string `json:"from"`
	Target string `json:"target"`
	Line   int    `json:"line"`
}

// Resolver maps raw import targets to module paths. Resolution runs in
// two phases: an index is built over all known modules first, then each
// raw edge is matched against it, so resolution order never depends on
// module insertion order.
type Resolver struct {
	byPath   map[string]string
	byName   map[string][]string
	bySuffix map[string][]string
	logger   *logrus.Logger
}

// NewResolver indexes the given module paths.
func NewResolver(modulePaths []string, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Resolver{
		byPath:   make(map[string]string, len(modulePaths)),
		byName:   make(map[string][]string),
		bySuffix: make(map[string][]string),
		logger:   logger,
	}
	for _, p := range modulePaths {
		p = pathutil.Canonical(p)
		r.byPath[p] = p

		stem := pathutil.Stem(p)
		r.byName[stem] = append(r.byName[stem], p)

		// a/b/c.py is also reachable as "b.c" or "b/c" style targets.
		noExt := strings.TrimSuffix(p, pathutil.Ext(p))
		parts := strings.Split(noExt, "/")
		for i := range parts {
			suffix := strings.Join(parts[i:], "/")
			r.bySuffix[suffix] = append(r.bySuffix[suffix], p)
		}
	}
	for _, m := range []map[string][]string{r.byName, r.bySuffix} {
		for k := range m {
			sort.Strings(m[k])
		}
	}
	return r
}

// Resolve maps one raw target to a module path: exact path first, then
// bare logical name, then suffix forms (target plus an extension, or a
// trailing path segment run). Dotted targets are treated as path
// separators before matching. Ambiguous matches resolve to the
// lexicographically first candidate.
func (r *Resolver) Resolve(target string) (string, bool) {
	if target == "" {
		return "", false
	}
	normalized := pathutil.Canonical(strings.ReplaceAll(target, ".", "/"))

	if p, ok := r.byPath[pathutil.Canonical(target)]; ok {
		return p, true
	}
	if candidates, ok := r.byName[normalized]; ok && !strings.Contains(normalized, "/") {
		return candidates[0], true
	}
	for _, ext := range []string{".py", ".go", ".js", ".ts", ".java", ".rb"} {
		if p, ok := r.byPath[normalized+ext]; ok {
			return p, true
		}
	}
	if candidates, ok := r.bySuffix[normalized]; ok {
		return candidates[0], true
	}
	return "", false
}

// ResolveAll splits raw imports into resolved and unresolved edges.
// Duplicate (from, to) pairs collapse to the first occurrence.
func (r *Resolver) ResolveAll(raw []storage.RawImport) ([]ResolvedEdge, []UnresolvedEdge) {
	resolved := []ResolvedEdge{}
	unresolved := []UnresolvedEdge{}
	seen := make(map[string]bool)

	for _, imp := range raw {
		from := pathutil.Canonical(imp.FromPath)
		to, ok := r.Resolve(imp.Target)
		if !ok {
			unresolved = append(unresolved, UnresolvedEdge{From: from, Target: imp.Target, Line: imp.Line})
			continue
		}
		if to == from {
			continue
		}
		key := from + "\x00" + to
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, ResolvedEdge{From: from, To: to, Line: imp.Line})
	}
	return resolved, unresolved
}

// Load reads all modules and imports from the store and assembles the
// dependency graph.
func Load(ctx context.Context, store storage.Store, logger *logrus.Logger) (*DependencyGraph, error) {
	modules, err := store.Modules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	raw, err := store.RawImports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load imports: %w", err)
	}

	paths := make([]string, len(modules))
	for i, m := range modules {
		paths[i] = m.Path
	}
	resolver := NewResolver(paths, logger)
	resolved, unresolved := resolver.ResolveAll(raw)

	g := New(paths)
	for _, e := range resolved {
		g.AddEdge(e.From, e.To)
	}
	g.unresolved = unresolved
	return g, nil
}
