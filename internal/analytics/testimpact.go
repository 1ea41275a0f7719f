package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/pathutil"
)

// TestImpact lists the test modules likely to exercise a changed file.
type TestImpact struct {
	Target    string   `json:"target"`
	ByName    []string `json:"by_naming_convention"`
	ByImport  []string `json:"by_reverse_dependency"`
	AllImpact []string `json:"all"`
}

// TestImpactFor finds tests for target two ways: naming conventions
// (test_<stem> and <stem>_test siblings anywhere in the tree) and
// reverse dependencies whose path mentions test.
func (a *Analyzer) TestImpactFor(ctx context.Context, target string) (*TestImpact, error) {
	target = pathutil.Canonical(target)
	if !a.graph.Has(target) {
		return nil, fmt.Errorf("test impact for %s: %w", target, graph.ErrUnknownModule)
	}

	stem := pathutil.Stem(target)
	impact := &TestImpact{Target: target, ByName: []string{}, ByImport: []string{}}
	seen := map[string]bool{}

	for _, node := range a.graph.Nodes() {
		nodeStem := pathutil.Stem(node)
		if nodeStem == "test_"+stem || nodeStem == stem+"_test" {
			impact.ByName = append(impact.ByName, node)
			seen[node] = true
		}
	}

	closure, err := a.graph.TransitiveDependents(ctx, target, -1)
	if err != nil {
		return nil, err
	}
	for _, node := range closure.All() {
		if !isTestPath(node) || seen[node] {
			continue
		}
		impact.ByImport = append(impact.ByImport, node)
		seen[node] = true
	}

	impact.AllImpact = append(append([]string{}, impact.ByName...), impact.ByImport...)
	sort.Strings(impact.ByName)
	sort.Strings(impact.ByImport)
	sort.Strings(impact.AllImpact)
	return impact, nil
}

func isTestPath(p string) bool {
	stem := pathutil.Stem(p)
	if strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "tests" || seg == "test" {
			return true
		}
	}
	return false
}
