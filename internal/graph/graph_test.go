package graph

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func buildGraph(edges [][2]string, extra ...string) *DependencyGraph {
	g := New(extra)
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := New(nil)
	g.AddEdge("a.py", "b.py")
	g.AddEdge("a.py", "b.py")
	g.AddEdge("a.py", "a.py")

	if got := g.EdgeCount(); got != 1 {
		t.Fatalf("expected 1 edge, got %d", got)
	}
	if deps := g.Dependencies("a.py"); len(deps) != 1 || deps[0] != "b.py" {
		t.Fatalf("unexpected dependencies: %v", deps)
	}
}

func TestTransitiveDependenciesDepthBuckets(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "b.py"},
		{"a.py", "c.py"},
		{"b.py", "d.py"},
		{"c.py", "d.py"},
		{"d.py", "e.py"},
	})

	closure, err := g.TransitiveDependencies(context.Background(), "a.py", -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{
		{"b.py", "c.py"},
		{"d.py"},
		{"e.py"},
	}
	if len(closure.ByDepth) != len(want) {
		t.Fatalf("expected %d depth buckets, got %d", len(want), len(closure.ByDepth))
	}
	for depth, bucket := range want {
		got := closure.ByDepth[depth]
		if len(got) != len(bucket) {
			t.Fatalf("depth %d: expected %v, got %v", depth, bucket, got)
		}
		for i := range bucket {
			if got[i] != bucket[i] {
				t.Fatalf("depth %d: expected %v, got %v", depth, bucket, got)
			}
		}
	}
	if closure.Total != 4 {
		t.Fatalf("expected total 4, got %d", closure.Total)
	}
	if closure.Contains("a.py") {
		t.Fatal("start node must not appear in its own closure")
	}
}

func TestTransitiveDependenciesMaxDepth(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "b.py"},
		{"b.py", "c.py"},
		{"c.py", "d.py"},
	})

	tests := []struct {
		name     string
		maxDepth int
		total    int
	}{
		{"depth one", 1, 1},
		{"depth two", 2, 2},
		{"unbounded", -1, 3},
		{"beyond graph", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closure, err := g.TransitiveDependencies(context.Background(), "a.py", tt.maxDepth)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if closure.Total != tt.total {
				t.Fatalf("expected total %d, got %d", tt.total, closure.Total)
			}
		})
	}
}

func TestTransitiveDependenciesCycleTerminates(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "b.py"},
		{"b.py", "c.py"},
		{"c.py", "a.py"},
	})

	closure, err := g.TransitiveDependencies(context.Background(), "a.py", -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closure.Total != 2 {
		t.Fatalf("expected 2 reachable modules, got %d", closure.Total)
	}
	if closure.Contains("a.py") {
		t.Fatal("cycle walk must not revisit the start node")
	}
}

func TestTransitiveDependentsReverse(t *testing.T) {
	g := buildGraph([][2]string{
		{"api.py", "core.py"},
		{"cli.py", "core.py"},
		{"core.py", "util.py"},
	})

	closure, err := g.TransitiveDependents(context.Background(), "util.py", -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := closure.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 dependents, got %v", all)
	}
	if closure.ByDepth[0][0] != "core.py" {
		t.Fatalf("expected core.py at depth 0, got %v", closure.ByDepth[0])
	}
}

func TestTraversalUnknownModule(t *testing.T) {
	g := New([]string{"a.py"})
	_, err := g.TransitiveDependencies(context.Background(), "missing.py", -1)
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestTraversalContextCancellation(t *testing.T) {
	g := buildGraph([][2]string{{"a.py", "b.py"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.TransitiveDependencies(ctx, "a.py", -1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCyclesDetection(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "b.py"},
		{"b.py", "c.py"},
		{"c.py", "a.py"},
		{"d.py", "e.py"},
		{"e.py", "d.py"},
		{"f.py", "a.py"},
	})

	cycles := g.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	// Larger component first.
	if len(cycles[0].Members) != 3 || len(cycles[1].Members) != 2 {
		t.Fatalf("unexpected cycle sizes: %d and %d", len(cycles[0].Members), len(cycles[1].Members))
	}

	path := cycles[0].Path
	if path[0] != path[len(path)-1] {
		t.Fatalf("cycle path must close onto its start: %v", path)
	}
	if path[0] != "a.py" {
		t.Fatalf("cycle path should start at smallest member, got %v", path)
	}
}

func TestCyclesNoneInDAG(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "b.py"},
		{"b.py", "c.py"},
		{"a.py", "c.py"},
	})
	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles in a DAG, got %v", cycles)
	}
}

func TestCyclesDeepChain(t *testing.T) {
	// A long path into a terminal two-node cycle exercises the
	// explicit stack machinery.
	g := New(nil)
	prev := "m0.py"
	for i := 1; i < 5000; i++ {
		next := "m" + strconv.Itoa(i) + ".py"
		g.AddEdge(prev, next)
		prev = next
	}
	g.AddEdge(prev, "m0.py")

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0].Members) != 5000 {
		t.Fatalf("expected 5000 members, got %d", len(cycles[0].Members))
	}
}

func TestCentralityClassification(t *testing.T) {
	// hub.py is depended on by 3 of 5 modules.
	g := buildGraph([][2]string{
		{"a.py", "hub.py"},
		{"b.py", "hub.py"},
		{"c.py", "hub.py"},
		{"hub.py", "leaf.py"},
	})

	nc, ok := g.CentralityFor("hub.py")
	if !ok {
		t.Fatal("hub.py should exist")
	}
	if nc.InDegree != 3 || nc.OutDegree != 1 {
		t.Fatalf("unexpected degrees: in=%d out=%d", nc.InDegree, nc.OutDegree)
	}
	if !nc.IsHub {
		t.Fatal("hub.py should be classified as a hub")
	}
	if got, want := nc.DegreeScore, 3.0/5.0; got != want {
		t.Fatalf("expected degree score %f, got %f", want, got)
	}
	if got, want := nc.Instability, 1.0/4.0; got != want {
		t.Fatalf("expected instability %f, got %f", want, got)
	}

	leaf, _ := g.CentralityFor("leaf.py")
	if !leaf.IsLeaf || leaf.IsRoot {
		t.Fatalf("leaf.py misclassified: %+v", leaf)
	}
	root, _ := g.CentralityFor("a.py")
	if !root.IsRoot {
		t.Fatalf("a.py should be a root: %+v", root)
	}
}

func TestCentralitySortedByScore(t *testing.T) {
	g := buildGraph([][2]string{
		{"a.py", "hub.py"},
		{"b.py", "hub.py"},
		{"a.py", "b.py"},
	})
	all := g.Centrality()
	if all[0].Path != "hub.py" {
		t.Fatalf("expected hub.py first, got %s", all[0].Path)
	}
	for i := 1; i < len(all); i++ {
		if all[i].DegreeScore > all[i-1].DegreeScore {
			t.Fatal("centrality results not sorted by score")
		}
	}
}

func TestLayersCircularPairs(t *testing.T) {
	g := buildGraph([][2]string{
		{"api/handlers.py", "core/logic.py"},
		{"core/logic.py", "api/client.py"},
		{"core/logic.py", "util/strings.py"},
		{"main.py", "api/handlers.py"},
	})

	report := g.Layers()
	if len(report.CircularPairs) != 1 {
		t.Fatalf("expected 1 circular layer pair, got %v", report.CircularPairs)
	}
	pair := report.CircularPairs[0]
	if pair[0] != "api" || pair[1] != "core" {
		t.Fatalf("unexpected circular pair: %v", pair)
	}

	var rootLayer *Layer
	for i := range report.Layers {
		if report.Layers[i].Name == "." {
			rootLayer = &report.Layers[i]
		}
	}
	if rootLayer == nil {
		t.Fatal("root-level files should land in the \".\" layer")
	}
	if len(rootLayer.DependsOn) != 1 || rootLayer.DependsOn[0] != "api" {
		t.Fatalf("unexpected root layer deps: %v", rootLayer.DependsOn)
	}
}
