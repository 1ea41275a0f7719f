package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/storage"
)

type fakeFacts struct {
	couplings    []models.TemporalCoupling
	churn        []models.ChurnMetrics
	ownership    []models.AuthorOwnership
	complexities []storage.ModuleComplexity
	godClasses   []storage.GodClass
	shotgun      []storage.ShotgunCommit
	activities   []storage.AuthorActivity
	hasHistory   bool
}

func (f *fakeFacts) CouplingsForFile(ctx context.Context, path string) ([]models.TemporalCoupling, error) {
	out := []models.TemporalCoupling{}
	for _, tc := range f.couplings {
		if tc.FileA == path || tc.FileB == path {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (f *fakeFacts) TemporalCouplings(ctx context.Context, minCoChanges int, minSimilarity float64) ([]models.TemporalCoupling, error) {
	out := []models.TemporalCoupling{}
	for _, tc := range f.couplings {
		if tc.CoChangeCount >= minCoChanges && tc.JaccardSimilarity >= minSimilarity {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (f *fakeFacts) ChurnMetrics(ctx context.Context) ([]models.ChurnMetrics, error) {
	return f.churn, nil
}

func (f *fakeFacts) AuthorOwnership(ctx context.Context, filePath string) ([]models.AuthorOwnership, error) {
	return f.ownership, nil
}

func (f *fakeFacts) ModuleComplexities(ctx context.Context) ([]storage.ModuleComplexity, error) {
	return f.complexities, nil
}

func (f *fakeFacts) GodClasses(ctx context.Context, c, m int) ([]storage.GodClass, error) {
	return f.godClasses, nil
}

func (f *fakeFacts) ShotgunCommits(ctx context.Context, minFiles, limit int) ([]storage.ShotgunCommit, error) {
	return f.shotgun, nil
}

func (f *fakeFacts) AuthorActivities(ctx context.Context) ([]storage.AuthorActivity, error) {
	return f.activities, nil
}

func (f *fakeFacts) HasHistory(ctx context.Context) (bool, error) {
	return f.hasHistory, nil
}

func testGraph() *graph.DependencyGraph {
	g := graph.New([]string{"api.py", "core.py", "util.py", "billing.py", "tests/test_core.py"})
	g.AddEdge("api.py", "core.py")
	g.AddEdge("core.py", "util.py")
	g.AddEdge("tests/test_core.py", "core.py")
	return g
}

func TestBlastRadiusPartitions(t *testing.T) {
	facts := &fakeFacts{
		hasHistory: true,
		couplings: []models.TemporalCoupling{
			// api.py depends on core.py structurally and co-changes.
			{FileA: "api.py", FileB: "core.py", CoChangeCount: 5, JaccardSimilarity: 0.8},
			// billing.py co-changes with no import edge.
			{FileA: "billing.py", FileB: "core.py", CoChangeCount: 4, JaccardSimilarity: 0.5},
			// weak coupling stays below the threshold.
			{FileA: "core.py", FileB: "util.py", CoChangeCount: 2, JaccardSimilarity: 0.1},
		},
	}
	a := New(testGraph(), facts, nil)

	radius, err := a.BlastRadius(context.Background(), "core.py", -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"api.py"}, radius.HighRisk)
	assert.Equal(t, []string{"tests/test_core.py"}, radius.Structural)
	assert.Equal(t, []string{"billing.py"}, radius.Temporal)
	assert.Equal(t, 3, radius.Total)
	assert.True(t, radius.HasHistory)
}

func TestBlastRadiusWithoutHistory(t *testing.T) {
	a := New(testGraph(), &fakeFacts{hasHistory: false}, nil)

	radius, err := a.BlastRadius(context.Background(), "core.py", -1)
	require.NoError(t, err)

	assert.Empty(t, radius.HighRisk)
	assert.Empty(t, radius.Temporal)
	assert.Len(t, radius.Structural, 2)
	assert.False(t, radius.HasHistory)
}

func TestBlastRadiusUnknownTarget(t *testing.T) {
	a := New(testGraph(), &fakeFacts{}, nil)
	_, err := a.BlastRadius(context.Background(), "nope.py", -1)
	assert.ErrorIs(t, err, graph.ErrUnknownModule)
}

func TestHotspotsScoring(t *testing.T) {
	facts := &fakeFacts{
		complexities: []storage.ModuleComplexity{
			{Path: "core.py", TotalComplexity: 10},
			{Path: "util.py", TotalComplexity: 2},
			{Path: "api.py", TotalComplexity: 50},
		},
		churn: []models.ChurnMetrics{
			{FilePath: "core.py", TotalChurn: 100},
			{FilePath: "util.py", TotalChurn: 500},
			// api.py never churns, so it cannot be a hotspot.
		},
	}
	a := New(testGraph(), facts, nil)

	hotspots, err := a.Hotspots(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, hotspots, 2)

	// core.py: 10 * 100 * (1 out + 2 in + 1) = 4000.
	assert.Equal(t, "core.py", hotspots[0].Path)
	assert.Equal(t, 4000.0, hotspots[0].Score)
	// util.py: 2 * 500 * (0 out + 1 in + 1) = 2000.
	assert.Equal(t, "util.py", hotspots[1].Path)
	assert.Equal(t, 2000.0, hotspots[1].Score)
}

func TestHotspotsLimit(t *testing.T) {
	facts := &fakeFacts{
		complexities: []storage.ModuleComplexity{
			{Path: "core.py", TotalComplexity: 10},
			{Path: "util.py", TotalComplexity: 2},
		},
		churn: []models.ChurnMetrics{
			{FilePath: "core.py", TotalChurn: 100},
			{FilePath: "util.py", TotalChurn: 500},
		},
	}
	a := New(testGraph(), facts, nil)

	hotspots, err := a.Hotspots(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, hotspots, 1)
}

func TestHiddenDependencies(t *testing.T) {
	facts := &fakeFacts{
		couplings: []models.TemporalCoupling{
			// structural edge exists, not hidden.
			{FileA: "api.py", FileB: "core.py", CoChangeCount: 5, JaccardSimilarity: 0.9},
			// no edge between billing.py and core.py: hidden.
			{FileA: "billing.py", FileB: "core.py", CoChangeCount: 4, JaccardSimilarity: 0.6},
		},
	}
	a := New(testGraph(), facts, nil)

	hidden, err := a.HiddenDependencies(context.Background(), 0.3)
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	assert.Equal(t, "billing.py", hidden[0].FileA)
	assert.Equal(t, "core.py", hidden[0].FileB)
}

func TestTestImpact(t *testing.T) {
	a := New(testGraph(), &fakeFacts{}, nil)

	impact, err := a.TestImpactFor(context.Background(), "core.py")
	require.NoError(t, err)

	assert.Equal(t, []string{"tests/test_core.py"}, impact.ByName)
	assert.Equal(t, []string{"tests/test_core.py"}, impact.AllImpact)
}

func TestTestImpactByReverseDependency(t *testing.T) {
	g := graph.New(nil)
	g.AddEdge("tests/integration.py", "util.py")
	a := New(g, &fakeFacts{}, nil)

	impact, err := a.TestImpactFor(context.Background(), "util.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/integration.py"}, impact.ByImport)
}

func TestProductivityOwnership(t *testing.T) {
	facts := &fakeFacts{
		ownership: []models.AuthorOwnership{
			{AuthorName: "Alice", AuthorEmail: "alice@example.com", FilePath: "core.py", CommitCount: 20},
			{AuthorName: "Bob", AuthorEmail: "bob@example.com", FilePath: "core.py", CommitCount: 8},
			{AuthorName: "Carol", AuthorEmail: "carol@example.com", FilePath: "core.py", CommitCount: 1},
		},
		activities: []storage.AuthorActivity{
			{
				Name:         "Alice",
				Email:        "alice@example.com",
				FirstCommit:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				LastCommit:   time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
				FilesTouched: 14,
				TotalCommits: 29,
			},
		},
	}
	a := New(testGraph(), facts, nil)

	report, err := a.Productivity(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, report.Ownership, 1)

	own := report.Ownership[0]
	assert.Equal(t, "Alice", own.PrimaryOwner)
	// Bob holds 8 of 20: a secondary. Carol's single commit is not.
	assert.Equal(t, []string{"Bob"}, own.Secondary)
	assert.Equal(t, 3, own.AuthorCount)

	require.Len(t, report.Collaboration, 1)
	assert.Equal(t, 3, report.Collaboration[0].AuthorCount)

	require.Len(t, report.Onboarding, 1)
	assert.Equal(t, 11, report.Onboarding[0].ActiveDays)
}

func TestShotgunSurgeryWithoutHistory(t *testing.T) {
	a := New(testGraph(), &fakeFacts{hasHistory: false, shotgun: []storage.ShotgunCommit{{Hash: "x"}}}, nil)

	commits, err := a.ShotgunSurgery(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, commits)
}
