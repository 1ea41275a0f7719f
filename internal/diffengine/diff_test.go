package diffengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(ref string, metrics map[string]float64) *Snapshot {
	return &Snapshot{Ref: ref, Metrics: metrics}
}

func TestDiffVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		before  map[string]float64
		after   map[string]float64
		verdict string
	}{
		{
			name:    "health improved",
			before:  map[string]float64{MetricCycles: 3, MetricAvgComplexity: 8},
			after:   map[string]float64{MetricCycles: 1, MetricAvgComplexity: 8},
			verdict: VerdictPositive,
		},
		{
			name:    "health degraded",
			before:  map[string]float64{MetricCycles: 0, MetricAvgComplexity: 5},
			after:   map[string]float64{MetricCycles: 2, MetricAvgComplexity: 5},
			verdict: VerdictNegative,
		},
		{
			name:    "mixed",
			before:  map[string]float64{MetricCycles: 3, MetricAvgComplexity: 5},
			after:   map[string]float64{MetricCycles: 1, MetricAvgComplexity: 9},
			verdict: VerdictMixed,
		},
		{
			name:    "size growth degrades",
			before:  map[string]float64{MetricModules: 10, MetricCycles: 1},
			after:   map[string]float64{MetricModules: 40, MetricCycles: 1},
			verdict: VerdictNegative,
		},
		{
			name:    "more degraded than improved",
			before:  map[string]float64{MetricCycles: 3, MetricAvgComplexity: 5, MetricMaxComplexity: 5},
			after:   map[string]float64{MetricCycles: 1, MetricAvgComplexity: 9, MetricMaxComplexity: 7},
			verdict: VerdictNegative,
		},
		{
			name:    "nothing changed",
			before:  map[string]float64{MetricModules: 10, MetricCycles: 1},
			after:   map[string]float64{MetricModules: 10, MetricCycles: 1},
			verdict: VerdictPositive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Diff(snapshot("v1", tt.before), snapshot("v2", tt.after))
			assert.Equal(t, tt.verdict, report.Verdict)
		})
	}
}

func TestDiffMetricFields(t *testing.T) {
	report := Diff(
		snapshot("v1", map[string]float64{MetricAvgComplexity: 4, MetricCycles: 0}),
		snapshot("v2", map[string]float64{MetricAvgComplexity: 6, MetricCycles: 2}),
	)

	byName := map[string]MetricDiff{}
	for _, md := range report.Metrics {
		byName[md.Name] = md
	}

	avg := byName[MetricAvgComplexity]
	assert.Equal(t, 2.0, avg.Delta)
	require.NotNil(t, avg.PercentChange)
	assert.InDelta(t, 50.0, *avg.PercentChange, 1e-9)
	assert.Equal(t, ImpactDegraded, avg.Impact)

	// Metrics born at zero have no defined percent change.
	cycles := byName[MetricCycles]
	assert.Nil(t, cycles.PercentChange)
	assert.Equal(t, ImpactDegraded, cycles.Impact)
}

func TestDiffIgnoresFloatNoise(t *testing.T) {
	report := Diff(
		snapshot("v1", map[string]float64{MetricAvgComplexity: 5.0}),
		snapshot("v2", map[string]float64{MetricAvgComplexity: 5.005}),
	)
	assert.Equal(t, VerdictPositive, report.Verdict)
	assert.Equal(t, ImpactUnchanged, report.Metrics[0].Impact)
	assert.Equal(t, 0.0, report.Metrics[0].Delta)
}

func TestDiffJudgesEveryMetric(t *testing.T) {
	report := Diff(
		snapshot("v1", map[string]float64{MetricModules: 10, MetricMaxAfferent: 4}),
		snapshot("v2", map[string]float64{MetricModules: 5, MetricMaxAfferent: 9}),
	)

	byName := map[string]MetricDiff{}
	for _, md := range report.Metrics {
		byName[md.Name] = md
	}
	assert.Equal(t, ImpactImproved, byName[MetricModules].Impact)
	assert.Equal(t, ImpactDegraded, byName[MetricMaxAfferent].Impact)
	assert.Equal(t, VerdictMixed, report.Verdict)
}

func TestKeyChangesTopFive(t *testing.T) {
	before := map[string]float64{}
	after := map[string]float64{}
	names := []string{MetricModules, MetricClasses, MetricFunctions, MetricImports, MetricAvgDeps, MetricHubs, MetricCycles}
	for i, name := range names {
		before[name] = 10
		after[name] = 10 + float64(i+1)
	}

	report := Diff(snapshot("v1", before), snapshot("v2", after))
	require.Len(t, report.KeyChanges, 5)
	// Largest absolute change first: cycles moved 10 -> 17.
	assert.Equal(t, MetricCycles, report.KeyChanges[0].Name)
	assert.Equal(t, MetricHubs, report.KeyChanges[1].Name)
}

func TestMarkdownRender(t *testing.T) {
	report := Diff(
		snapshot("main", map[string]float64{MetricCycles: 2}),
		snapshot("feature", map[string]float64{MetricCycles: 0}),
	)
	report.ChangedFiles = []string{"core.py"}

	md := report.Markdown()
	assert.True(t, strings.Contains(md, "main → feature"))
	assert.True(t, strings.Contains(md, "positive"))
	assert.True(t, strings.Contains(md, "circular_dependencies"))
	assert.True(t, strings.Contains(md, "`core.py`"))
}
