package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/depscope/internal/analytics"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/rules"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: "json", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, map[string]int{"modules": 3})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"modules": 3`)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "PATH", "SCORE")
	tbl.Row("core/engine.py", 0.5)
	tbl.Row("api.py", 0.25)
	require.NoError(t, tbl.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PATH")
	assert.Contains(t, lines[1], "core/engine.py")
	assert.Contains(t, lines[1], "0.500")
	// Score column starts at the same offset in every row.
	assert.Equal(t, strings.Index(lines[1], "0.500"), strings.Index(lines[2], "0.250"))
}

func TestRenderBlastRadius(t *testing.T) {
	var buf bytes.Buffer
	br := &analytics.BlastRadius{
		Target:     "core/db.py",
		HighRisk:   []string{"api.py"},
		Structural: []string{"cli.py"},
		Temporal:   []string{"billing.py"},
		Total:      3,
		HasHistory: true,
	}
	require.NoError(t, RenderBlastRadius(&buf, br))

	out := buf.String()
	assert.Contains(t, out, "core/db.py")
	assert.Contains(t, out, "High risk (structural + temporal): 1")
	assert.Contains(t, out, "api.py")
	assert.NotContains(t, out, "No commit history")
}

func TestRenderBlastRadiusWithoutHistory(t *testing.T) {
	var buf bytes.Buffer
	br := &analytics.BlastRadius{Target: "core/db.py", Structural: []string{"cli.py"}, Total: 1}
	require.NoError(t, RenderBlastRadius(&buf, br))
	assert.Contains(t, buf.String(), "No commit history")
}

func TestRenderCycles(t *testing.T) {
	var buf bytes.Buffer
	cycles := []graph.Cycle{
		{Members: []string{"a.py", "b.py"}, Path: []string{"a.py", "b.py", "a.py"}},
	}
	require.NoError(t, RenderCycles(&buf, cycles))
	assert.Contains(t, buf.String(), "a.py -> b.py -> a.py")

	buf.Reset()
	require.NoError(t, RenderCycles(&buf, nil))
	assert.Contains(t, buf.String(), "No circular dependencies")
}

func TestRenderValidation(t *testing.T) {
	var buf bytes.Buffer
	result := &rules.Result{
		Violations: []rules.Violation{
			{Rule: "circular_dependencies", Severity: "error", Message: "cycle: a.py -> b.py -> a.py"},
			{Rule: "complexity", Severity: "warning", Message: "process exceeds threshold"},
		},
		Errors:   1,
		Warnings: 1,
	}
	require.NoError(t, RenderValidation(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "[ERROR] circular_dependencies")
	assert.Contains(t, out, "[WARNING] complexity")
	assert.Contains(t, out, "1 error(s), 1 warning(s)")
}

func TestCouplingsCSV(t *testing.T) {
	var buf bytes.Buffer
	couplings := []models.TemporalCoupling{
		{FileA: "a.py", FileB: "b.py", CoChangeCount: 4, JaccardSimilarity: 0.5},
	}
	require.NoError(t, CouplingsCSV(&buf, couplings))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file_a,file_b,co_change_count,jaccard_similarity", lines[0])
	assert.Equal(t, "a.py,b.py,4,0.5000", lines[1])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "a long ...", truncate("a long commit message", 10))
}
