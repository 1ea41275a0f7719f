package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rohankatakam/depscope/internal/analytics"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/rules"
	"github.com/rohankatakam/depscope/internal/storage"
)

// RenderClosure prints a dependency closure grouped by depth.
func RenderClosure(w io.Writer, title string, c *graph.Closure) error {
	fmt.Fprintf(w, "%s of %s: %d module(s)\n", title, c.Start, c.Total)
	for depth, bucket := range c.ByDepth {
		fmt.Fprintf(w, "  depth %d:\n", depth+1)
		for _, path := range bucket {
			fmt.Fprintf(w, "    %s\n", path)
		}
	}
	return nil
}

// RenderBlastRadius prints the risk partition for one module.
func RenderBlastRadius(w io.Writer, br *analytics.BlastRadius) error {
	fmt.Fprintf(w, "Blast radius for %s: %d module(s) affected\n\n", br.Target, br.Total)
	if !br.HasHistory {
		fmt.Fprintf(w, "No commit history ingested; temporal partitions are empty.\n")
		fmt.Fprintf(w, "Run 'depscope analyze' inside a git checkout to enable them.\n\n")
	}
	renderGroup(w, "High risk (structural + temporal)", br.HighRisk)
	renderGroup(w, "Structural only", br.Structural)
	renderGroup(w, "Temporal only (hidden)", br.Temporal)
	return nil
}

func renderGroup(w io.Writer, title string, paths []string) {
	fmt.Fprintf(w, "%s: %d\n", title, len(paths))
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintln(w)
}

// RenderTestImpact prints the tests that likely cover a module.
func RenderTestImpact(w io.Writer, ti *analytics.TestImpact) error {
	fmt.Fprintf(w, "Test impact for %s: %d test module(s)\n\n", ti.Target, len(ti.AllImpact))
	renderGroup(w, "By naming convention", ti.ByName)
	renderGroup(w, "By reverse dependency", ti.ByImport)
	return nil
}

// RenderHotspots prints the hotspot ranking as a table.
func RenderHotspots(w io.Writer, hotspots []analytics.Hotspot) error {
	if len(hotspots) == 0 {
		fmt.Fprintln(w, "No hotspots found.")
		return nil
	}
	t := NewTable(w, "PATH", "COMPLEXITY", "CHURN", "IN", "OUT", "SCORE")
	for _, h := range hotspots {
		t.Row(h.Path, h.Complexity, h.Churn, h.InDegree, h.OutDegree, fmt.Sprintf("%.0f", h.Score))
	}
	return t.Flush()
}

// RenderHiddenDependencies prints temporally coupled pairs that share
// no import edge.
func RenderHiddenDependencies(w io.Writer, deps []analytics.HiddenDependency) error {
	if len(deps) == 0 {
		fmt.Fprintln(w, "No hidden dependencies found.")
		return nil
	}
	t := NewTable(w, "FILE A", "FILE B", "CO-CHANGES", "SIMILARITY")
	for _, d := range deps {
		t.Row(d.FileA, d.FileB, d.CoChangeCount, d.Similarity)
	}
	return t.Flush()
}

// RenderCentrality prints coupling metrics per module.
func RenderCentrality(w io.Writer, nodes []graph.NodeCentrality, limit int) error {
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	t := NewTable(w, "PATH", "IN", "OUT", "SCORE", "INSTABILITY", "ROLE")
	for _, n := range nodes {
		t.Row(n.Path, n.InDegree, n.OutDegree, n.DegreeScore, n.Instability, centralityRole(n))
	}
	return t.Flush()
}

func centralityRole(n graph.NodeCentrality) string {
	switch {
	case n.IsHub:
		return "hub"
	case n.IsRoot:
		return "root"
	case n.IsLeaf:
		return "leaf"
	default:
		return ""
	}
}

// RenderCycles prints each circular dependency group as a closed path.
func RenderCycles(w io.Writer, cycles []graph.Cycle) error {
	if len(cycles) == 0 {
		fmt.Fprintln(w, "No circular dependencies found.")
		return nil
	}
	fmt.Fprintf(w, "%d circular dependency group(s):\n", len(cycles))
	for i, c := range cycles {
		fmt.Fprintf(w, "  %d. [%d modules] %s\n", i+1, len(c.Members), strings.Join(c.Path, " -> "))
	}
	return nil
}

// RenderLayers prints the directory-level dependency view.
func RenderLayers(w io.Writer, report *graph.LayerReport) error {
	for _, layer := range report.Layers {
		fmt.Fprintf(w, "%s (%d modules)", layer.Name, len(layer.Modules))
		if len(layer.DependsOn) > 0 {
			fmt.Fprintf(w, " -> %s", strings.Join(layer.DependsOn, ", "))
		}
		fmt.Fprintln(w)
	}
	if len(report.CircularPairs) > 0 {
		fmt.Fprintf(w, "\nMutually dependent layer pairs:\n")
		for _, pair := range report.CircularPairs {
			fmt.Fprintf(w, "  %s <-> %s\n", pair[0], pair[1])
		}
	}
	return nil
}

// RenderGodClasses prints oversized classes as a table.
func RenderGodClasses(w io.Writer, classes []storage.GodClass) error {
	if len(classes) == 0 {
		fmt.Fprintln(w, "No god classes found.")
		return nil
	}
	t := NewTable(w, "CLASS", "MODULE", "METHODS", "COMPLEXITY", "AVG")
	for _, c := range classes {
		t.Row(c.Name, c.ModulePath, c.MethodCount, c.TotalComplexity, fmt.Sprintf("%.1f", c.AvgComplexity))
	}
	return t.Flush()
}

// RenderShotgunCommits prints commits that touched many files at once.
func RenderShotgunCommits(w io.Writer, commits []storage.ShotgunCommit) error {
	if len(commits) == 0 {
		fmt.Fprintln(w, "No shotgun surgery commits found.")
		return nil
	}
	t := NewTable(w, "COMMIT", "AUTHOR", "FILES", "CHURN", "MESSAGE")
	for _, c := range commits {
		t.Row(shortHash(c.Hash), c.AuthorName, c.FilesChanged, c.TotalChurn, truncate(c.Message, 60))
	}
	return t.Flush()
}

// RenderProductivity prints ownership, collaboration, and onboarding.
func RenderProductivity(w io.Writer, report *analytics.ProductivityReport) error {
	fmt.Fprintf(w, "Ownership (%d files):\n", len(report.Ownership))
	t := NewTable(w, "FILE", "PRIMARY", "SECONDARY", "AUTHORS", "COMMITS")
	for _, o := range report.Ownership {
		t.Row(o.FilePath, o.PrimaryOwner, strings.Join(o.Secondary, ", "), o.AuthorCount, o.TotalCommits)
	}
	if err := t.Flush(); err != nil {
		return err
	}

	if len(report.Collaboration) > 0 {
		fmt.Fprintf(w, "\nHigh-collaboration files:\n")
		for _, c := range report.Collaboration {
			fmt.Fprintf(w, "  %s (%d authors: %s)\n", c.FilePath, c.AuthorCount, strings.Join(c.Authors, ", "))
		}
	}

	fmt.Fprintf(w, "\nDeveloper activity:\n")
	t = NewTable(w, "NAME", "EMAIL", "FIRST", "LAST", "DAYS", "FILES", "COMMITS")
	for _, e := range report.Onboarding {
		t.Row(e.Name, e.Email, e.FirstCommit.Format("2006-01-02"), e.LastCommit.Format("2006-01-02"),
			e.ActiveDays, e.FilesTouched, e.TotalCommits)
	}
	return t.Flush()
}

// RenderValidation prints rule violations, errors first.
func RenderValidation(w io.Writer, result *rules.Result) error {
	if len(result.Violations) == 0 {
		fmt.Fprintln(w, "All rules passed.")
		return nil
	}
	for _, v := range result.Violations {
		fmt.Fprintf(w, "[%s] %s: %s\n", strings.ToUpper(v.Severity), v.Rule, v.Message)
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", result.Errors, result.Warnings)
	return nil
}

// RenderMigrationProgress prints one migration project's scan summary.
func RenderMigrationProgress(w io.Writer, progress *storage.MigrationProgress) error {
	fmt.Fprintf(w, "Migration %s:\n", progress.MigrationID)
	fmt.Fprintf(w, "  remaining occurrences: %d\n", progress.TotalOccurrences)
	fmt.Fprintf(w, "  affected files:        %d\n", progress.AffectedFiles)
	if len(progress.BySeverity) > 0 {
		fmt.Fprintf(w, "  by severity:\n")
		for _, sev := range []string{"error", "warning", "info"} {
			if n, ok := progress.BySeverity[sev]; ok {
				fmt.Fprintf(w, "    %-8s %d\n", sev, n)
			}
		}
	}
	return nil
}

// RenderSummary prints the fact-store summary for one repository.
func RenderSummary(w io.Writer, counts *storage.StructuralCounts, stats *storage.SummaryStats, unresolved int) error {
	fmt.Fprintf(w, "Structural facts:\n")
	fmt.Fprintf(w, "  modules:    %d\n", counts.ModuleCount)
	fmt.Fprintf(w, "  classes:    %d\n", counts.ClassCount)
	fmt.Fprintf(w, "  functions:  %d\n", counts.FunctionCount)
	fmt.Fprintf(w, "  imports:    %d (%d unresolved)\n", counts.ImportCount, unresolved)
	fmt.Fprintf(w, "  complexity: avg %.2f, max %.0f\n", counts.AvgComplexity, counts.MaxComplexity)

	fmt.Fprintf(w, "Historical facts:\n")
	fmt.Fprintf(w, "  commits:    %d\n", stats.TotalCommits)
	fmt.Fprintf(w, "  authors:    %d\n", stats.TotalAuthors)
	fmt.Fprintf(w, "  files:      %d\n", stats.FilesTracked)
	fmt.Fprintf(w, "  couplings:  %d\n", stats.TemporalCouplings)
	if stats.FirstCommit != nil && stats.LastCommit != nil {
		fmt.Fprintf(w, "  range:      %s to %s\n",
			stats.FirstCommit.Format("2006-01-02"), stats.LastCommit.Format("2006-01-02"))
	}
	return nil
}

// CouplingsCSV renders temporal couplings for spreadsheet import.
func CouplingsCSV(w io.Writer, couplings []models.TemporalCoupling) error {
	rows := make([][]string, 0, len(couplings))
	for _, c := range couplings {
		rows = append(rows, []string{
			c.FileA, c.FileB,
			strconv.Itoa(c.CoChangeCount),
			strconv.FormatFloat(c.JaccardSimilarity, 'f', 4, 64),
		})
	}
	return WriteCSVRows(w, []string{"file_a", "file_b", "co_change_count", "jaccard_similarity"}, rows)
}

// ChurnCSV renders per-file churn metrics for spreadsheet import.
func ChurnCSV(w io.Writer, metrics []models.ChurnMetrics) error {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.FilePath,
			strconv.Itoa(m.TotalCommits),
			strconv.Itoa(m.AuthorCount),
			strconv.Itoa(m.LinesAdded),
			strconv.Itoa(m.LinesDeleted),
			strconv.Itoa(m.TotalChurn),
		})
	}
	return WriteCSVRows(w, []string{"file_path", "total_commits", "author_count", "lines_added", "lines_deleted", "total_churn"}, rows)
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
