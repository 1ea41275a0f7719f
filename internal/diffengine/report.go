package diffengine

import (
	"fmt"
	"strings"
)

// Markdown renders the report for humans and pull request comments.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Architecture diff: %s → %s\n\n", r.RefBefore, r.RefAfter)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", r.Verdict)

	if len(r.KeyChanges) > 0 {
		b.WriteString("## Key changes\n\n")
		for _, md := range r.KeyChanges {
			b.WriteString("- " + describeChange(md) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Before | After | Change | Impact |\n")
	b.WriteString("|--------|--------|-------|--------|--------|\n")
	for _, md := range r.Metrics {
		change := "-"
		if md.Delta != 0 {
			if md.PercentChange != nil {
				change = fmt.Sprintf("%+.2f (%+.1f%%)", md.Delta, *md.PercentChange)
			} else {
				change = fmt.Sprintf("%+.2f", md.Delta)
			}
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %s | %s |\n",
			md.Name, md.Before, md.After, change, md.Impact)
	}

	if len(r.ChangedFiles) > 0 {
		fmt.Fprintf(&b, "\n## Changed files (%d)\n\n", len(r.ChangedFiles))
		for _, f := range r.ChangedFiles {
			b.WriteString("- `" + f + "`\n")
		}
	}
	return b.String()
}

func describeChange(md MetricDiff) string {
	direction := "rose"
	if md.Delta < 0 {
		direction = "fell"
	}
	if md.PercentChange != nil {
		return fmt.Sprintf("**%s** %s %.1f%% (%.2f → %.2f)",
			md.Name, direction, absFloat(*md.PercentChange), md.Before, md.After)
	}
	return fmt.Sprintf("**%s** %s to %.2f", md.Name, direction, md.After)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
