package diffengine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Impact labels for a single metric and verdicts for a whole diff.
const (
	ImpactImproved  = "improved"
	ImpactDegraded  = "degraded"
	ImpactUnchanged = "unchanged"

	VerdictPositive = "positive"
	VerdictNegative = "negative"
	VerdictMixed    = "mixed"
)

// changeThreshold is the minimum absolute delta that counts as a
// change; float noise below it reads as unchanged.
const changeThreshold = 0.01

// MetricDiff is one metric compared across revisions. PercentChange is
// nil when the metric started at zero.
type MetricDiff struct {
	Name          string   `json:"name"`
	Before        float64  `json:"before"`
	After         float64  `json:"after"`
	Delta         float64  `json:"delta"`
	PercentChange *float64 `json:"percent_change,omitempty"`
	Impact        string   `json:"impact"`
}

// Report is a full architectural comparison of two refs.
type Report struct {
	RefBefore    string       `json:"ref_before"`
	RefAfter     string       `json:"ref_after"`
	Metrics      []MetricDiff `json:"metrics"`
	KeyChanges   []MetricDiff `json:"key_changes"`
	ChangedFiles []string     `json:"changed_files"`
	Verdict      string       `json:"verdict"`
}

// Engine compares revisions of one repository.
type Engine struct {
	repoPath string
	logger   *logrus.Logger
}

// NewEngine creates a diff engine for the repository at repoPath.
func NewEngine(repoPath string, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{repoPath: repoPath, logger: logger}
}

// Compare snapshots refBefore and refAfter in parallel and diffs
// their metric vectors.
func (e *Engine) Compare(ctx context.Context, refBefore, refAfter string) (*Report, error) {
	var before, after *Snapshot
	var changed []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		before, err = snapshotRef(gctx, e.repoPath, refBefore, e.logger)
		return err
	})
	g.Go(func() error {
		var err error
		after, err = snapshotRef(gctx, e.repoPath, refAfter, e.logger)
		return err
	})
	g.Go(func() error {
		var err error
		changed, err = ChangedFiles(gctx, e.repoPath, refBefore, refAfter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare %s..%s: %w", refBefore, refAfter, err)
	}

	report := Diff(before, after)
	report.ChangedFiles = changed
	return report, nil
}

// Diff reduces two snapshots to a report. Exported separately from
// Compare so precomputed snapshots can be diffed without git.
func Diff(before, after *Snapshot) *Report {
	names := make([]string, 0, len(before.Metrics))
	for name := range before.Metrics {
		names = append(names, name)
	}
	for name := range after.Metrics {
		if _, ok := before.Metrics[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	report := &Report{
		RefBefore:  before.Ref,
		RefAfter:   after.Ref,
		Metrics:    make([]MetricDiff, 0, len(names)),
		KeyChanges: []MetricDiff{},
	}

	improved, degraded := 0, 0
	for _, name := range names {
		md := diffMetric(name, before.Metrics[name], after.Metrics[name])
		report.Metrics = append(report.Metrics, md)
		switch md.Impact {
		case ImpactImproved:
			improved++
		case ImpactDegraded:
			degraded++
		}
	}

	switch {
	case degraded == 0:
		report.Verdict = VerdictPositive
	case degraded > improved:
		report.Verdict = VerdictNegative
	default:
		report.Verdict = VerdictMixed
	}

	report.KeyChanges = keyChanges(report.Metrics, 5)
	return report
}

func diffMetric(name string, before, after float64) MetricDiff {
	md := MetricDiff{
		Name:   name,
		Before: before,
		After:  after,
		Delta:  after - before,
		Impact: ImpactUnchanged,
	}
	if before != 0 {
		pct := md.Delta / before * 100
		md.PercentChange = &pct
	}
	if math.Abs(md.Delta) < changeThreshold {
		md.Delta = 0
		return md
	}
	// Lower is better for the whole fixed vector.
	if md.Delta < 0 {
		md.Impact = ImpactImproved
	} else {
		md.Impact = ImpactDegraded
	}
	return md
}

// keyChanges picks the diffs with the largest absolute change.
func keyChanges(metrics []MetricDiff, limit int) []MetricDiff {
	changed := []MetricDiff{}
	for _, md := range metrics {
		if md.Delta != 0 {
			changed = append(changed, md)
		}
	}
	sort.Slice(changed, func(i, j int) bool {
		mi, mj := math.Abs(changed[i].Delta), math.Abs(changed[j].Delta)
		if mi != mj {
			return mi > mj
		}
		return changed[i].Name < changed[j].Name
	})
	if len(changed) > limit {
		changed = changed[:limit]
	}
	return changed
}
