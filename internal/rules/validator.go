package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// Violation is one broken rule.
type Violation struct {
	Rule      string  `json:"rule"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message"`
	Actual    float64 `json:"actual_value"`
	Threshold float64 `json:"threshold_value"`
}

// Result is the outcome of a validation run.
type Result struct {
	Violations []Violation `json:"violations"`
	Errors     int         `json:"errors"`
	Warnings   int         `json:"warnings"`
}

// Passed reports whether no errors were found. failOnWarning makes
// warnings count too.
func (r *Result) Passed(failOnWarning bool) bool {
	if r.Errors > 0 {
		return false
	}
	return !failOnWarning || r.Warnings == 0
}

// FactReader is the slice of the storage contract validation needs.
type FactReader interface {
	FunctionsOverComplexity(ctx context.Context, threshold int) ([]storage.FunctionComplexity, error)
	ModuleComplexities(ctx context.Context) ([]storage.ModuleComplexity, error)
	FunctionCountsPerModule(ctx context.Context) (map[string]int, error)
	ChurnMetrics(ctx context.Context) ([]models.ChurnMetrics, error)
	TemporalCouplings(ctx context.Context, minCoChanges int, minSimilarity float64) ([]models.TemporalCoupling, error)
	HasHistory(ctx context.Context) (bool, error)
}

// Validator runs a RuleSet against the facts. Each check is isolated:
// a failing check logs and yields no violations instead of aborting
// the run, so one broken table cannot hide every other finding.
type Validator struct {
	store  FactReader
	graph  *graph.DependencyGraph
	logger *logrus.Logger
}

// NewValidator creates a Validator.
func NewValidator(store FactReader, g *graph.DependencyGraph, logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Validator{store: store, graph: g, logger: logger}
}

// Validate runs every configured check and returns violations sorted
// errors first.
func (v *Validator) Validate(ctx context.Context, rs *RuleSet) (*Result, error) {
	result := &Result{Violations: []Violation{}}

	checks := []struct {
		name string
		run  func(context.Context, *RuleSet) ([]Violation, error)
	}{
		{"coupling", v.checkCoupling},
		{"complexity", v.checkComplexity},
		{"churn", v.checkChurn},
		{"temporal_coupling", v.checkTemporal},
		{"circular_dependencies", v.checkCircular},
		{"forbidden_imports", v.checkForbiddenImports},
		{"file_limits", v.checkFileLimits},
	}
	for _, check := range checks {
		violations, err := check.run(ctx, rs)
		if err != nil {
			v.logger.WithError(err).WithField("check", check.name).Warn("rule check failed, skipping")
			continue
		}
		result.Violations = append(result.Violations, violations...)
	}

	sort.SliceStable(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
	for _, viol := range result.Violations {
		if viol.Severity == SeverityError {
			result.Errors++
		} else {
			result.Warnings++
		}
	}
	return result, nil
}

func (v *Validator) checkCoupling(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	c := rs.Thresholds.Coupling
	if c.MaxEfferentCoupling == nil && c.MaxAfferentCoupling == nil && c.MaxInstability == nil {
		return nil, nil
	}

	var violations []Violation
	for _, nc := range v.graph.Centrality() {
		if c.MaxEfferentCoupling != nil && nc.OutDegree > *c.MaxEfferentCoupling {
			violations = append(violations, Violation{
				Rule:      "max_efferent_coupling",
				Severity:  SeverityError,
				Message:   fmt.Sprintf("module %s depends on %d modules (max: %d)", nc.Path, nc.OutDegree, *c.MaxEfferentCoupling),
				Actual:    float64(nc.OutDegree),
				Threshold: float64(*c.MaxEfferentCoupling),
			})
		}
		if c.MaxAfferentCoupling != nil && nc.InDegree > *c.MaxAfferentCoupling {
			violations = append(violations, Violation{
				Rule:      "max_afferent_coupling",
				Severity:  SeverityError,
				Message:   fmt.Sprintf("module %s is depended on by %d modules (max: %d)", nc.Path, nc.InDegree, *c.MaxAfferentCoupling),
				Actual:    float64(nc.InDegree),
				Threshold: float64(*c.MaxAfferentCoupling),
			})
		}
		if c.MaxInstability != nil && nc.Instability > *c.MaxInstability {
			violations = append(violations, Violation{
				Rule:      "max_instability",
				Severity:  SeverityError,
				Message:   fmt.Sprintf("module %s has instability %.2f (max: %.2f)", nc.Path, nc.Instability, *c.MaxInstability),
				Actual:    nc.Instability,
				Threshold: *c.MaxInstability,
			})
		}
	}
	return violations, nil
}

func (v *Validator) checkComplexity(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	c := rs.Thresholds.Complexity
	var violations []Violation

	if c.MaxCyclomaticComplexity != nil {
		funcs, err := v.store.FunctionsOverComplexity(ctx, *c.MaxCyclomaticComplexity)
		if err != nil {
			return nil, err
		}
		for _, fn := range funcs {
			violations = append(violations, Violation{
				Rule:      "max_cyclomatic_complexity",
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("function %s in %s has complexity %d (max: %d)", fn.Name, fn.ModulePath, fn.Complexity, *c.MaxCyclomaticComplexity),
				Actual:    float64(fn.Complexity),
				Threshold: float64(*c.MaxCyclomaticComplexity),
			})
		}
	}

	if c.MaxFileComplexity != nil {
		mods, err := v.store.ModuleComplexities(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range mods {
			if m.TotalComplexity > *c.MaxFileComplexity {
				violations = append(violations, Violation{
					Rule:      "max_file_complexity",
					Severity:  SeverityWarning,
					Message:   fmt.Sprintf("file %s has total complexity %d (max: %d)", m.Path, m.TotalComplexity, *c.MaxFileComplexity),
					Actual:    float64(m.TotalComplexity),
					Threshold: float64(*c.MaxFileComplexity),
				})
			}
		}
	}
	return violations, nil
}

// checkChurn is skipped silently when no history has been ingested:
// absent facts are not violations.
func (v *Validator) checkChurn(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	if rs.Thresholds.Churn.MaxFileChurn == nil {
		return nil, nil
	}
	hasHistory, err := v.store.HasHistory(ctx)
	if err != nil || !hasHistory {
		return nil, err
	}

	churn, err := v.store.ChurnMetrics(ctx)
	if err != nil {
		return nil, err
	}
	max := *rs.Thresholds.Churn.MaxFileChurn
	var violations []Violation
	for _, c := range churn {
		if c.TotalChurn > max {
			violations = append(violations, Violation{
				Rule:      "max_file_churn",
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("file %s has churn %d (max: %d)", c.FilePath, c.TotalChurn, max),
				Actual:    float64(c.TotalChurn),
				Threshold: float64(max),
			})
		}
	}
	return violations, nil
}

func (v *Validator) checkTemporal(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	t := rs.Thresholds.Temporal
	if t.MaxSimilarity == nil && t.WarnSimilarity == nil {
		return nil, nil
	}
	hasHistory, err := v.store.HasHistory(ctx)
	if err != nil || !hasHistory {
		return nil, err
	}

	floor := 1.0
	if t.MaxSimilarity != nil && *t.MaxSimilarity < floor {
		floor = *t.MaxSimilarity
	}
	if t.WarnSimilarity != nil && *t.WarnSimilarity < floor {
		floor = *t.WarnSimilarity
	}
	couplings, err := v.store.TemporalCouplings(ctx, 1, floor)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, tc := range couplings {
		switch {
		case t.MaxSimilarity != nil && tc.JaccardSimilarity > *t.MaxSimilarity:
			violations = append(violations, Violation{
				Rule:      "temporal_coupling",
				Severity:  SeverityError,
				Message:   fmt.Sprintf("high temporal coupling between %s and %s: %.2f (max: %.2f)", tc.FileA, tc.FileB, tc.JaccardSimilarity, *t.MaxSimilarity),
				Actual:    tc.JaccardSimilarity,
				Threshold: *t.MaxSimilarity,
			})
		case t.WarnSimilarity != nil && tc.JaccardSimilarity > *t.WarnSimilarity:
			violations = append(violations, Violation{
				Rule:      "temporal_coupling",
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("temporal coupling between %s and %s: %.2f (threshold: %.2f)", tc.FileA, tc.FileB, tc.JaccardSimilarity, *t.WarnSimilarity),
				Actual:    tc.JaccardSimilarity,
				Threshold: *t.WarnSimilarity,
			})
		}
	}
	return violations, nil
}

func (v *Validator) checkCircular(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	if rs.Circular.Allow && rs.Circular.MaxCycles == nil {
		return nil, nil
	}
	cycles := v.graph.Cycles()

	max := 0
	if rs.Circular.MaxCycles != nil {
		max = *rs.Circular.MaxCycles
	}
	if rs.Circular.Allow && len(cycles) <= max {
		return nil, nil
	}
	if !rs.Circular.Allow && len(cycles) == 0 {
		return nil, nil
	}

	var violations []Violation
	for _, cycle := range cycles {
		violations = append(violations, Violation{
			Rule:      "circular_dependencies",
			Severity:  SeverityError,
			Message:   fmt.Sprintf("dependency cycle: %s", strings.Join(cycle.Path, " -> ")),
			Actual:    float64(len(cycle.Members)),
			Threshold: float64(max),
		})
	}
	return violations, nil
}

func (v *Validator) checkForbiddenImports(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	if len(rs.ForbiddenImports) == 0 {
		return nil, nil
	}

	var violations []Violation
	for _, from := range v.graph.Nodes() {
		for _, to := range v.graph.Dependencies(from) {
			for _, rule := range rs.ForbiddenImports {
				if !matchPattern(rule.From, from) || !matchPattern(rule.To, to) {
					continue
				}
				msg := fmt.Sprintf("forbidden import: %s -> %s", from, to)
				if rule.Reason != "" {
					msg += " (" + rule.Reason + ")"
				}
				violations = append(violations, Violation{
					Rule:     "forbidden_imports",
					Severity: SeverityError,
					Message:  msg,
				})
			}
		}
	}
	return violations, nil
}

func (v *Validator) checkFileLimits(ctx context.Context, rs *RuleSet) ([]Violation, error) {
	if rs.FileLimits.MaxFunctionsPerFile == nil {
		return nil, nil
	}
	counts, err := v.store.FunctionCountsPerModule(ctx)
	if err != nil {
		return nil, err
	}

	max := *rs.FileLimits.MaxFunctionsPerFile
	var violations []Violation
	for path, count := range counts {
		if count > max {
			violations = append(violations, Violation{
				Rule:      "max_functions_per_file",
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("file %s has %d functions (max: %d)", path, count, max),
				Actual:    float64(count),
				Threshold: float64(max),
			})
		}
	}
	return violations, nil
}

// matchPattern matches module paths against rule patterns. "layer/*"
// matches any path under layer/ at any depth; "*" matches everything;
// anything else is an exact path.
func matchPattern(pattern, path string) bool {
	if pattern == "*" || pattern == path {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
