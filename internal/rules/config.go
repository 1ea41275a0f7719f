// Package rules validates a repository against a declarative rule
// file, the CI gate over the fact store.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Severity levels for violations.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// CouplingThresholds bound structural coupling per module.
type CouplingThresholds struct {
	MaxEfferentCoupling *int     `yaml:"max_efferent_coupling"`
	MaxAfferentCoupling *int     `yaml:"max_afferent_coupling"`
	MaxInstability      *float64 `yaml:"max_instability"`
}

// ComplexityThresholds bound cyclomatic complexity.
type ComplexityThresholds struct {
	MaxCyclomaticComplexity *int `yaml:"max_cyclomatic_complexity"`
	MaxFileComplexity       *int `yaml:"max_file_complexity"`
}

// ChurnThresholds bound historical churn.
type ChurnThresholds struct {
	MaxFileChurn *int `yaml:"max_file_churn"`
}

// TemporalThresholds bound co-change similarity. Values above Max are
// errors; values above Warn are warnings.
type TemporalThresholds struct {
	MaxSimilarity  *float64 `yaml:"max_temporal_coupling_similarity"`
	WarnSimilarity *float64 `yaml:"warn_temporal_coupling_similarity"`
}

// Thresholds groups all numeric rule limits.
type Thresholds struct {
	Coupling   CouplingThresholds   `yaml:"coupling"`
	Complexity ComplexityThresholds `yaml:"complexity"`
	Churn      ChurnThresholds      `yaml:"churn"`
	Temporal   TemporalThresholds   `yaml:"temporal_coupling"`
}

// CircularRules govern dependency cycles.
type CircularRules struct {
	Allow     bool `yaml:"allow"`
	MaxCycles *int `yaml:"max_cycles"`
}

// ForbiddenImport names a layer edge that must not exist. From and To
// are path patterns: "ui/*" matches everything under ui/.
type ForbiddenImport struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Reason string `yaml:"reason"`
}

// FileLimits bound per-file size.
type FileLimits struct {
	MaxFunctionsPerFile *int `yaml:"max_functions_per_file"`
}

// RuleSet is the parsed rule file.
type RuleSet struct {
	Thresholds       Thresholds        `yaml:"thresholds"`
	Circular         CircularRules     `yaml:"circular_dependencies"`
	ForbiddenImports []ForbiddenImport `yaml:"forbidden_imports"`
	FileLimits       FileLimits        `yaml:"file_limits"`
}

// DefaultRuleFile is looked up in the repository root.
const DefaultRuleFile = ".depscope.yml"

// Load reads and parses a rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	rs := &RuleSet{Circular: CircularRules{Allow: true}}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}
	return rs, nil
}
