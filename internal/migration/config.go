// Package migration tracks large refactors: configured patterns are
// scanned for in the tree, and the shrinking occurrence count over
// time is the migration's progress.
package migration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pattern types.
const (
	TypeRegex  = "regex"
	TypeImport = "import"
	TypeCall   = "call"
)

// Pattern is one thing to hunt for during a migration.
type Pattern struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Type         string   `yaml:"type"`
	Pattern      string   `yaml:"pattern"`
	FilePatterns []string `yaml:"file_patterns"`
	Severity     string   `yaml:"severity"`
	Category     string   `yaml:"category"`
}

// Config describes one migration project.
type Config struct {
	MigrationID string    `yaml:"migration_id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	TargetDate  string    `yaml:"target_date"`
	Tags        []string  `yaml:"tags"`
	Patterns    []Pattern `yaml:"patterns"`
}

// LoadConfig reads a migration YAML file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read migration config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse migration config %s: %w", path, err)
	}
	if cfg.MigrationID == "" {
		return nil, fmt.Errorf("migration config %s: migration_id is required", path)
	}

	for i := range cfg.Patterns {
		p := &cfg.Patterns[i]
		if p.ID == "" {
			return nil, fmt.Errorf("migration config %s: pattern %d has no id", path, i)
		}
		if p.Severity == "" {
			p.Severity = "info"
		}
		if p.Category == "" {
			p.Category = "general"
		}
		if len(p.FilePatterns) == 0 {
			p.FilePatterns = []string{"*.py"}
		}
		switch p.Type {
		case TypeRegex, TypeImport, TypeCall:
		default:
			return nil, fmt.Errorf("migration config %s: pattern %s has unsupported type %q", path, p.ID, p.Type)
		}
	}
	return cfg, nil
}
