package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rohankatakam/depscope/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// ModuleFacts bundles everything the structural extractor produces for one
// source file. ReplaceModuleFacts swaps the whole bundle atomically so a
// re-scan never leaves a module half-ingested. Nested facts reference
// their parent by slice index because database ids do not exist yet.
type ModuleFacts struct {
	Module    models.Module
	Classes   []ClassFact
	Functions []FunctionFact
	Imports   []ImportFact
}

// ClassFact is one class plus its raw base-class references.
type ClassFact struct {
	Name      string
	Kind      string
	LineStart int
	LineEnd   int
	Bases     []EdgeRef
}

// FunctionFact is one function plus its raw call targets. ClassIndex
// points into ModuleFacts.Classes, -1 for module-level functions.
type FunctionFact struct {
	Name       string
	Kind       string
	ClassIndex int
	Complexity int
	IsAsync    bool
	Calls      []EdgeRef
}

// ImportFact is one raw import target with its source line.
type ImportFact struct {
	Target string
	Line   int
}

// EdgeRef is a raw symbolic edge target with its source line.
type EdgeRef struct {
	Target string
	Line   int
}

// RawImport is an import edge joined with its source module path, the
// shape the graph resolver consumes. Target is still the raw string.
type RawImport struct {
	FromPath string `db:"from_path"`
	Target   string `db:"target"`
	Line     int    `db:"line"`
}

// CommitFileRow is one (commit, file) event joined with author identity,
// the input to the temporal coupling engine.
type CommitFileRow struct {
	CommitID     int64             `db:"commit_id"`
	FilePath     string            `db:"file_path"`
	LinesAdded   int               `db:"lines_added"`
	LinesDeleted int               `db:"lines_deleted"`
	ChangeType   models.ChangeType `db:"change_type"`
	AuthorName   string            `db:"author_name"`
	AuthorEmail  string            `db:"author_email"`
}

// ModuleComplexity is the per-module complexity aggregate used by
// hotspot scoring and god-class style checks.
type ModuleComplexity struct {
	Path            string  `db:"path"`
	FunctionCount   int     `db:"function_count"`
	TotalComplexity int     `db:"total_complexity"`
	AvgComplexity   float64 `db:"avg_complexity"`
}

// GodClass is a class whose method count and summed complexity exceed
// the configured thresholds.
type GodClass struct {
	Name            string  `json:"name" db:"name"`
	ModulePath      string  `json:"module_path" db:"module_path"`
	MethodCount     int     `json:"method_count" db:"method_count"`
	TotalComplexity int     `json:"total_complexity" db:"total_complexity"`
	AvgComplexity   float64 `json:"avg_complexity" db:"avg_complexity"`
	LinesOfCode     int     `json:"lines_of_code" db:"lines_of_code"`
}

// ShotgunCommit is a commit that touched many files at once.
type ShotgunCommit struct {
	Hash         string    `json:"hash" db:"hash"`
	AuthorName   string    `json:"author_name" db:"author_name"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Message      string    `json:"message" db:"message"`
	FilesChanged int       `json:"files_changed" db:"files_changed"`
	TotalChurn   int       `json:"total_churn" db:"total_churn"`
}

// AuthorActivity is the onboarding aggregate per developer.
type AuthorActivity struct {
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	FirstCommit  time.Time `json:"first_commit" db:"first_commit"`
	LastCommit   time.Time `json:"last_commit" db:"last_commit"`
	FilesTouched int       `json:"files_touched" db:"files_touched"`
	TotalCommits int       `json:"total_commits" db:"total_commits"`
}

// StructuralCounts are the SQL-side aggregates of the diff engine's
// metric vector. Coupling averages come from the graph resolver, not
// from here, because import targets are raw strings until resolved.
type StructuralCounts struct {
	ModuleCount   int     `json:"module_count"`
	ClassCount    int     `json:"class_count"`
	FunctionCount int     `json:"function_count"`
	ImportCount   int     `json:"import_count"`
	AvgComplexity float64 `json:"avg_cyclomatic_complexity"`
	MaxComplexity float64 `json:"max_cyclomatic_complexity"`
}

// FunctionComplexity is one function joined with its module path, the
// shape complexity rule checks report on.
type FunctionComplexity struct {
	ModulePath string `json:"module_path" db:"module_path"`
	Name       string `json:"name" db:"name"`
	Complexity int    `json:"complexity" db:"complexity"`
}

// SummaryStats describes one repository's historical fact store.
type SummaryStats struct {
	TotalCommits      int        `json:"total_commits"`
	TotalAuthors      int        `json:"total_authors"`
	FilesTracked      int        `json:"files_tracked"`
	TemporalCouplings int        `json:"temporal_couplings"`
	FirstCommit       *time.Time `json:"first_commit,omitempty"`
	LastCommit        *time.Time `json:"last_commit,omitempty"`
}

// MigrationOccurrence is one hit of a migration pattern at scan time.
type MigrationOccurrence struct {
	PatternID   string `json:"pattern_id" db:"pattern_id"`
	FilePath    string `json:"file_path" db:"file_path"`
	LineNumber  int    `json:"line_number" db:"line_number"`
	MatchedText string `json:"matched_text" db:"matched_text"`
	ScannedAt   string `json:"scanned_at" db:"scanned_at"`
	CommitHash  string `json:"commit_hash,omitempty" db:"commit_hash"`
}

// MigrationPatternRecord persists a pattern definition alongside its
// occurrences so progress can be grouped by severity.
type MigrationPatternRecord struct {
	ID          string `db:"id"`
	MigrationID string `db:"migration_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	PatternType string `db:"pattern_type"`
	Pattern     string `db:"search_pattern"`
	Severity    string `db:"severity"`
	Category    string `db:"category"`
}

// MigrationProgress summarizes scan results for one migration project.
type MigrationProgress struct {
	MigrationID      string         `json:"migration_id"`
	TotalOccurrences int            `json:"total_occurrences"`
	BySeverity       map[string]int `json:"by_severity"`
	AffectedFiles    int            `json:"affected_files"`
}

// Store defines the fact store contract. Ingestion methods are
// single-writer; query methods are read-only and safe to run
// concurrently. Queries over empty tables return empty results, never
// errors.
type Store interface {
	// Structural ingestion
	ReplaceModuleFacts(ctx context.Context, facts *ModuleFacts) (int64, error)

	// Historical ingestion
	SaveCommit(ctx context.Context, commit *models.Commit, changes []models.FileChange) (int64, bool, error)

	// Derived-fact recompute (replace, never append)
	ReplaceTemporalCouplings(ctx context.Context, couplings []models.TemporalCoupling) error
	ReplaceChurnMetrics(ctx context.Context, churn []models.ChurnMetrics) error
	ReplaceAuthorOwnership(ctx context.Context, ownership []models.AuthorOwnership) error

	// Structural queries
	Modules(ctx context.Context) ([]models.Module, error)
	ModuleByPath(ctx context.Context, path string) (*models.Module, error)
	RawImports(ctx context.Context) ([]RawImport, error)
	ModuleComplexities(ctx context.Context) ([]ModuleComplexity, error)
	FunctionsOverComplexity(ctx context.Context, threshold int) ([]FunctionComplexity, error)
	FunctionCountsPerModule(ctx context.Context) (map[string]int, error)
	GodClasses(ctx context.Context, complexityThreshold, methodThreshold int) ([]GodClass, error)
	StructuralCounts(ctx context.Context) (*StructuralCounts, error)

	// Historical queries
	CommitFileRows(ctx context.Context) ([]CommitFileRow, error)
	TemporalCouplings(ctx context.Context, minCoChanges int, minSimilarity float64) ([]models.TemporalCoupling, error)
	CouplingsForFile(ctx context.Context, path string) ([]models.TemporalCoupling, error)
	ChurnMetrics(ctx context.Context) ([]models.ChurnMetrics, error)
	AuthorOwnership(ctx context.Context, filePath string) ([]models.AuthorOwnership, error)
	ShotgunCommits(ctx context.Context, minFiles, limit int) ([]ShotgunCommit, error)
	AuthorActivities(ctx context.Context) ([]AuthorActivity, error)
	SummaryStats(ctx context.Context) (*SummaryStats, error)

	// Migration tracking
	SaveMigrationProject(ctx context.Context, id, name, description, targetDate string, tags []string) error
	SaveMigrationPatterns(ctx context.Context, patterns []MigrationPatternRecord) error
	SaveMigrationOccurrences(ctx context.Context, occurrences []MigrationOccurrence) error
	MigrationProgressFor(ctx context.Context, migrationID string) (*MigrationProgress, error)

	// HasHistory reports whether any historical facts have been ingested.
	// Rule checks backed by history fail silently when this is false.
	HasHistory(ctx context.Context) (bool, error)

	Close() error
}
