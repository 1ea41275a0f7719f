// Package analytics composes graph structure with temporal facts into
// the composite reports: blast radius, hotspots, hidden dependencies,
// test impact, and team analytics.
package analytics

import (
	"context"

	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// Defaults for composite scoring thresholds.
const (
	// DefaultTemporalThreshold marks a coupling strong enough to count
	// as a change-propagation path.
	DefaultTemporalThreshold = 0.3
	// DefaultGodClassComplexity and DefaultGodClassMethods gate the
	// god class report.
	DefaultGodClassComplexity = 50
	DefaultGodClassMethods    = 20
	// DefaultShotgunFiles is the minimum files touched for a commit to
	// count as shotgun surgery; DefaultShotgunLimit caps the report.
	DefaultShotgunFiles = 5
	DefaultShotgunLimit = 50
)

// FactReader is the slice of the storage contract analytics needs.
type FactReader interface {
	CouplingsForFile(ctx context.Context, path string) ([]models.TemporalCoupling, error)
	TemporalCouplings(ctx context.Context, minCoChanges int, minSimilarity float64) ([]models.TemporalCoupling, error)
	ChurnMetrics(ctx context.Context) ([]models.ChurnMetrics, error)
	AuthorOwnership(ctx context.Context, filePath string) ([]models.AuthorOwnership, error)
	ModuleComplexities(ctx context.Context) ([]storage.ModuleComplexity, error)
	GodClasses(ctx context.Context, complexityThreshold, methodThreshold int) ([]storage.GodClass, error)
	ShotgunCommits(ctx context.Context, minFiles, limit int) ([]storage.ShotgunCommit, error)
	AuthorActivities(ctx context.Context) ([]storage.AuthorActivity, error)
	HasHistory(ctx context.Context) (bool, error)
}

// Analyzer runs composite analyses over a loaded dependency graph and
// the fact store behind it.
type Analyzer struct {
	graph  *graph.DependencyGraph
	store  FactReader
	logger *logrus.Logger
}

// New creates an Analyzer.
func New(g *graph.DependencyGraph, store FactReader, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Analyzer{graph: g, store: store, logger: logger}
}
