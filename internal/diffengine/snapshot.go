package diffengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/depscope/internal/extract"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/storage"
)

// Snapshot is the metric vector of one revision.
type Snapshot struct {
	Ref     string             `json:"ref"`
	Metrics map[string]float64 `json:"metrics"`
}

// Metric names produced by snapshots. Every metric in the vector is
// judged lower-is-better when diffed.
const (
	MetricModules       = "modules"
	MetricClasses       = "classes"
	MetricFunctions     = "functions"
	MetricImports       = "imports"
	MetricAvgComplexity = "avg_complexity"
	MetricMaxComplexity = "max_complexity"
	MetricCycles        = "circular_dependencies"
	MetricAvgDeps       = "avg_dependencies"
	MetricMaxEfferent   = "max_efferent_coupling"
	MetricMaxAfferent   = "max_afferent_coupling"
	MetricHubs          = "hub_modules"
)

// snapshotRef checks out ref, scans it into a throwaway sqlite store,
// and reduces the facts to a metric vector. All resources are cleaned
// up before return.
func snapshotRef(ctx context.Context, repoPath, ref string, logger *logrus.Logger) (*Snapshot, error) {
	wt, err := AddWorktree(ctx, repoPath, ref, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := wt.Remove(context.WithoutCancel(ctx)); err != nil {
			logger.WithError(err).Warn("worktree cleanup failed")
		}
	}()

	dbPath := filepath.Join(os.TempDir(), "depscope-snap-"+uuid.New().String()+".db")
	store, err := storage.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("snapshot store for %s: %w", ref, err)
	}
	defer func() {
		store.Close()
		os.Remove(dbPath)
	}()

	extractor := extract.NewTreeSitterExtractor()
	defer extractor.Close()
	scanner := extract.NewScanner(extractor, store, logger)
	if _, err := scanner.ScanDir(ctx, wt.Path); err != nil {
		return nil, fmt.Errorf("scan ref %s: %w", ref, err)
	}

	return buildSnapshot(ctx, ref, store, logger)
}

func buildSnapshot(ctx context.Context, ref string, store storage.Store, logger *logrus.Logger) (*Snapshot, error) {
	counts, err := store.StructuralCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counts for %s: %w", ref, err)
	}
	g, err := graph.Load(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("graph for %s: %w", ref, err)
	}

	hubs := 0
	maxOut, maxIn := 0, 0
	for _, nc := range g.Centrality() {
		if nc.IsHub {
			hubs++
		}
		if nc.OutDegree > maxOut {
			maxOut = nc.OutDegree
		}
		if nc.InDegree > maxIn {
			maxIn = nc.InDegree
		}
	}
	avgDeps := 0.0
	if g.Size() > 0 {
		avgDeps = float64(g.EdgeCount()) / float64(g.Size())
	}

	return &Snapshot{
		Ref: ref,
		Metrics: map[string]float64{
			MetricModules:       float64(counts.ModuleCount),
			MetricClasses:       float64(counts.ClassCount),
			MetricFunctions:     float64(counts.FunctionCount),
			MetricImports:       float64(counts.ImportCount),
			MetricAvgComplexity: counts.AvgComplexity,
			MetricMaxComplexity: counts.MaxComplexity,
			MetricCycles:        float64(len(g.Cycles())),
			MetricAvgDeps:       avgDeps,
			MetricMaxEfferent:   float64(maxOut),
			MetricMaxAfferent:   float64(maxIn),
			MetricHubs:          float64(hubs),
		},
	}, nil
}
