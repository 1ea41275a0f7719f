package analytics

import (
	"context"
	"fmt"

	"github.com/rohankatakam/depscope/internal/storage"
)

// GodClasses reports classes whose size and complexity passed the
// configured thresholds. Zero thresholds take the defaults.
func (a *Analyzer) GodClasses(ctx context.Context, complexityThreshold, methodThreshold int) ([]storage.GodClass, error) {
	if complexityThreshold <= 0 {
		complexityThreshold = DefaultGodClassComplexity
	}
	if methodThreshold <= 0 {
		methodThreshold = DefaultGodClassMethods
	}
	classes, err := a.store.GodClasses(ctx, complexityThreshold, methodThreshold)
	if err != nil {
		return nil, fmt.Errorf("load god classes: %w", err)
	}
	return classes, nil
}

// ShotgunSurgery reports commits that touched minFiles or more files.
// Zero arguments take the defaults.
func (a *Analyzer) ShotgunSurgery(ctx context.Context, minFiles, limit int) ([]storage.ShotgunCommit, error) {
	if minFiles <= 0 {
		minFiles = DefaultShotgunFiles
	}
	if limit <= 0 {
		limit = DefaultShotgunLimit
	}
	hasHistory, err := a.store.HasHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("check history: %w", err)
	}
	if !hasHistory {
		return []storage.ShotgunCommit{}, nil
	}
	commits, err := a.store.ShotgunCommits(ctx, minFiles, limit)
	if err != nil {
		return nil, fmt.Errorf("load shotgun commits: %w", err)
	}
	return commits, nil
}
