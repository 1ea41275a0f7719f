package migration

import (
	"context"
	"fmt"

	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// FactStore is the slice of the storage contract tracking needs.
type FactStore interface {
	SaveMigrationProject(ctx context.Context, id, name, description, targetDate string, tags []string) error
	SaveMigrationPatterns(ctx context.Context, patterns []storage.MigrationPatternRecord) error
	SaveMigrationOccurrences(ctx context.Context, occurrences []storage.MigrationOccurrence) error
	MigrationProgressFor(ctx context.Context, migrationID string) (*storage.MigrationProgress, error)
}

// Tracker persists scan results and reads progress back.
type Tracker struct {
	store  FactStore
	logger *logrus.Logger
}

// NewTracker creates a Tracker.
func NewTracker(store FactStore, logger *logrus.Logger) *Tracker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tracker{store: store, logger: logger}
}

// Record saves the project, its patterns, and one scan's occurrences.
// commitHash stamps the occurrences with the revision they were found
// at, so successive scans are comparable.
func (t *Tracker) Record(ctx context.Context, cfg *Config, occurrences []storage.MigrationOccurrence, commitHash string) error {
	if err := t.store.SaveMigrationProject(ctx, cfg.MigrationID, cfg.Name, cfg.Description, cfg.TargetDate, cfg.Tags); err != nil {
		return fmt.Errorf("save project %s: %w", cfg.MigrationID, err)
	}

	records := make([]storage.MigrationPatternRecord, len(cfg.Patterns))
	for i, p := range cfg.Patterns {
		records[i] = storage.MigrationPatternRecord{
			ID:          p.ID,
			MigrationID: cfg.MigrationID,
			Name:        p.Name,
			Description: p.Description,
			PatternType: p.Type,
			Pattern:     p.Pattern,
			Severity:    p.Severity,
			Category:    p.Category,
		}
	}
	if err := t.store.SaveMigrationPatterns(ctx, records); err != nil {
		return fmt.Errorf("save patterns for %s: %w", cfg.MigrationID, err)
	}

	for i := range occurrences {
		occurrences[i].CommitHash = commitHash
	}
	if err := t.store.SaveMigrationOccurrences(ctx, occurrences); err != nil {
		return fmt.Errorf("save occurrences for %s: %w", cfg.MigrationID, err)
	}

	t.logger.WithFields(logrus.Fields{
		"migration":   cfg.MigrationID,
		"occurrences": len(occurrences),
	}).Info("migration scan recorded")
	return nil
}

// Progress returns the latest aggregate for a migration.
func (t *Tracker) Progress(ctx context.Context, migrationID string) (*storage.MigrationProgress, error) {
	return t.store.MigrationProgressFor(ctx, migrationID)
}
