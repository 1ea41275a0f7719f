package history

import (
	"context"
	"fmt"

	"github.com/rohankatakam/depscope/internal/models"
	"github.com/sirupsen/logrus"
)

// CommitWriter is the slice of the storage contract ingestion needs.
type CommitWriter interface {
	SaveCommit(ctx context.Context, commit *models.Commit, changes []models.FileChange) (int64, bool, error)
}

// Ingest writes mined commits to the store and returns how many were
// newly inserted. Commits already present are skipped by the store, so
// repeated runs over the same history report zero.
func Ingest(ctx context.Context, store CommitWriter, records []CommitRecord, logger *logrus.Logger) (int, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	inserted := 0
	for i := range records {
		_, isNew, err := store.SaveCommit(ctx, &records[i].Commit, records[i].Changes)
		if err != nil {
			return inserted, fmt.Errorf("ingest commit %s: %w", records[i].Commit.Hash, err)
		}
		if isNew {
			inserted++
		}
	}
	logger.WithFields(logrus.Fields{"commits": len(records), "new": inserted}).Info("commit history ingested")
	return inserted, nil
}
