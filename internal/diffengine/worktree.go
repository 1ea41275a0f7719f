// Package diffengine compares the architecture of two revisions. Each
// revision is checked out into a throwaway git worktree, scanned into
// an ephemeral fact store, and reduced to a metric vector; the diff of
// the two vectors is the report.
package diffengine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Worktree is a detached checkout of one ref. Always call Remove;
// a leaked worktree keeps git metadata pinned in the main repository.
type Worktree struct {
	RepoPath string
	Ref      string
	Path     string
	logger   *logrus.Logger
	removed  bool
}

// AddWorktree checks out ref into a temporary detached worktree.
func AddWorktree(ctx context.Context, repoPath, ref string, logger *logrus.Logger) (*Worktree, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	path := filepath.Join(os.TempDir(), "depscope-wt-"+uuid.New().String())

	cmd := exec.CommandContext(ctx, "git", "worktree", "add", "--detach", path, ref)
	cmd.Dir = repoPath
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git worktree add %s: %w (%s)", ref, err, strings.TrimSpace(string(output)))
	}

	logger.WithFields(logrus.Fields{"ref": ref, "path": path}).Debug("worktree created")
	return &Worktree{RepoPath: repoPath, Ref: ref, Path: path, logger: logger}, nil
}

// Remove detaches and deletes the worktree. Safe to call twice. The
// directory is removed even if git refuses, so repeated failures
// cannot fill the temp dir.
func (w *Worktree) Remove(ctx context.Context) error {
	if w.removed {
		return nil
	}
	w.removed = true

	cmd := exec.CommandContext(ctx, "git", "worktree", "remove", "--force", w.Path)
	cmd.Dir = w.RepoPath
	output, err := cmd.CombinedOutput()
	if rmErr := os.RemoveAll(w.Path); rmErr != nil && err == nil {
		err = rmErr
		output = nil
	}
	if err != nil {
		return fmt.Errorf("remove worktree %s: %w (%s)", w.Path, err, strings.TrimSpace(string(output)))
	}
	w.logger.WithField("path", w.Path).Debug("worktree removed")
	return nil
}

// ChangedFiles lists paths that differ between two refs.
func ChangedFiles(ctx context.Context, repoPath, refA, refB string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", refA, refB)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git diff %s..%s: %w (%s)", refA, refB, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git diff %s..%s: %w", refA, refB, err)
	}

	files := []string{}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
