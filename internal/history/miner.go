// Package history mines commit history from a git working copy and
// loads it into the fact store.
package history

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/sirupsen/logrus"
)

// commitMarker starts each commit header line. Control characters keep
// the format unambiguous regardless of what a commit subject contains.
const (
	commitMarker = "\x01"
	fieldSep     = "\x1f"
	logFormat    = commitMarker + "%H" + fieldSep + "%an" + fieldSep + "%ae" + fieldSep + "%at" + fieldSep + "%s"
)

// CommitRecord is one mined commit with its file-level changes.
type CommitRecord struct {
	Commit  models.Commit
	Changes []models.FileChange
}

// Miner reads history from a git repository by shelling out to git.
type Miner struct {
	repoPath string
	logger   *logrus.Logger
}

// Options bound a mining run.
type Options struct {
	// MaxCommits limits the walk; zero means unlimited.
	MaxCommits int
	// Since passes a git-parseable date ("6 months ago", "2024-01-01").
	Since string
	// Ref selects the starting revision; empty means HEAD.
	Ref string
}

// NewMiner creates a miner for the repository at repoPath.
func NewMiner(repoPath string, logger *logrus.Logger) *Miner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Miner{repoPath: repoPath, logger: logger}
}

// Log walks history and returns commits oldest first, so ingestion
// assigns ascending ids in chronological order.
//
// Two passes merge into one record set: --name-status supplies change
// types and rename sources, --numstat supplies line counts. Merge
// commits are skipped; their changes replay the merged branches.
func (m *Miner) Log(ctx context.Context, opts Options) ([]CommitRecord, error) {
	statuses, err := m.nameStatusPass(ctx, opts)
	if err != nil {
		return nil, err
	}
	records, err := m.numstatPass(ctx, opts, statuses)
	if err != nil {
		return nil, err
	}

	// git log emits newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	m.logger.WithFields(logrus.Fields{
		"repo":    m.repoPath,
		"commits": len(records),
	}).Debug("history mined")
	return records, nil
}

func (m *Miner) baseArgs(opts Options, diffFlag string) []string {
	args := []string{"log", "--no-merges", diffFlag, "--format=" + logFormat}
	if opts.MaxCommits > 0 {
		args = append(args, "-n", strconv.Itoa(opts.MaxCommits))
	}
	if opts.Since != "" {
		args = append(args, "--since="+opts.Since)
	}
	if opts.Ref != "" {
		args = append(args, opts.Ref)
	}
	return args
}

func (m *Miner) runGit(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = m.repoPath
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(output), nil
}

type changeStatus struct {
	changeType models.ChangeType
	oldPath    string
}

// nameStatusPass collects change type letters per (commit, path).
func (m *Miner) nameStatusPass(ctx context.Context, opts Options) (map[string]map[string]changeStatus, error) {
	output, err := m.runGit(ctx, m.baseArgs(opts, "--name-status"))
	if err != nil {
		return nil, err
	}
	return parseNameStatus(output), nil
}

func parseNameStatus(output string) map[string]map[string]changeStatus {
	statuses := map[string]map[string]changeStatus{}
	var currentHash string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, commitMarker) {
			fields := strings.Split(strings.TrimPrefix(line, commitMarker), fieldSep)
			if len(fields) < 1 {
				continue
			}
			currentHash = fields[0]
			statuses[currentHash] = map[string]changeStatus{}
			continue
		}
		if currentHash == "" || strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		// Rename and copy lines carry a similarity score: R095, C100.
		letter := models.ChangeType(parts[0][:1])
		switch letter {
		case models.ChangeRenamed, models.ChangeCopied:
			if len(parts) < 3 {
				continue
			}
			statuses[currentHash][pathutil.Canonical(parts[2])] = changeStatus{
				changeType: letter,
				oldPath:    pathutil.Canonical(parts[1]),
			}
		case models.ChangeAdded, models.ChangeModified, models.ChangeDeleted:
			statuses[currentHash][pathutil.Canonical(parts[1])] = changeStatus{changeType: letter}
		}
	}
	return statuses
}

// numstatPass builds the commit records, joining line counts with the
// statuses from the first pass.
func (m *Miner) numstatPass(ctx context.Context, opts Options, statuses map[string]map[string]changeStatus) ([]CommitRecord, error) {
	output, err := m.runGit(ctx, m.baseArgs(opts, "--numstat"))
	if err != nil {
		return nil, err
	}
	return parseNumstat(output, statuses)
}

func parseNumstat(output string, statuses map[string]map[string]changeStatus) ([]CommitRecord, error) {
	var records []CommitRecord
	var current *CommitRecord
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, commitMarker) {
			fields := strings.Split(strings.TrimPrefix(line, commitMarker), fieldSep)
			if len(fields) < 5 {
				continue
			}
			epoch, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse commit timestamp %q: %w", fields[3], err)
			}
			records = append(records, CommitRecord{Commit: models.Commit{
				Hash:        fields[0],
				AuthorName:  fields[1],
				AuthorEmail: fields[2],
				Timestamp:   time.Unix(epoch, 0).UTC(),
				Message:     fields[4],
			}})
			current = &records[len(records)-1]
			continue
		}
		if current == nil || strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}
		path, renameSource := parseNumstatPath(parts[2])
		change := models.FileChange{
			FilePath:   path,
			ChangeType: models.ChangeModified,
		}
		// Binary files report "-" for both counts.
		if added, err := strconv.Atoi(parts[0]); err == nil {
			change.LinesAdded = added
		}
		if deleted, err := strconv.Atoi(parts[1]); err == nil {
			change.LinesDeleted = deleted
		}
		if st, ok := statuses[current.Commit.Hash][path]; ok {
			change.ChangeType = st.changeType
			if st.oldPath != "" {
				old := st.oldPath
				change.OldPath = &old
			}
		} else if renameSource != "" {
			change.ChangeType = models.ChangeRenamed
			change.OldPath = &renameSource
		}
		current.Changes = append(current.Changes, change)
	}
	return records, nil
}

// parseNumstatPath handles the two rename spellings numstat emits:
// "old => new" and "prefix/{old => new}/suffix".
func parseNumstatPath(raw string) (path, renameSource string) {
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.Index(raw, "}"); j > i {
			inner := raw[i+1 : j]
			if k := strings.Index(inner, " => "); k >= 0 {
				prefix, suffix := raw[:i], raw[j+1:]
				oldMid, newMid := inner[:k], inner[k+4:]
				renameSource = pathutil.Canonical(prefix + oldMid + suffix)
				return pathutil.Canonical(prefix + newMid + suffix), renameSource
			}
		}
	}
	if k := strings.Index(raw, " => "); k >= 0 {
		return pathutil.Canonical(raw[k+4:]), pathutil.Canonical(raw[:k])
	}
	return pathutil.Canonical(raw), ""
}
