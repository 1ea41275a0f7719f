// Package temporal derives co-change facts from stored commit history:
// which files change together, how often each file churns, and who
// owns what.
package temporal

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// DefaultMinCoChanges is the materialization floor: every pair that
// co-changed at least once is persisted. Filtering out low-count noise
// happens at query time, so single-commit couplings stay visible to
// blast radius and hidden-dependency lookups.
const DefaultMinCoChanges = 1

// FactStore is the slice of the storage contract the engine needs.
type FactStore interface {
	CommitFileRows(ctx context.Context) ([]storage.CommitFileRow, error)
	ReplaceTemporalCouplings(ctx context.Context, couplings []models.TemporalCoupling) error
	ReplaceChurnMetrics(ctx context.Context, churn []models.ChurnMetrics) error
	ReplaceAuthorOwnership(ctx context.Context, ownership []models.AuthorOwnership) error
}

// Engine recomputes derived temporal facts from raw commit history.
type Engine struct {
	store        FactStore
	logger       *logrus.Logger
	minCoChanges int
	workers      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinCoChanges overrides the persistence floor for pair counts.
func WithMinCoChanges(n int) Option {
	return func(e *Engine) { e.minCoChanges = n }
}

// WithWorkers overrides the shard count for pair counting.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine creates a recompute engine over the given store.
func NewEngine(store FactStore, logger *logrus.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{
		store:        store,
		logger:       logger,
		minCoChanges: DefaultMinCoChanges,
		workers:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Result summarizes one recompute pass.
type Result struct {
	CommitsAnalyzed int `json:"commits_analyzed"`
	CouplingPairs   int `json:"coupling_pairs"`
	FilesWithChurn  int `json:"files_with_churn"`
	OwnershipRows   int `json:"ownership_rows"`
}

type pairKey struct {
	a, b string
}

// Recompute rebuilds temporal coupling, churn metrics, and author
// ownership from the file_changes table, replacing previous results.
func (e *Engine) Recompute(ctx context.Context) (*Result, error) {
	rows, err := e.store.CommitFileRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commit history: %w", err)
	}

	// A file is "present" in a commit when it was touched by anything
	// other than a deletion. Deletions end a file's history and must
	// not strengthen its couplings.
	commits := groupByCommit(rows)
	fileCommits := make(map[string]int)
	for _, files := range commits {
		for _, f := range files {
			fileCommits[f]++
		}
	}

	pairCounts, err := e.countPairs(ctx, commits)
	if err != nil {
		return nil, err
	}

	couplings := make([]models.TemporalCoupling, 0, len(pairCounts))
	for pair, co := range pairCounts {
		if co < e.minCoChanges {
			continue
		}
		union := fileCommits[pair.a] + fileCommits[pair.b] - co
		if union == 0 {
			continue
		}
		couplings = append(couplings, models.TemporalCoupling{
			FileA:             pair.a,
			FileB:             pair.b,
			CoChangeCount:     co,
			JaccardSimilarity: float64(co) / float64(union),
		})
	}
	sort.Slice(couplings, func(i, j int) bool {
		if couplings[i].FileA != couplings[j].FileA {
			return couplings[i].FileA < couplings[j].FileA
		}
		return couplings[i].FileB < couplings[j].FileB
	})

	churn := computeChurn(rows)
	ownership := computeOwnership(rows)

	if err := e.store.ReplaceTemporalCouplings(ctx, couplings); err != nil {
		return nil, fmt.Errorf("persist couplings: %w", err)
	}
	if err := e.store.ReplaceChurnMetrics(ctx, churn); err != nil {
		return nil, fmt.Errorf("persist churn: %w", err)
	}
	if err := e.store.ReplaceAuthorOwnership(ctx, ownership); err != nil {
		return nil, fmt.Errorf("persist ownership: %w", err)
	}

	result := &Result{
		CommitsAnalyzed: len(commits),
		CouplingPairs:   len(couplings),
		FilesWithChurn:  len(churn),
		OwnershipRows:   len(ownership),
	}
	e.logger.WithFields(logrus.Fields{
		"commits":   result.CommitsAnalyzed,
		"pairs":     result.CouplingPairs,
		"files":     result.FilesWithChurn,
		"ownership": result.OwnershipRows,
	}).Info("temporal facts recomputed")
	return result, nil
}

func groupByCommit(rows []storage.CommitFileRow) map[int64][]string {
	commits := make(map[int64][]string)
	seen := make(map[int64]map[string]bool)
	for _, r := range rows {
		if r.ChangeType == models.ChangeDeleted {
			continue
		}
		path := pathutil.Canonical(r.FilePath)
		if seen[r.CommitID] == nil {
			seen[r.CommitID] = make(map[string]bool)
		}
		if seen[r.CommitID][path] {
			continue
		}
		seen[r.CommitID][path] = true
		commits[r.CommitID] = append(commits[r.CommitID], path)
	}
	return commits
}

// countPairs shards the commit list across workers. Each worker counts
// pairs locally; the partial maps merge under a mutex after each shard
// finishes, so no pair counter is shared while counting.
func (e *Engine) countPairs(ctx context.Context, commits map[int64][]string) (map[pairKey]int, error) {
	groups := make([][]string, 0, len(commits))
	for _, files := range commits {
		if len(files) < 2 {
			continue
		}
		sort.Strings(files)
		groups = append(groups, files)
	}

	workers := e.workers
	if workers > len(groups) {
		workers = len(groups)
	}
	if workers <= 1 {
		total := make(map[pairKey]int)
		countShard(groups, total)
		return total, nil
	}

	var mu sync.Mutex
	total := make(map[pairKey]int)
	g, _ := errgroup.WithContext(ctx)
	chunk := (len(groups) + workers - 1) / workers
	for start := 0; start < len(groups); start += chunk {
		end := start + chunk
		if end > len(groups) {
			end = len(groups)
		}
		shard := groups[start:end]
		g.Go(func() error {
			local := make(map[pairKey]int)
			countShard(shard, local)
			mu.Lock()
			for k, v := range local {
				total[k] += v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return total, nil
}

func countShard(groups [][]string, counts map[pairKey]int) {
	for _, files := range groups {
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				a, b := pathutil.OrderPair(files[i], files[j])
				counts[pairKey{a, b}]++
			}
		}
	}
}

func computeChurn(rows []storage.CommitFileRow) []models.ChurnMetrics {
	type churnAcc struct {
		commits map[int64]bool
		authors map[string]bool
		added   int
		deleted int
	}
	acc := make(map[string]*churnAcc)
	for _, r := range rows {
		if r.ChangeType == models.ChangeDeleted {
			continue
		}
		path := pathutil.Canonical(r.FilePath)
		c := acc[path]
		if c == nil {
			c = &churnAcc{commits: map[int64]bool{}, authors: map[string]bool{}}
			acc[path] = c
		}
		c.commits[r.CommitID] = true
		c.authors[r.AuthorEmail] = true
		c.added += r.LinesAdded
		c.deleted += r.LinesDeleted
	}

	out := make([]models.ChurnMetrics, 0, len(acc))
	for path, c := range acc {
		out = append(out, models.ChurnMetrics{
			FilePath:     path,
			TotalCommits: len(c.commits),
			AuthorCount:  len(c.authors),
			LinesAdded:   c.added,
			LinesDeleted: c.deleted,
			TotalChurn:   c.added + c.deleted,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

func computeOwnership(rows []storage.CommitFileRow) []models.AuthorOwnership {
	type ownKey struct {
		email, path string
	}
	type ownAcc struct {
		name    string
		commits map[int64]bool
		lines   int
	}
	acc := make(map[ownKey]*ownAcc)
	for _, r := range rows {
		if r.ChangeType == models.ChangeDeleted {
			continue
		}
		key := ownKey{r.AuthorEmail, pathutil.Canonical(r.FilePath)}
		o := acc[key]
		if o == nil {
			o = &ownAcc{name: r.AuthorName, commits: map[int64]bool{}}
			acc[key] = o
		}
		o.commits[r.CommitID] = true
		o.lines += r.LinesAdded
	}

	out := make([]models.AuthorOwnership, 0, len(acc))
	for key, o := range acc {
		out = append(out, models.AuthorOwnership{
			AuthorName:       o.name,
			AuthorEmail:      key.email,
			FilePath:         key.path,
			CommitCount:      len(o.commits),
			LinesContributed: o.lines,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].AuthorEmail < out[j].AuthorEmail
	})
	return out
}
