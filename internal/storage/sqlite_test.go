package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/depscope/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "facts.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFacts(path string) *ModuleFacts {
	return &ModuleFacts{
		Module: models.Module{
			Language: "python",
			Path:     path,
			Name:     filepath.Base(path),
			Hash:     "abc123",
		},
		Classes: []ClassFact{
			{Name: "Service", Kind: "class", LineStart: 1, LineEnd: 40, Bases: []EdgeRef{{Target: "BaseService", Line: 1}}},
		},
		Functions: []FunctionFact{
			{Name: "handle", Kind: "method", ClassIndex: 0, Complexity: 4, Calls: []EdgeRef{{Target: "helper", Line: 10}}},
			{Name: "helper", Kind: "function", ClassIndex: -1, Complexity: 2},
		},
		Imports: []ImportFact{
			{Target: "os", Line: 1},
			{Target: "core.db", Line: 2},
		},
	}
}

func TestReplaceModuleFactsRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.ReplaceModuleFacts(ctx, sampleFacts("api/service.py"))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	mod, err := store.ModuleByPath(ctx, "api/service.py")
	require.NoError(t, err)
	assert.Equal(t, "python", mod.Language)
	assert.Equal(t, "abc123", mod.Hash)

	imports, err := store.RawImports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "api/service.py", imports[0].FromPath)
	assert.Equal(t, "os", imports[0].Target)

	complexities, err := store.ModuleComplexities(ctx)
	require.NoError(t, err)
	require.Len(t, complexities, 1)
	assert.Equal(t, 2, complexities[0].FunctionCount)
	assert.Equal(t, 6, complexities[0].TotalComplexity)
}

func TestReplaceModuleFactsIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.ReplaceModuleFacts(ctx, sampleFacts("api/service.py"))
	require.NoError(t, err)

	// Re-scan with fewer facts: children must be replaced, not appended.
	facts := sampleFacts("api/service.py")
	facts.Functions = facts.Functions[:1]
	facts.Imports = nil
	second, err := store.ReplaceModuleFacts(ctx, facts)
	require.NoError(t, err)
	assert.Equal(t, first, second, "module row is reused on re-scan")

	counts, err := store.FunctionCountsPerModule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["api/service.py"])

	imports, err := store.RawImports(ctx)
	require.NoError(t, err)
	assert.Empty(t, imports)
}

func TestReplaceModuleFactsClampsComplexity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	facts := sampleFacts("low.py")
	facts.Functions = []FunctionFact{{Name: "f", Kind: "function", ClassIndex: -1, Complexity: 0}}
	_, err := store.ReplaceModuleFacts(ctx, facts)
	require.NoError(t, err)

	complexities, err := store.ModuleComplexities(ctx)
	require.NoError(t, err)
	require.Len(t, complexities, 1)
	assert.Equal(t, 1, complexities[0].TotalComplexity)
}

func TestModuleByPathNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ModuleByPath(context.Background(), "ghost.py")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGodClasses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	facts := sampleFacts("fat.py")
	facts.Classes = []ClassFact{{Name: "God", Kind: "class", LineStart: 1, LineEnd: 500}}
	facts.Functions = nil
	for i := 0; i < 21; i++ {
		facts.Functions = append(facts.Functions, FunctionFact{
			Name: "m" + string(rune('a'+i)), Kind: "method", ClassIndex: 0, Complexity: 3,
		})
	}
	_, err := store.ReplaceModuleFacts(ctx, facts)
	require.NoError(t, err)

	classes, err := store.GodClasses(ctx, 50, 20)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "God", classes[0].Name)
	assert.Equal(t, 21, classes[0].MethodCount)
	assert.Equal(t, 63, classes[0].TotalComplexity)

	// Stricter thresholds exclude it.
	classes, err = store.GodClasses(ctx, 100, 20)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func saveTestCommit(t *testing.T, store *SQLiteStore, hash, email string, ts time.Time, paths ...string) (int64, bool) {
	t.Helper()
	changes := make([]models.FileChange, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, models.FileChange{
			FilePath: p, LinesAdded: 10, LinesDeleted: 2, ChangeType: models.ChangeModified,
		})
	}
	id, inserted, err := store.SaveCommit(context.Background(), &models.Commit{
		Hash:        hash,
		AuthorName:  "Dev",
		AuthorEmail: email,
		Timestamp:   ts,
		Message:     "change " + hash,
	}, changes)
	require.NoError(t, err)
	return id, inserted
}

func TestSaveCommitIsIdempotentByHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, inserted := saveTestCommit(t, store, "aaa111", "dev@example.com", ts, "a.py", "b.py")
	assert.True(t, inserted)
	second, inserted := saveTestCommit(t, store, "aaa111", "dev@example.com", ts, "a.py", "b.py")
	assert.False(t, inserted, "re-saving the same hash is not a new commit")
	assert.Equal(t, first, second)

	rows, err := store.CommitFileRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "re-saving the same hash adds no file changes")
	assert.Equal(t, "dev@example.com", rows[0].AuthorEmail)

	has, err := store.HasHistory(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSaveCommitSkipsInvalidPaths(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, _, err := store.SaveCommit(ctx, &models.Commit{
		Hash: "bbb222", AuthorName: "Dev", AuthorEmail: "dev@example.com", Timestamp: ts, Message: "m",
	}, []models.FileChange{
		{FilePath: "ok.py", ChangeType: models.ChangeAdded},
		{FilePath: "../escape.py", ChangeType: models.ChangeAdded},
	})
	require.NoError(t, err)

	rows, err := store.CommitFileRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ok.py", rows[0].FilePath)
}

func TestTemporalCouplingQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	couplings := []models.TemporalCoupling{
		{FileA: "a.py", FileB: "b.py", CoChangeCount: 5, JaccardSimilarity: 0.8},
		{FileA: "a.py", FileB: "c.py", CoChangeCount: 2, JaccardSimilarity: 0.4},
		{FileA: "b.py", FileB: "c.py", CoChangeCount: 1, JaccardSimilarity: 0.1},
	}
	require.NoError(t, store.ReplaceTemporalCouplings(ctx, couplings))

	got, err := store.TemporalCouplings(ctx, 2, 0.3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.8, got[0].JaccardSimilarity, "strongest pair first")

	forA, err := store.CouplingsForFile(ctx, "c.py")
	require.NoError(t, err)
	assert.Len(t, forA, 2, "matches both sides of the pair")

	// Replacement is wholesale.
	require.NoError(t, store.ReplaceTemporalCouplings(ctx, couplings[:1]))
	got, err = store.TemporalCouplings(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOwnershipResolvesAuthorByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	saveTestCommit(t, store, "ccc333", "alice@example.com", ts, "a.py")

	require.NoError(t, store.ReplaceAuthorOwnership(ctx, []models.AuthorOwnership{
		{AuthorEmail: "alice@example.com", FilePath: "a.py", CommitCount: 3, LinesContributed: 42},
		{AuthorEmail: "nobody@example.com", FilePath: "a.py", CommitCount: 1, LinesContributed: 5},
	}))

	rows, err := store.AuthorOwnership(ctx, "a.py")
	require.NoError(t, err)
	require.Len(t, rows, 1, "unknown emails are dropped")
	assert.Equal(t, "alice@example.com", rows[0].AuthorEmail)
	assert.Equal(t, 3, rows[0].CommitCount)
	assert.Equal(t, 42, rows[0].LinesContributed)
}

func TestShotgunCommitsAndSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	saveTestCommit(t, store, "ddd444", "dev@example.com", base, "a.py", "b.py", "c.py")
	saveTestCommit(t, store, "eee555", "dev@example.com", base.Add(24*time.Hour), "a.py")

	shotgun, err := store.ShotgunCommits(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, shotgun, 1)
	assert.Equal(t, "ddd444", shotgun[0].Hash)
	assert.Equal(t, 3, shotgun[0].FilesChanged)

	stats, err := store.SummaryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCommits)
	assert.Equal(t, 1, stats.TotalAuthors)
	assert.Equal(t, 3, stats.FilesTracked)
	require.NotNil(t, stats.FirstCommit)
	require.NotNil(t, stats.LastCommit)
	assert.True(t, stats.LastCommit.After(*stats.FirstCommit))
}

func TestStructuralCountsOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	counts, err := store.StructuralCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, counts.ModuleCount)
	assert.Equal(t, 0.0, counts.AvgComplexity)

	has, err := store.HasHistory(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMigrationProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMigrationProject(ctx, "drop-flask", "Drop Flask", "", "2026-01-01", []string{"backend"}))
	require.NoError(t, store.SaveMigrationPatterns(ctx, []MigrationPatternRecord{
		{ID: "flask-import", MigrationID: "drop-flask", Name: "Flask import", PatternType: "import", Pattern: "flask", Severity: "error", Category: "framework"},
		{ID: "flask-route", MigrationID: "drop-flask", Name: "Route decorator", PatternType: "regex", Pattern: `@app\.route`, Severity: "warning", Category: "framework"},
	}))
	require.NoError(t, store.SaveMigrationOccurrences(ctx, []MigrationOccurrence{
		{PatternID: "flask-import", FilePath: "app.py", LineNumber: 1, MatchedText: "import flask"},
		{PatternID: "flask-route", FilePath: "app.py", LineNumber: 10, MatchedText: "@app.route"},
		{PatternID: "flask-route", FilePath: "views.py", LineNumber: 3, MatchedText: "@app.route"},
	}))

	progress, err := store.MigrationProgressFor(ctx, "drop-flask")
	require.NoError(t, err)
	assert.Equal(t, 3, progress.TotalOccurrences)
	assert.Equal(t, 2, progress.AffectedFiles)
	assert.Equal(t, 1, progress.BySeverity["error"])
	assert.Equal(t, 2, progress.BySeverity["warning"])
}
