package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/sirupsen/logrus"
)

// sqlStore is the shared sqlx implementation behind both backends.
// Queries are written with ? placeholders and rebound per driver.
// ingestMu gives ingestion single-writer-at-a-time semantics; reads run
// without it and see whole transactions only.
type sqlStore struct {
	db       *sqlx.DB
	logger   *logrus.Logger
	ingestMu sync.Mutex
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// ReplaceModuleFacts upserts the module row and swaps all of its owned
// facts in one transaction.
func (s *sqlStore) ReplaceModuleFacts(ctx context.Context, facts *ModuleFacts) (int64, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	mod := facts.Module
	mod.Path = pathutil.Canonical(mod.Path)
	if err := pathutil.Validate(mod.Path); err != nil {
		return 0, fmt.Errorf("module path: %w", err)
	}
	if mod.LastParsed.IsZero() {
		mod.LastParsed = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var moduleID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO modules (language, path, name, hash, last_parsed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (language, path) DO UPDATE SET
			name = EXCLUDED.name,
			hash = EXCLUDED.hash,
			last_parsed = EXCLUDED.last_parsed
		RETURNING id`),
		mod.Language, mod.Path, mod.Name, mod.Hash, mod.LastParsed,
	).Scan(&moduleID)
	if err != nil {
		return 0, fmt.Errorf("upsert module %s: %w", mod.Path, err)
	}

	// Owned facts are destroyed with the module on re-scan.
	for _, del := range []string{
		`DELETE FROM imports WHERE from_module_id = ?`,
		`DELETE FROM classes WHERE module_id = ?`,
		`DELETE FROM functions WHERE module_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(del), moduleID); err != nil {
			return 0, fmt.Errorf("clear module facts: %w", err)
		}
	}

	classIDs := make([]int64, len(facts.Classes))
	for i, c := range facts.Classes {
		kind := c.Kind
		if kind == "" {
			kind = "class"
		}
		err = tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO classes (module_id, name, kind, line_start, line_end)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
			moduleID, c.Name, kind, c.LineStart, c.LineEnd,
		).Scan(&classIDs[i])
		if err != nil {
			return 0, fmt.Errorf("insert class %s: %w", c.Name, err)
		}
		for _, base := range c.Bases {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO inheritance (class_id, base_name, line) VALUES (?, ?, ?)`),
				classIDs[i], base.Target, base.Line); err != nil {
				return 0, fmt.Errorf("insert inheritance edge: %w", err)
			}
		}
	}

	for _, f := range facts.Functions {
		var classID any
		if f.ClassIndex >= 0 {
			if f.ClassIndex >= len(classIDs) {
				return 0, fmt.Errorf("function %s references class index %d out of range", f.Name, f.ClassIndex)
			}
			classID = classIDs[f.ClassIndex]
		}
		complexity := f.Complexity
		if complexity < 1 {
			s.logger.WithFields(logrus.Fields{
				"module":   mod.Path,
				"function": f.Name,
			}).Warn("clamping cyclomatic complexity to 1")
			complexity = 1
		}
		kind := f.Kind
		if kind == "" {
			kind = "function"
		}
		var functionID int64
		err = tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO functions (module_id, class_id, name, kind, cyclomatic_complexity, is_async)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			moduleID, classID, f.Name, kind, complexity, f.IsAsync,
		).Scan(&functionID)
		if err != nil {
			return 0, fmt.Errorf("insert function %s: %w", f.Name, err)
		}
		for _, call := range f.Calls {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO calls (function_id, callee_name, line) VALUES (?, ?, ?)`),
				functionID, call.Target, call.Line); err != nil {
				return 0, fmt.Errorf("insert call edge: %w", err)
			}
		}
	}

	for _, imp := range facts.Imports {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO imports (from_module_id, to_target, line) VALUES (?, ?, ?)`),
			moduleID, imp.Target, imp.Line); err != nil {
			return 0, fmt.Errorf("insert import edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit module facts: %w", err)
	}
	return moduleID, nil
}

// SaveCommit records one commit with its file changes atomically.
// Commits are immutable: a hash already present keeps its original rows
// and the incoming changes are discarded. The bool reports whether the
// commit was newly inserted.
func (s *sqlStore) SaveCommit(ctx context.Context, commit *models.Commit, changes []models.FileChange) (int64, bool, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO authors (name, email) VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name`),
		commit.AuthorName, commit.AuthorEmail); err != nil {
		return 0, false, fmt.Errorf("upsert author %s: %w", commit.AuthorEmail, err)
	}

	var existingID int64
	err = tx.GetContext(ctx, &existingID, tx.Rebind(`SELECT id FROM commits WHERE hash = ?`), commit.Hash)
	if err == nil {
		return existingID, false, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("look up commit %s: %w", commit.Hash, err)
	}

	var commitID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO commits (hash, author_name, author_email, timestamp, message)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		commit.Hash, commit.AuthorName, commit.AuthorEmail, commit.Timestamp.UTC(), commit.Message,
	).Scan(&commitID)
	if err != nil {
		return 0, false, fmt.Errorf("insert commit %s: %w", commit.Hash, err)
	}

	for _, fc := range changes {
		path := pathutil.Canonical(fc.FilePath)
		if err := pathutil.Validate(path); err != nil {
			s.logger.WithField("path", fc.FilePath).Warn("skipping file change with invalid path")
			continue
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO file_changes (commit_id, file_path, lines_added, lines_deleted, change_type, old_path)
			VALUES (?, ?, ?, ?, ?, ?)`),
			commitID, path, fc.LinesAdded, fc.LinesDeleted, string(fc.ChangeType), fc.OldPath); err != nil {
			return 0, false, fmt.Errorf("insert file change %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit history batch: %w", err)
	}
	return commitID, true, nil
}

// Derived facts below are caches: each recompute replaces the table.

func (s *sqlStore) ReplaceTemporalCouplings(ctx context.Context, couplings []models.TemporalCoupling) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM temporal_coupling`); err != nil {
		return fmt.Errorf("clear temporal coupling: %w", err)
	}
	for _, tc := range couplings {
		a, b := pathutil.OrderPair(tc.FileA, tc.FileB)
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO temporal_coupling (file_a, file_b, co_change_count, jaccard_similarity)
			VALUES (?, ?, ?, ?)`),
			a, b, tc.CoChangeCount, tc.JaccardSimilarity); err != nil {
			return fmt.Errorf("insert coupling %s|%s: %w", a, b, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) ReplaceChurnMetrics(ctx context.Context, churn []models.ChurnMetrics) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM churn_metrics`); err != nil {
		return fmt.Errorf("clear churn metrics: %w", err)
	}
	for _, c := range churn {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO churn_metrics (file_path, total_commits, author_count, lines_added, lines_deleted, total_churn)
			VALUES (?, ?, ?, ?, ?, ?)`),
			c.FilePath, c.TotalCommits, c.AuthorCount, c.LinesAdded, c.LinesDeleted, c.TotalChurn); err != nil {
			return fmt.Errorf("insert churn %s: %w", c.FilePath, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) ReplaceAuthorOwnership(ctx context.Context, ownership []models.AuthorOwnership) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM author_ownership`); err != nil {
		return fmt.Errorf("clear author ownership: %w", err)
	}
	for _, o := range ownership {
		// Recompute jobs identify authors by email; resolve the id here.
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO author_ownership (author_id, file_path, commit_count, lines_contributed)
			SELECT id, ?, ?, ? FROM authors WHERE email = ?`),
			o.FilePath, o.CommitCount, o.LinesContributed, o.AuthorEmail); err != nil {
			return fmt.Errorf("insert ownership %s/%s: %w", o.AuthorEmail, o.FilePath, err)
		}
	}
	return tx.Commit()
}

// Structural queries

func (s *sqlStore) Modules(ctx context.Context) ([]models.Module, error) {
	mods := []models.Module{}
	err := s.db.SelectContext(ctx, &mods, `SELECT * FROM modules ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	return mods, nil
}

func (s *sqlStore) ModuleByPath(ctx context.Context, path string) (*models.Module, error) {
	var mod models.Module
	err := s.db.GetContext(ctx, &mod, s.db.Rebind(`SELECT * FROM modules WHERE path = ?`), pathutil.Canonical(path))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query module %s: %w", path, err)
	}
	return &mod, nil
}

func (s *sqlStore) RawImports(ctx context.Context) ([]RawImport, error) {
	rows := []RawImport{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.path AS from_path, i.to_target AS target, i.line
		FROM imports i
		JOIN modules m ON m.id = i.from_module_id
		ORDER BY m.path, i.line`)
	if err != nil {
		return nil, fmt.Errorf("query raw imports: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) ModuleComplexities(ctx context.Context) ([]ModuleComplexity, error) {
	rows := []ModuleComplexity{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.path,
			COUNT(f.id) AS function_count,
			COALESCE(SUM(f.cyclomatic_complexity), 0) AS total_complexity,
			COALESCE(AVG(f.cyclomatic_complexity), 0) AS avg_complexity
		FROM modules m
		LEFT JOIN functions f ON f.module_id = m.id
		GROUP BY m.id, m.path
		ORDER BY total_complexity DESC`)
	if err != nil {
		return nil, fmt.Errorf("query module complexities: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) FunctionsOverComplexity(ctx context.Context, threshold int) ([]FunctionComplexity, error) {
	rows := []FunctionComplexity{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT m.path AS module_path, f.name, f.cyclomatic_complexity AS complexity
		FROM functions f
		JOIN modules m ON m.id = f.module_id
		WHERE f.cyclomatic_complexity > ?
		ORDER BY f.cyclomatic_complexity DESC, m.path, f.name`), threshold)
	if err != nil {
		return nil, fmt.Errorf("query functions over complexity: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) FunctionCountsPerModule(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Path  string `db:"path"`
		Count int    `db:"count"`
	}{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.path, COUNT(f.id) AS count
		FROM modules m
		LEFT JOIN functions f ON f.module_id = m.id
		GROUP BY m.id, m.path`)
	if err != nil {
		return nil, fmt.Errorf("query function counts: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Path] = r.Count
	}
	return counts, nil
}

func (s *sqlStore) GodClasses(ctx context.Context, complexityThreshold, methodThreshold int) ([]GodClass, error) {
	rows := []GodClass{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT c.name,
			m.path AS module_path,
			COUNT(f.id) AS method_count,
			COALESCE(SUM(f.cyclomatic_complexity), 0) AS total_complexity,
			COALESCE(AVG(f.cyclomatic_complexity), 0) AS avg_complexity,
			c.line_end - c.line_start + 1 AS lines_of_code
		FROM classes c
		JOIN modules m ON m.id = c.module_id
		LEFT JOIN functions f ON f.class_id = c.id
		GROUP BY c.id, c.name, m.path, c.line_start, c.line_end
		HAVING COUNT(f.id) >= ? AND COALESCE(SUM(f.cyclomatic_complexity), 0) >= ?
		ORDER BY total_complexity DESC, method_count DESC`),
		methodThreshold, complexityThreshold)
	if err != nil {
		return nil, fmt.Errorf("query god classes: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) StructuralCounts(ctx context.Context) (*StructuralCounts, error) {
	var counts StructuralCounts
	queries := []struct {
		dest any
		sql  string
	}{
		{&counts.ModuleCount, `SELECT COUNT(*) FROM modules`},
		{&counts.ClassCount, `SELECT COUNT(*) FROM classes`},
		{&counts.FunctionCount, `SELECT COUNT(*) FROM functions`},
		{&counts.ImportCount, `SELECT COUNT(*) FROM imports`},
		{&counts.AvgComplexity, `SELECT COALESCE(AVG(cyclomatic_complexity), 0) FROM functions`},
		{&counts.MaxComplexity, `SELECT COALESCE(MAX(cyclomatic_complexity), 0) FROM functions`},
	}
	for _, q := range queries {
		if err := s.db.GetContext(ctx, q.dest, q.sql); err != nil {
			return nil, fmt.Errorf("structural counts: %w", err)
		}
	}
	return &counts, nil
}

// Historical queries

func (s *sqlStore) CommitFileRows(ctx context.Context) ([]CommitFileRow, error) {
	rows := []CommitFileRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT fc.commit_id, fc.file_path, fc.lines_added, fc.lines_deleted,
			fc.change_type, c.author_name, c.author_email
		FROM file_changes fc
		JOIN commits c ON c.id = fc.commit_id
		ORDER BY fc.commit_id, fc.file_path`)
	if err != nil {
		return nil, fmt.Errorf("query commit file rows: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) TemporalCouplings(ctx context.Context, minCoChanges int, minSimilarity float64) ([]models.TemporalCoupling, error) {
	rows := []models.TemporalCoupling{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT file_a, file_b, co_change_count, jaccard_similarity
		FROM temporal_coupling
		WHERE co_change_count >= ? AND jaccard_similarity >= ?
		ORDER BY jaccard_similarity DESC, co_change_count DESC`),
		minCoChanges, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("query temporal couplings: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) CouplingsForFile(ctx context.Context, path string) ([]models.TemporalCoupling, error) {
	p := pathutil.Canonical(path)
	rows := []models.TemporalCoupling{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT file_a, file_b, co_change_count, jaccard_similarity
		FROM temporal_coupling
		WHERE file_a = ? OR file_b = ?
		ORDER BY jaccard_similarity DESC`), p, p)
	if err != nil {
		return nil, fmt.Errorf("query couplings for %s: %w", path, err)
	}
	return rows, nil
}

func (s *sqlStore) ChurnMetrics(ctx context.Context) ([]models.ChurnMetrics, error) {
	rows := []models.ChurnMetrics{}
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM churn_metrics ORDER BY total_churn DESC`)
	if err != nil {
		return nil, fmt.Errorf("query churn metrics: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) AuthorOwnership(ctx context.Context, filePath string) ([]models.AuthorOwnership, error) {
	query := `
		SELECT ao.author_id, a.name AS author_name, a.email AS author_email,
			ao.file_path, ao.commit_count, ao.lines_contributed
		FROM author_ownership ao
		JOIN authors a ON a.id = ao.author_id`
	args := []any{}
	if filePath != "" {
		query += ` WHERE ao.file_path = ?`
		args = append(args, pathutil.Canonical(filePath))
	}
	query += ` ORDER BY ao.commit_count DESC`

	rows := []models.AuthorOwnership{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query author ownership: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) ShotgunCommits(ctx context.Context, minFiles, limit int) ([]ShotgunCommit, error) {
	rows := []ShotgunCommit{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT c.hash, c.author_name, c.timestamp, c.message,
			COUNT(DISTINCT fc.file_path) AS files_changed,
			COALESCE(SUM(fc.lines_added + fc.lines_deleted), 0) AS total_churn
		FROM commits c
		JOIN file_changes fc ON fc.commit_id = c.id
		GROUP BY c.id, c.hash, c.author_name, c.timestamp, c.message
		HAVING COUNT(DISTINCT fc.file_path) >= ?
		ORDER BY files_changed DESC
		LIMIT ?`), minFiles, limit)
	if err != nil {
		return nil, fmt.Errorf("query shotgun commits: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) AuthorActivities(ctx context.Context) ([]AuthorActivity, error) {
	rows := []AuthorActivity{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.name, a.email,
			MIN(c.timestamp) AS first_commit,
			MAX(c.timestamp) AS last_commit,
			COUNT(DISTINCT fc.file_path) AS files_touched,
			COUNT(DISTINCT c.id) AS total_commits
		FROM authors a
		JOIN commits c ON c.author_email = a.email
		LEFT JOIN file_changes fc ON fc.commit_id = c.id
		GROUP BY a.id, a.name, a.email
		ORDER BY first_commit DESC`)
	if err != nil {
		return nil, fmt.Errorf("query author activities: %w", err)
	}
	return rows, nil
}

func (s *sqlStore) SummaryStats(ctx context.Context) (*SummaryStats, error) {
	var stats SummaryStats
	intQueries := []struct {
		dest *int
		sql  string
	}{
		{&stats.TotalCommits, `SELECT COUNT(*) FROM commits`},
		{&stats.TotalAuthors, `SELECT COUNT(*) FROM authors`},
		{&stats.FilesTracked, `SELECT COUNT(DISTINCT file_path) FROM file_changes WHERE change_type != 'D'`},
		{&stats.TemporalCouplings, `SELECT COUNT(*) FROM temporal_coupling`},
	}
	for _, q := range intQueries {
		if err := s.db.GetContext(ctx, q.dest, q.sql); err != nil {
			return nil, fmt.Errorf("summary stats: %w", err)
		}
	}

	var first, last sql.NullTime
	row := s.db.QueryRowxContext(ctx, `SELECT MIN(timestamp), MAX(timestamp) FROM commits`)
	if err := row.Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("summary date range: %w", err)
	}
	if first.Valid {
		t := first.Time
		stats.FirstCommit = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastCommit = &t
	}
	return &stats, nil
}

// Migration tracking

func (s *sqlStore) SaveMigrationProject(ctx context.Context, id, name, description, targetDate string, tags []string) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO migration_projects (id, name, description, target_date, created_at, tags)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			target_date = EXCLUDED.target_date,
			tags = EXCLUDED.tags`),
		id, name, description, targetDate, time.Now().UTC(), strings.Join(tags, ","))
	if err != nil {
		return fmt.Errorf("save migration project %s: %w", id, err)
	}
	return nil
}

func (s *sqlStore) SaveMigrationPatterns(ctx context.Context, patterns []MigrationPatternRecord) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range patterns {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO migration_patterns (id, migration_id, name, description, pattern_type, search_pattern, severity, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				pattern_type = EXCLUDED.pattern_type,
				search_pattern = EXCLUDED.search_pattern,
				severity = EXCLUDED.severity,
				category = EXCLUDED.category`),
			p.ID, p.MigrationID, p.Name, p.Description, p.PatternType, p.Pattern, p.Severity, p.Category); err != nil {
			return fmt.Errorf("save migration pattern %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) SaveMigrationOccurrences(ctx context.Context, occurrences []MigrationOccurrence) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, occ := range occurrences {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO migration_occurrences (pattern_id, file_path, line_number, matched_text, scanned_at, commit_hash)
			VALUES (?, ?, ?, ?, ?, ?)`),
			occ.PatternID, occ.FilePath, occ.LineNumber, occ.MatchedText, now, occ.CommitHash); err != nil {
			return fmt.Errorf("save migration occurrence: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) MigrationProgressFor(ctx context.Context, migrationID string) (*MigrationProgress, error) {
	progress := &MigrationProgress{
		MigrationID: migrationID,
		BySeverity:  map[string]int{},
	}

	err := s.db.GetContext(ctx, &progress.TotalOccurrences, s.db.Rebind(`
		SELECT COUNT(DISTINCT mo.id)
		FROM migration_occurrences mo
		JOIN migration_patterns mp ON mp.id = mo.pattern_id
		WHERE mp.migration_id = ?`), migrationID)
	if err != nil {
		return nil, fmt.Errorf("migration progress total: %w", err)
	}

	rows := []struct {
		Severity string `db:"severity"`
		Count    int    `db:"count"`
	}{}
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT mp.severity, COUNT(DISTINCT mo.id) AS count
		FROM migration_occurrences mo
		JOIN migration_patterns mp ON mp.id = mo.pattern_id
		WHERE mp.migration_id = ?
		GROUP BY mp.severity`), migrationID)
	if err != nil {
		return nil, fmt.Errorf("migration progress by severity: %w", err)
	}
	for _, r := range rows {
		progress.BySeverity[r.Severity] = r.Count
	}

	err = s.db.GetContext(ctx, &progress.AffectedFiles, s.db.Rebind(`
		SELECT COUNT(DISTINCT mo.file_path)
		FROM migration_occurrences mo
		JOIN migration_patterns mp ON mp.id = mo.pattern_id
		WHERE mp.migration_id = ?`), migrationID)
	if err != nil {
		return nil, fmt.Errorf("migration progress affected files: %w", err)
	}
	return progress, nil
}

func (s *sqlStore) HasHistory(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM commits`); err != nil {
		return false, fmt.Errorf("check history presence: %w", err)
	}
	return count > 0, nil
}
