package storage

// Schema is split by fact family the way the queries are: structural
// tables are replaced per module by the extractor, historical tables are
// append-only for commits and replace-on-recompute for derived facts.

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS modules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language TEXT NOT NULL,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		hash TEXT NOT NULL DEFAULT '',
		last_parsed DATETIME,
		UNIQUE(language, path)
	);

	CREATE TABLE IF NOT EXISTS classes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		module_id INTEGER NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'class',
		line_start INTEGER NOT NULL DEFAULT 0,
		line_end INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS functions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		module_id INTEGER NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		class_id INTEGER REFERENCES classes(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'function',
		cyclomatic_complexity INTEGER NOT NULL DEFAULT 1 CHECK (cyclomatic_complexity >= 1),
		is_async INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_module_id INTEGER NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		to_target TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS inheritance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		class_id INTEGER NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
		base_name TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		function_id INTEGER NOT NULL REFERENCES functions(id) ON DELETE CASCADE,
		callee_name TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS authors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS commits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash TEXT NOT NULL UNIQUE,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS file_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		commit_id INTEGER NOT NULL REFERENCES commits(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		lines_added INTEGER NOT NULL DEFAULT 0,
		lines_deleted INTEGER NOT NULL DEFAULT 0,
		change_type TEXT NOT NULL CHECK (change_type IN ('A','M','D','R','C')),
		old_path TEXT
	);

	CREATE TABLE IF NOT EXISTS temporal_coupling (
		file_a TEXT NOT NULL,
		file_b TEXT NOT NULL,
		co_change_count INTEGER NOT NULL,
		jaccard_similarity REAL NOT NULL CHECK (jaccard_similarity >= 0 AND jaccard_similarity <= 1),
		PRIMARY KEY (file_a, file_b),
		CHECK (file_a < file_b)
	);

	CREATE TABLE IF NOT EXISTS churn_metrics (
		file_path TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		author_count INTEGER NOT NULL,
		lines_added INTEGER NOT NULL,
		lines_deleted INTEGER NOT NULL,
		total_churn INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS author_ownership (
		author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		commit_count INTEGER NOT NULL,
		lines_contributed INTEGER NOT NULL,
		PRIMARY KEY (author_id, file_path)
	);

	CREATE TABLE IF NOT EXISTS migration_projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		target_date TEXT,
		created_at DATETIME NOT NULL,
		tags TEXT
	);

	CREATE TABLE IF NOT EXISTS migration_patterns (
		id TEXT PRIMARY KEY,
		migration_id TEXT NOT NULL REFERENCES migration_projects(id),
		name TEXT NOT NULL,
		description TEXT,
		pattern_type TEXT NOT NULL,
		search_pattern TEXT NOT NULL,
		severity TEXT,
		category TEXT
	);

	CREATE TABLE IF NOT EXISTS migration_occurrences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pattern_id TEXT NOT NULL REFERENCES migration_patterns(id),
		file_path TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		matched_text TEXT,
		scanned_at DATETIME NOT NULL,
		commit_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_imports_from ON imports(from_module_id);
	CREATE INDEX IF NOT EXISTS idx_functions_module ON functions(module_id);
	CREATE INDEX IF NOT EXISTS idx_file_changes_commit ON file_changes(commit_id);
	CREATE INDEX IF NOT EXISTS idx_file_changes_path ON file_changes(file_path);
	CREATE INDEX IF NOT EXISTS idx_coupling_a ON temporal_coupling(file_a);
	CREATE INDEX IF NOT EXISTS idx_coupling_b ON temporal_coupling(file_b);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS modules (
		id BIGSERIAL PRIMARY KEY,
		language TEXT NOT NULL,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		hash TEXT NOT NULL DEFAULT '',
		last_parsed TIMESTAMPTZ,
		UNIQUE(language, path)
	);

	CREATE TABLE IF NOT EXISTS classes (
		id BIGSERIAL PRIMARY KEY,
		module_id BIGINT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'class',
		line_start INTEGER NOT NULL DEFAULT 0,
		line_end INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS functions (
		id BIGSERIAL PRIMARY KEY,
		module_id BIGINT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		class_id BIGINT REFERENCES classes(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'function',
		cyclomatic_complexity INTEGER NOT NULL DEFAULT 1 CHECK (cyclomatic_complexity >= 1),
		is_async BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS imports (
		id BIGSERIAL PRIMARY KEY,
		from_module_id BIGINT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		to_target TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS inheritance (
		id BIGSERIAL PRIMARY KEY,
		class_id BIGINT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
		base_name TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS calls (
		id BIGSERIAL PRIMARY KEY,
		function_id BIGINT NOT NULL REFERENCES functions(id) ON DELETE CASCADE,
		callee_name TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS commits (
		id BIGSERIAL PRIMARY KEY,
		hash TEXT NOT NULL UNIQUE,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS file_changes (
		id BIGSERIAL PRIMARY KEY,
		commit_id BIGINT NOT NULL REFERENCES commits(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		lines_added INTEGER NOT NULL DEFAULT 0,
		lines_deleted INTEGER NOT NULL DEFAULT 0,
		change_type TEXT NOT NULL CHECK (change_type IN ('A','M','D','R','C')),
		old_path TEXT
	);

	CREATE TABLE IF NOT EXISTS temporal_coupling (
		file_a TEXT NOT NULL,
		file_b TEXT NOT NULL,
		co_change_count INTEGER NOT NULL,
		jaccard_similarity DOUBLE PRECISION NOT NULL CHECK (jaccard_similarity >= 0 AND jaccard_similarity <= 1),
		PRIMARY KEY (file_a, file_b),
		CHECK (file_a < file_b)
	);

	CREATE TABLE IF NOT EXISTS churn_metrics (
		file_path TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		author_count INTEGER NOT NULL,
		lines_added INTEGER NOT NULL,
		lines_deleted INTEGER NOT NULL,
		total_churn INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS author_ownership (
		author_id BIGINT NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		commit_count INTEGER NOT NULL,
		lines_contributed INTEGER NOT NULL,
		PRIMARY KEY (author_id, file_path)
	);

	CREATE TABLE IF NOT EXISTS migration_projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		target_date TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		tags TEXT
	);

	CREATE TABLE IF NOT EXISTS migration_patterns (
		id TEXT PRIMARY KEY,
		migration_id TEXT NOT NULL REFERENCES migration_projects(id),
		name TEXT NOT NULL,
		description TEXT,
		pattern_type TEXT NOT NULL,
		search_pattern TEXT NOT NULL,
		severity TEXT,
		category TEXT
	);

	CREATE TABLE IF NOT EXISTS migration_occurrences (
		id BIGSERIAL PRIMARY KEY,
		pattern_id TEXT NOT NULL REFERENCES migration_patterns(id),
		file_path TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		matched_text TEXT,
		scanned_at TIMESTAMPTZ NOT NULL,
		commit_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_imports_from ON imports(from_module_id);
	CREATE INDEX IF NOT EXISTS idx_functions_module ON functions(module_id);
	CREATE INDEX IF NOT EXISTS idx_file_changes_commit ON file_changes(commit_id);
	CREATE INDEX IF NOT EXISTS idx_file_changes_path ON file_changes(file_path);
	CREATE INDEX IF NOT EXISTS idx_coupling_a ON temporal_coupling(file_a);
	CREATE INDEX IF NOT EXISTS idx_coupling_b ON temporal_coupling(file_b);
`
