package models

import (
	"time"
)

// Module represents a parsed source file, keyed by (language, path).
// Replaced wholesale by the structural extractor on each re-scan; the
// content hash lets an extractor skip unchanged files.
type Module struct {
	ID         int64     `json:"id" db:"id"`
	Language   string    `json:"language" db:"language"`
	Path       string    `json:"path" db:"path"`
	Name       string    `json:"name" db:"name"`
	Hash       string    `json:"hash" db:"hash"`
	LastParsed time.Time `json:"last_parsed" db:"last_parsed"`
}

// Class is owned by a Module and destroyed with it on re-scan.
type Class struct {
	ID        int64  `json:"id" db:"id"`
	ModuleID  int64  `json:"module_id" db:"module_id"`
	Name      string `json:"name" db:"name"`
	Kind      string `json:"kind" db:"kind"`
	LineStart int    `json:"line_start" db:"line_start"`
	LineEnd   int    `json:"line_end" db:"line_end"`
}

// Function is owned by a Module and optionally back-references a Class.
// Complexity is cyclomatic complexity and is always >= 1.
type Function struct {
	ID         int64  `json:"id" db:"id"`
	ModuleID   int64  `json:"module_id" db:"module_id"`
	ClassID    *int64 `json:"class_id,omitempty" db:"class_id"`
	Name       string `json:"name" db:"name"`
	Kind       string `json:"kind" db:"kind"`
	Complexity int    `json:"complexity" db:"complexity"`
	IsAsync    bool   `json:"is_async" db:"is_async"`
}

// Import, inheritance, and call edges are written through the
// storage.ModuleFacts bundle and read back joined with their module
// (storage.RawImport), so they carry no standalone row type here.

// ChangeType is the single-letter git status code for a file change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "A"
	ChangeModified ChangeType = "M"
	ChangeDeleted  ChangeType = "D"
	ChangeRenamed  ChangeType = "R"
	ChangeCopied   ChangeType = "C"
)

// Commit is immutable once recorded, unique by hash.
type Commit struct {
	ID          int64     `json:"id" db:"id"`
	Hash        string    `json:"hash" db:"hash"`
	AuthorName  string    `json:"author_name" db:"author_name"`
	AuthorEmail string    `json:"author_email" db:"author_email"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Message     string    `json:"message" db:"message"`
}

// Author is a distinct committer identity, keyed by email.
type Author struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// FileChange is one file touched by one commit. Deletions carry no
// "presence": they are excluded from coupling and churn membership.
type FileChange struct {
	ID           int64      `json:"id" db:"id"`
	CommitID     int64      `json:"commit_id" db:"commit_id"`
	FilePath     string     `json:"file_path" db:"file_path"`
	LinesAdded   int        `json:"lines_added" db:"lines_added"`
	LinesDeleted int        `json:"lines_deleted" db:"lines_deleted"`
	ChangeType   ChangeType `json:"change_type" db:"change_type"`
	OldPath      *string    `json:"old_path,omitempty" db:"old_path"`
}

// TemporalCoupling is a derived fact: Jaccard similarity between two
// files' commit-presence sets. FileA < FileB lexicographically, always.
type TemporalCoupling struct {
	FileA             string  `json:"file_a" db:"file_a"`
	FileB             string  `json:"file_b" db:"file_b"`
	CoChangeCount     int     `json:"co_change_count" db:"co_change_count"`
	JaccardSimilarity float64 `json:"jaccard_similarity" db:"jaccard_similarity"`
}

// ChurnMetrics is a derived per-file aggregate, recomputed on each pass.
type ChurnMetrics struct {
	FilePath     string `json:"file_path" db:"file_path"`
	TotalCommits int    `json:"total_commits" db:"total_commits"`
	AuthorCount  int    `json:"author_count" db:"author_count"`
	LinesAdded   int    `json:"lines_added" db:"lines_added"`
	LinesDeleted int    `json:"lines_deleted" db:"lines_deleted"`
	TotalChurn   int    `json:"total_churn" db:"total_churn"`
}

// AuthorOwnership is a derived per-(author,file) aggregate. Primary and
// secondary owner derivations are computed downstream from these rows.
type AuthorOwnership struct {
	AuthorID         int64  `json:"author_id" db:"author_id"`
	AuthorName       string `json:"author_name" db:"author_name"`
	AuthorEmail      string `json:"author_email" db:"author_email"`
	FilePath         string `json:"file_path" db:"file_path"`
	CommitCount      int    `json:"commit_count" db:"commit_count"`
	LinesContributed int    `json:"lines_contributed" db:"lines_contributed"`
}
