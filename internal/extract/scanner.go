package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

// skipDirs are directory names never worth parsing.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".mypy_cache":  true,
}

// ModuleWriter is the slice of the storage contract the scanner needs.
type ModuleWriter interface {
	ReplaceModuleFacts(ctx context.Context, facts *storage.ModuleFacts) (int64, error)
}

// ScanResult summarizes one structural scan.
type ScanResult struct {
	ModulesParsed int      `json:"modules_parsed"`
	FilesSkipped  int      `json:"files_skipped"`
	ParseFailures []string `json:"parse_failures,omitempty"`
}

// Scanner walks a source tree and loads structural facts.
type Scanner struct {
	extractor Extractor
	store     ModuleWriter
	logger    *logrus.Logger
}

// NewScanner creates a Scanner. A nil extractor gets the tree-sitter
// default.
func NewScanner(extractor Extractor, store ModuleWriter, logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if extractor == nil {
		extractor = NewTreeSitterExtractor()
	}
	return &Scanner{extractor: extractor, store: store, logger: logger}
}

// ScanDir parses every supported file under root and replaces its
// facts in the store. Unparseable files are recorded and skipped, not
// fatal: one broken file must not block the rest of the scan.
func (s *Scanner) ScanDir(ctx context.Context, root string) (*ScanResult, error) {
	result := &ScanResult{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extractor.Supports(path) {
			result.FilesSkipped++
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = pathutil.Canonical(filepath.ToSlash(rel))

		code, err := os.ReadFile(path)
		if err != nil {
			s.logger.WithError(err).WithField("file", rel).Warn("read failed, skipping")
			result.ParseFailures = append(result.ParseFailures, rel)
			return nil
		}
		facts, err := s.extractor.Extract(rel, code)
		if err != nil {
			s.logger.WithError(err).WithField("file", rel).Warn("parse failed, skipping")
			result.ParseFailures = append(result.ParseFailures, rel)
			return nil
		}
		if _, err := s.store.ReplaceModuleFacts(ctx, facts); err != nil {
			return fmt.Errorf("store facts for %s: %w", rel, err)
		}
		result.ModulesParsed++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	s.logger.WithFields(logrus.Fields{
		"parsed":   result.ModulesParsed,
		"skipped":  result.FilesSkipped,
		"failures": len(result.ParseFailures),
	}).Info("structural scan complete")
	return result, nil
}
