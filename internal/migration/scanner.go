package migration

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/rohankatakam/depscope/internal/storage"
	"github.com/sirupsen/logrus"
)

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
}

// Scanner finds pattern occurrences in a source tree.
type Scanner struct {
	repoPath string
	logger   *logrus.Logger
}

// NewScanner creates a Scanner rooted at repoPath.
func NewScanner(repoPath string, logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{repoPath: repoPath, logger: logger}
}

// Scan runs every pattern in cfg over the tree. Unreadable files are
// skipped; a bad regex fails the scan up front rather than midway.
func (s *Scanner) Scan(ctx context.Context, cfg *Config) ([]storage.MigrationOccurrence, error) {
	matchers, err := compileMatchers(cfg)
	if err != nil {
		return nil, err
	}

	occurrences := []storage.MigrationOccurrence{}
	err = filepath.WalkDir(s.repoPath, func(p string, d fs.DirEntry, err error) error {
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

		rel, err := filepath.Rel(s.repoPath, p)
		if err != nil {
			return err
		}
		rel = pathutil.Canonical(filepath.ToSlash(rel))

		applicable := matchers[:0:0]
		for _, m := range matchers {
			if m.matchesFile(rel) {
				applicable = append(applicable, m)
			}
		}
		if len(applicable) == 0 {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			s.logger.WithError(err).WithField("file", rel).Warn("unreadable file skipped")
			return nil
		}
		lines := strings.Split(string(data), "\n")
		for _, m := range applicable {
			occurrences = append(occurrences, m.scan(rel, lines)...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("migration scan: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"patterns":    len(cfg.Patterns),
		"occurrences": len(occurrences),
	}).Info("migration scan complete")
	return occurrences, nil
}

type matcher struct {
	pattern Pattern
	regex   *regexp.Regexp
}

func compileMatchers(cfg *Config) ([]matcher, error) {
	matchers := make([]matcher, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		if len(p.FilePatterns) == 0 {
			p.FilePatterns = []string{"*.py"}
		}
		m := matcher{pattern: p}
		switch p.Type {
		case TypeRegex:
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern %s: %w", p.ID, err)
			}
			m.regex = re
		case TypeCall:
			// foo.bar becomes a literal call-site search: foo.bar(...
			re, err := regexp.Compile(regexp.QuoteMeta(p.Pattern) + `\s*\(`)
			if err != nil {
				return nil, fmt.Errorf("pattern %s: %w", p.ID, err)
			}
			m.regex = re
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// matchesFile checks the pattern's file globs against a relative
// path. Globs match the base name, or the whole path when they
// contain a separator; a leading **/ matches any directory.
func (m matcher) matchesFile(rel string) bool {
	for _, glob := range m.pattern.FilePatterns {
		glob = strings.TrimPrefix(glob, "**/")
		var target string
		if strings.Contains(glob, "/") {
			target = rel
		} else {
			target = path.Base(rel)
		}
		if ok, err := path.Match(glob, target); err == nil && ok {
			return true
		}
	}
	return false
}

func (m matcher) scan(rel string, lines []string) []storage.MigrationOccurrence {
	var out []storage.MigrationOccurrence
	for i, line := range lines {
		var hit bool
		switch m.pattern.Type {
		case TypeRegex, TypeCall:
			hit = m.regex.MatchString(line)
		case TypeImport:
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
				hit = strings.Contains(trimmed, m.pattern.Pattern)
			}
		}
		if !hit {
			continue
		}
		out = append(out, storage.MigrationOccurrence{
			PatternID:   m.pattern.ID,
			FilePath:    rel,
			LineNumber:  i + 1,
			MatchedText: strings.TrimSpace(line),
		})
	}
	return out
}
