package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rohankatakam/depscope/internal/models"
	"github.com/rohankatakam/depscope/internal/pathutil"
	"github.com/rohankatakam/depscope/internal/storage"
)

// Extractor turns one source file into structural facts.
type Extractor interface {
	// Supports reports whether the path has a parseable extension.
	Supports(path string) bool
	// Extract parses code and returns the facts for path.
	Extract(path string, code []byte) (*storage.ModuleFacts, error)
}

// TreeSitterExtractor parses Python, JavaScript, and TypeScript.
// It is not safe for concurrent use; give each worker its own.
type TreeSitterExtractor struct {
	parsers map[string]*languageParser
}

// NewTreeSitterExtractor creates an extractor with lazily bound
// grammars.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	return &TreeSitterExtractor{parsers: map[string]*languageParser{}}
}

// Close releases all bound parsers.
func (e *TreeSitterExtractor) Close() {
	for _, lp := range e.parsers {
		lp.Close()
	}
	e.parsers = map[string]*languageParser{}
}

// Supports implements Extractor.
func (e *TreeSitterExtractor) Supports(path string) bool {
	return DetectLanguage(path) != ""
}

// Extract implements Extractor.
func (e *TreeSitterExtractor) Extract(path string, code []byte) (*storage.ModuleFacts, error) {
	path = pathutil.Canonical(path)
	lang := DetectLanguage(path)
	if lang == "" {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	lp, ok := e.parsers[lang]
	if !ok {
		var err error
		lp, err = newLanguageParser(lang)
		if err != nil {
			return nil, err
		}
		e.parsers[lang] = lp
	}

	tree, err := lp.parse(code)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	hash := sha256.Sum256(code)
	facts := &storage.ModuleFacts{
		Module: models.Module{
			Language:   lang,
			Path:       path,
			Name:       pathutil.Stem(path),
			Hash:       hex.EncodeToString(hash[:]),
			LastParsed: time.Now().UTC(),
		},
	}

	root := tree.RootNode()
	switch lang {
	case "python":
		extractPython(root, code, facts)
	case "javascript", "typescript":
		extractScript(root, code, facts)
	}
	return facts, nil
}
