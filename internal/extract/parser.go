// Package extract parses source files with tree-sitter and turns them
// into structural facts: classes, functions, imports, inheritance, and
// call edges.
package extract

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageParser wraps a tree-sitter parser bound to one grammar.
// Close must be called; the parser holds CGO-managed memory.
type languageParser struct {
	parser *sitter.Parser
	lang   string
}

func newLanguageParser(lang string) (*languageParser, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("create tree-sitter parser")
	}

	var language *sitter.Language
	switch lang {
	case "javascript":
		language = sitter.NewLanguage(tree_sitter_javascript.Language())
	case "typescript":
		language = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case "python":
		language = sitter.NewLanguage(tree_sitter_python.Language())
	default:
		parser.Close()
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}
	return &languageParser{parser: parser, lang: lang}, nil
}

func (lp *languageParser) Close() {
	if lp.parser != nil {
		lp.parser.Close()
	}
}

func (lp *languageParser) parse(code []byte) (*sitter.Tree, error) {
	tree := lp.parser.Parse(code, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s source", lp.lang)
	}
	return tree, nil
}

// DetectLanguage maps a file extension to a supported grammar name,
// or "" when the file is not parseable.
func DetectLanguage(path string) string {
	switch ext(path) {
	case ".py":
		return "python"
	case ".js", ".jsx", ".mjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	}
	return ""
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i:]
		case '/':
			return ""
		}
	}
	return ""
}

func nodeText(node *sitter.Node, code []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if int(end) > len(code) {
		end = uint(len(code))
	}
	return string(code[start:end])
}

func line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

func endLine(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}
