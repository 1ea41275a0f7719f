package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/rohankatakam/depscope/internal/storage"
)

// extractScript walks a JavaScript or TypeScript tree. The two share
// enough grammar that one extractor covers both.
func extractScript(root *sitter.Node, code []byte, facts *storage.ModuleFacts) {
	var walk func(node *sitter.Node, classIndex int)
	walk = func(node *sitter.Node, classIndex int) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "class_declaration":
			idx := appendScriptClass(node, code, facts)
			if body := node.ChildByFieldName("body"); body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					walk(body.Child(i), idx)
				}
			}
			return

		case "function_declaration", "generator_function_declaration":
			appendScriptFunction(node, code, classIndex, "function", facts)
			return

		case "method_definition":
			appendScriptFunction(node, code, classIndex, "method", facts)
			return

		case "arrow_function", "function_expression":
			if name := scriptExpressionName(node, code); name != "" {
				appendNamedScriptFunction(node, code, name, classIndex, facts)
				return
			}

		case "import_statement":
			appendScriptImport(node, code, facts)
			return
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), classIndex)
		}
	}
	walk(root, -1)
}

func appendScriptClass(node *sitter.Node, code []byte, facts *storage.ModuleFacts) int {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return -1
	}
	class := storage.ClassFact{
		Name:      nodeText(nameNode, code),
		Kind:      "class",
		LineStart: line(node),
		LineEnd:   endLine(node),
	}
	// extends clause: (class_heritage (identifier)).
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			base := child.Child(j)
			switch base.Kind() {
			case "identifier", "member_expression":
				class.Bases = append(class.Bases, storage.EdgeRef{
					Target: nodeText(base, code),
					Line:   line(base),
				})
			}
		}
	}
	facts.Classes = append(facts.Classes, class)
	return len(facts.Classes) - 1
}

func appendScriptFunction(node *sitter.Node, code []byte, classIndex int, kind string, facts *storage.ModuleFacts) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	appendNamedScriptFunctionKind(node, code, nodeText(nameNode, code), classIndex, kind, facts)
}

func appendNamedScriptFunction(node *sitter.Node, code []byte, name string, classIndex int, facts *storage.ModuleFacts) {
	kind := "function"
	if classIndex >= 0 {
		kind = "method"
	}
	appendNamedScriptFunctionKind(node, code, name, classIndex, kind, facts)
}

func appendNamedScriptFunctionKind(node *sitter.Node, code []byte, name string, classIndex int, kind string, facts *storage.ModuleFacts) {
	fn := storage.FunctionFact{
		Name:       name,
		Kind:       kind,
		ClassIndex: classIndex,
		Complexity: scriptComplexity(node),
		IsAsync:    firstChildIs(node, "async"),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		collectScriptCalls(body, code, &fn)
	}
	facts.Functions = append(facts.Functions, fn)
}

// scriptExpressionName names an anonymous function from its
// assignment: const f = () => {} or obj.f = function () {}.
func scriptExpressionName(node *sitter.Node, code []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Kind() {
	case "variable_declarator":
		return nodeText(parent.ChildByFieldName("name"), code)
	case "assignment_expression":
		left := nodeText(parent.ChildByFieldName("left"), code)
		if i := strings.LastIndex(left, "."); i >= 0 {
			left = left[i+1:]
		}
		return left
	case "pair":
		return nodeText(parent.ChildByFieldName("key"), code)
	}
	return ""
}

func scriptComplexity(fn *sitter.Node) int {
	complexity := 1
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "function_declaration", "arrow_function", "function_expression", "method_definition":
				continue
			case "if_statement", "for_statement", "for_in_statement", "while_statement",
				"do_statement", "catch_clause", "ternary_expression", "switch_case":
				complexity++
			}
			walk(child)
		}
	}
	if body := fn.ChildByFieldName("body"); body != nil {
		walk(body)
	}
	return complexity
}

func collectScriptCalls(node *sitter.Node, code []byte, fn *storage.FunctionFact) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "function_declaration", "arrow_function", "function_expression", "method_definition":
			continue
		case "call_expression":
			if callee := child.ChildByFieldName("function"); callee != nil {
				switch callee.Kind() {
				case "identifier", "member_expression":
					fn.Calls = append(fn.Calls, storage.EdgeRef{
						Target: nodeText(callee, code),
						Line:   line(child),
					})
				}
			}
		}
		collectScriptCalls(child, code, fn)
	}
}

// appendScriptImport records the module specifier of an import
// statement. Relative specifiers keep their path shape so the
// resolver can suffix-match them.
func appendScriptImport(node *sitter.Node, code []byte, facts *storage.ModuleFacts) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	target := strings.Trim(nodeText(sourceNode, code), `"'`)
	target = strings.TrimPrefix(target, "./")
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
	}
	if target == "" {
		return
	}
	facts.Imports = append(facts.Imports, storage.ImportFact{
		Target: target,
		Line:   line(node),
	})
}
