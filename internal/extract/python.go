package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/rohankatakam/depscope/internal/storage"
)

// extractPython walks a Python syntax tree and fills facts.
func extractPython(root *sitter.Node, code []byte, facts *storage.ModuleFacts) {
	var walk func(node *sitter.Node, classIndex int)
	walk = func(node *sitter.Node, classIndex int) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "class_definition":
			idx := appendPythonClass(node, code, facts)
			if body := node.ChildByFieldName("body"); body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					walk(body.Child(i), idx)
				}
			}
			return

		case "function_definition":
			appendPythonFunction(node, code, classIndex, facts)
			return

		case "import_statement":
			appendPythonImport(node, code, facts)
			return

		case "import_from_statement":
			appendPythonFromImport(node, code, facts)
			return
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), classIndex)
		}
	}
	walk(root, -1)
}

func appendPythonClass(node *sitter.Node, code []byte, facts *storage.ModuleFacts) int {
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
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			base := supers.Child(i)
			switch base.Kind() {
			case "identifier", "attribute":
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

func appendPythonFunction(node *sitter.Node, code []byte, classIndex int, facts *storage.ModuleFacts) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	kind := "function"
	if classIndex >= 0 {
		kind = "method"
	}
	fn := storage.FunctionFact{
		Name:       nodeText(nameNode, code),
		Kind:       kind,
		ClassIndex: classIndex,
		Complexity: pythonComplexity(node),
		IsAsync:    firstChildIs(node, "async"),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		collectPythonCalls(body, code, &fn)
	}
	facts.Functions = append(facts.Functions, fn)
}

// pythonComplexity counts decision points in one function body. Nested
// function definitions carry their own count and are skipped here.
func pythonComplexity(fn *sitter.Node) int {
	complexity := 1
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "function_definition" {
				continue
			}
			switch child.Kind() {
			case "if_statement", "elif_clause", "for_statement", "while_statement",
				"except_clause", "conditional_expression", "boolean_operator",
				"case_clause":
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

// collectPythonCalls records call targets inside a function body,
// skipping bodies of nested functions.
func collectPythonCalls(node *sitter.Node, code []byte, fn *storage.FunctionFact) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "function_definition" {
			continue
		}
		if child.Kind() == "call" {
			if callee := child.ChildByFieldName("function"); callee != nil {
				switch callee.Kind() {
				case "identifier", "attribute":
					fn.Calls = append(fn.Calls, storage.EdgeRef{
						Target: nodeText(callee, code),
						Line:   line(child),
					})
				}
			}
		}
		collectPythonCalls(child, code, fn)
	}
}

// appendPythonImport handles "import a.b" and "import a.b as c".
func appendPythonImport(node *sitter.Node, code []byte, facts *storage.ModuleFacts) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			facts.Imports = append(facts.Imports, storage.ImportFact{
				Target: nodeText(child, code),
				Line:   line(node),
			})
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				facts.Imports = append(facts.Imports, storage.ImportFact{
					Target: nodeText(name, code),
					Line:   line(node),
				})
			}
		}
	}
}

// appendPythonFromImport handles "from a.b import c". The dependency
// target is the source module, not the imported names. Relative
// imports lose their leading dots; the resolver matches the remainder
// by path suffix.
func appendPythonFromImport(node *sitter.Node, code []byte, facts *storage.ModuleFacts) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	target := strings.TrimLeft(nodeText(moduleNode, code), ".")
	if target == "" {
		// "from . import sibling": the names are the targets.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "dotted_name" && child.StartByte() != moduleNode.StartByte() {
				facts.Imports = append(facts.Imports, storage.ImportFact{
					Target: nodeText(child, code),
					Line:   line(node),
				})
			}
		}
		return
	}
	facts.Imports = append(facts.Imports, storage.ImportFact{
		Target: target,
		Line:   line(node),
	})
}

func firstChildIs(node *sitter.Node, kind string) bool {
	child := node.Child(0)
	return child != nil && child.Kind() == kind
}
