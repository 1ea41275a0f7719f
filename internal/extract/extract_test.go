package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/depscope/internal/storage"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.py", "python"},
		{"web/index.js", "javascript"},
		{"web/App.tsx", "typescript"},
		{"README.md", ""},
		{"Makefile", ""},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

const pythonSample = `import os
import json as j
from app.models import User
from . import sibling


def top_level(x):
    if x > 0:
        for i in range(x):
            print(i)
    return x


async def fetch(url):
    return await get(url)


class Service(BaseService):
    def handle(self, request):
        if request.valid and request.ready:
            return self.process(request)
        return None

    def process(self, request):
        return transform(request)
`

func TestExtractPython(t *testing.T) {
	e := NewTreeSitterExtractor()
	defer e.Close()

	facts, err := e.Extract("app/service.py", []byte(pythonSample))
	require.NoError(t, err)

	assert.Equal(t, "python", facts.Module.Language)
	assert.Equal(t, "app/service.py", facts.Module.Path)
	assert.Equal(t, "service", facts.Module.Name)
	assert.NotEmpty(t, facts.Module.Hash)

	targets := make([]string, len(facts.Imports))
	for i, imp := range facts.Imports {
		targets[i] = imp.Target
	}
	assert.Equal(t, []string{"os", "json", "app.models", "sibling"}, targets)

	require.Len(t, facts.Classes, 1)
	class := facts.Classes[0]
	assert.Equal(t, "Service", class.Name)
	require.Len(t, class.Bases, 1)
	assert.Equal(t, "BaseService", class.Bases[0].Target)

	require.Len(t, facts.Functions, 4)

	byName := map[string]storage.FunctionFact{}
	for _, fn := range facts.Functions {
		byName[fn.Name] = fn
	}

	top := byName["top_level"]
	assert.Equal(t, "function", top.Kind)
	assert.Equal(t, -1, top.ClassIndex)
	// 1 base + if + for.
	assert.Equal(t, 3, top.Complexity)

	fetch := byName["fetch"]
	assert.True(t, fetch.IsAsync)

	handle := byName["handle"]
	assert.Equal(t, "method", handle.Kind)
	assert.Equal(t, 0, handle.ClassIndex)
	// 1 base + if + boolean and.
	assert.Equal(t, 3, handle.Complexity)

	process := byName["process"]
	require.Len(t, process.Calls, 1)
	assert.Equal(t, "transform", process.Calls[0].Target)
}

const javascriptSample = `import { helper } from './util/helper';

export class Controller extends BaseController {
  handle(req) {
    if (req.ok) {
      return helper(req);
    }
    return null;
  }
}

const render = (items) => {
  for (const item of items) {
    draw(item);
  }
};
`

func TestExtractJavaScript(t *testing.T) {
	e := NewTreeSitterExtractor()
	defer e.Close()

	facts, err := e.Extract("web/controller.js", []byte(javascriptSample))
	require.NoError(t, err)

	require.Len(t, facts.Imports, 1)
	assert.Equal(t, "util/helper", facts.Imports[0].Target)

	require.Len(t, facts.Classes, 1)
	assert.Equal(t, "Controller", facts.Classes[0].Name)
	require.Len(t, facts.Classes[0].Bases, 1)
	assert.Equal(t, "BaseController", facts.Classes[0].Bases[0].Target)

	byName := map[string]storage.FunctionFact{}
	for _, fn := range facts.Functions {
		byName[fn.Name] = fn
	}
	handle, ok := byName["handle"]
	require.True(t, ok, "method handle not extracted")
	assert.Equal(t, "method", handle.Kind)
	assert.Equal(t, 2, handle.Complexity)

	render, ok := byName["render"]
	require.True(t, ok, "assigned arrow function not extracted")
	assert.Equal(t, "function", render.Kind)
	assert.Equal(t, 2, render.Complexity)
}

type captureWriter struct {
	facts []*storage.ModuleFacts
}

func (c *captureWriter) ReplaceModuleFacts(ctx context.Context, f *storage.ModuleFacts) (int64, error) {
	c.facts = append(c.facts, f)
	return int64(len(c.facts)), nil
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "lib"), 0o755))

	files := map[string]string{
		"main.py":                    "import pkg.util\n",
		"pkg/util.py":                "def helper():\n    return 1\n",
		"README.md":                  "# docs\n",
		"node_modules/lib/vendor.py": "x = 1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	writer := &captureWriter{}
	scanner := NewScanner(nil, writer, nil)

	result, err := scanner.ScanDir(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ModulesParsed)
	assert.Empty(t, result.ParseFailures)

	paths := map[string]bool{}
	for _, f := range writer.facts {
		paths[f.Module.Path] = true
	}
	assert.True(t, paths["main.py"])
	assert.True(t, paths["pkg/util.py"])
	assert.False(t, paths["node_modules/lib/vendor.py"], "skip dirs must be pruned")
}
