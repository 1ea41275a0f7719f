// Package pathutil provides the canonical file path form shared by the
// structural and historical fact families. Both ingestion paths must
// normalize through here so that joins by path (hotspots, blast radius)
// compare like with like.
package pathutil

import (
	"fmt"
	"path"
	"strings"
)

// Canonical normalizes a repository-relative file path: forward slashes,
// no leading "./", no duplicate separators.
func Canonical(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

// Validate rejects paths that cannot be stored as facts: empty, absolute,
// or escaping the repository root.
func Validate(p string) error {
	c := Canonical(p)
	if c == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(c, "/") {
		return fmt.Errorf("absolute path not allowed: %s", p)
	}
	if c == ".." || strings.HasPrefix(c, "../") {
		return fmt.Errorf("path escapes repository root: %s", p)
	}
	return nil
}

// TopSegment returns the first path component, used as the layer proxy
// for layered-architecture analysis. Files at the repository root map to
// the layer "." so they still group together.
func TopSegment(p string) string {
	c := Canonical(p)
	if c == "" {
		return "."
	}
	if i := strings.IndexByte(c, '/'); i >= 0 {
		return c[:i]
	}
	return "."
}

// Stem returns the file name without directory or extension, the input to
// test-impact naming conventions.
func Stem(p string) string {
	base := path.Base(Canonical(p))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Ext returns the file extension including the dot, or "".
func Ext(p string) string {
	return path.Ext(Canonical(p))
}

// OrderPair returns the two paths in canonical storage order (a < b).
func OrderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
