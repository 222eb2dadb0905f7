// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autotext/pkg/snippet"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// WriteDefinitions writes a definition file named snippets.yaml into dir and
// returns its path. Calling it again overwrites the file in place.
func WriteDefinitions(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "snippets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return path
}

// MustLoadSnapshot loads a definition fixture into a snapshot.
func MustLoadSnapshot(t *testing.T, path string) *snippet.Snapshot {
	t.Helper()

	snap, err := snippet.NewLoader(path).Load()
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	return snap
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
