// Package testutil provides shared test helpers: export folders on disk and
// in-process fakes of the Notion and ImgBB APIs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PNG is the smallest valid PNG header; enough for content sniffing.
var PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

// TestExport creates a temporary export root and writes files into it.
// Keys are slash-separated paths relative to the root.
func TestExport(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for rel, data := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), data)
	}
	return root
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
