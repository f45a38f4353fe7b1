package storage

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func tempRoot(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	dir, s := tempRoot(t)
	writeFile(t, filepath.Join(dir, "a", "note.md"), "# Hello\n")

	got, err := s.Read(filepath.Join("a", "note.md"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\n" {
		t.Errorf("content = %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	_, s := tempRoot(t)
	if _, err := s.Read("nope.md"); err == nil {
		t.Error("expected error reading missing file")
	}
}

func TestExists(t *testing.T) {
	dir, s := tempRoot(t)
	writeFile(t, filepath.Join(dir, "sub", "f.txt"), "x")

	if !s.Exists("sub", true) {
		t.Error("sub should exist as dir")
	}
	if s.Exists(filepath.Join("sub", "f.txt"), true) {
		t.Error("file should not count as dir")
	}
	if !s.Exists(filepath.Join("sub", "f.txt"), false) {
		t.Error("file should exist")
	}
	if s.Exists("missing", false) {
		t.Error("missing should not exist")
	}
}

func TestListDirs(t *testing.T) {
	dir, s := tempRoot(t)
	writeFile(t, filepath.Join(dir, "nb", "A", "x.md"), "x")
	writeFile(t, filepath.Join(dir, "nb", "B", "y.md"), "y")
	writeFile(t, filepath.Join(dir, "nb", "loose.md"), "z")

	dirs, err := s.ListDirs("nb")
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	sort.Strings(dirs)
	if len(dirs) != 2 || dirs[0] != "A" || dirs[1] != "B" {
		t.Errorf("dirs = %v, want [A B]", dirs)
	}
}

func TestListFilesPattern(t *testing.T) {
	dir, s := tempRoot(t)
	writeFile(t, filepath.Join(dir, "sec", "a.md"), "a")
	writeFile(t, filepath.Join(dir, "sec", "b.md"), "b")
	writeFile(t, filepath.Join(dir, "sec", "readme.txt"), "not md")
	writeFile(t, filepath.Join(dir, "sec", "nested", "c.md"), "c")

	files, err := s.ListFiles("sec", "*.md")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	sort.Strings(files)
	if len(files) != 2 || files[0] != "a.md" || files[1] != "b.md" {
		t.Errorf("files = %v, want [a.md b.md]", files)
	}
}

func TestTraversalBlocked(t *testing.T) {
	_, s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.ListDirs(p); err == nil {
			t.Errorf("expected error listing %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/notion-import-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "notion-import-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
