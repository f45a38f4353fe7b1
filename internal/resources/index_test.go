package resources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/notion-import/internal/apperr"
)

func buildIndex(t *testing.T, names ...string) (string, *Index) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, DefaultDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	idx, err := Build(root, DefaultDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return dir, idx
}

func TestResolve_AllVariants(t *testing.T) {
	dir, idx := buildIndex(t, "Photo.PNG")
	want := filepath.Join(dir, "Photo.PNG")

	for _, ref := range []string{"Photo.PNG", "photo.png", "Photo", "photo"} {
		rf, ok := idx.Resolve(ref)
		if !ok {
			t.Errorf("Resolve(%q) not found", ref)
			continue
		}
		if rf.Path != want {
			t.Errorf("Resolve(%q) = %q, want %q", ref, rf.Path, want)
		}
	}
}

func TestResolve_PathAndEncoding(t *testing.T) {
	_, idx := buildIndex(t, "my image.png")

	for _, ref := range []string{
		"resources/my%20image.png",
		"../resources/my image.png",
		`resources\my image.png`,
	} {
		if _, ok := idx.Resolve(ref); !ok {
			t.Errorf("Resolve(%q) not found", ref)
		}
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, idx := buildIndex(t, "a.png")
	if _, ok := idx.Resolve("b.png"); ok {
		t.Error("expected not found for b.png")
	}
}

func TestResolve_NameBeatsStemCollision(t *testing.T) {
	// "a.png.jpg" has stem "a.png"; an exact name match must win.
	dir, idx := buildIndex(t, "a.png", "a.png.jpg")
	rf, ok := idx.Resolve("a.png")
	if !ok {
		t.Fatal("not found")
	}
	if rf.Path != filepath.Join(dir, "a.png") {
		t.Errorf("resolved %q, want a.png", rf.Path)
	}
}

func TestResolve_StemCollisionDeterministic(t *testing.T) {
	dir, idx := buildIndex(t, "chart.png", "chart.jpg")
	rf, ok := idx.Resolve("chart")
	if !ok {
		t.Fatal("not found")
	}
	// Entries are registered in name order, first wins.
	if rf.Path != filepath.Join(dir, "chart.jpg") {
		t.Errorf("resolved %q, want chart.jpg", rf.Path)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
}

func TestBuild_SkipsDirectories(t *testing.T) {
	dir, idx := buildIndex(t, "x.png")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	idx, err := Build(filepath.Dir(dir), DefaultDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len = %d, want 1", idx.Len())
	}
	if _, ok := idx.Resolve("nested"); ok {
		t.Error("directories must not be indexed")
	}
}

func TestBuild_MissingDir(t *testing.T) {
	idx, err := Build(t.TempDir(), DefaultDir)
	if !errors.Is(err, apperr.ErrResourcesMissing) {
		t.Fatalf("err = %v, want ErrResourcesMissing", err)
	}
	if idx == nil || idx.Len() != 0 {
		t.Error("expected empty index")
	}
}

func TestResolve_NilIndex(t *testing.T) {
	var idx *Index
	if _, ok := idx.Resolve("a.png"); ok {
		t.Error("nil index should resolve nothing")
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"a.png":      "a",
		"a.tar.gz":   "a.tar",
		".hidden":    ".hidden",
		"noext":      "noext",
		"Mixed.JPEG": "Mixed",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates("dir/Pic%201.PNG")
	want := []string{"Pic 1.PNG", "pic 1.png", "Pic 1", "pic 1"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}
