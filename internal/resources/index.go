// Package resources indexes the local resources folder so markdown image
// references can be matched to files by name, stem and case variants.
package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/notion-import/internal/apperr"
	"github.com/starford/notion-import/internal/models"
)

// DefaultDir is the resources folder name under the export root.
const DefaultDir = "resources"

// keyKind is one normalisation applied to a file name.
type keyKind int

const (
	keyName keyKind = iota
	keyLowerName
	keyStem
	keyLowerStem
)

// lookupOrder is the order in which variants are tried on Resolve.
var lookupOrder = [...]keyKind{keyName, keyLowerName, keyStem, keyLowerStem}

// Index maps name variants to resource files. Each variant kind has its
// own table; within a table the first registered file wins.
type Index struct {
	dir    string
	tables map[keyKind]map[string]models.ResourceFile
	files  []models.ResourceFile
}

// New returns an empty index.
func New() *Index {
	idx := &Index{tables: make(map[keyKind]map[string]models.ResourceFile, len(lookupOrder))}
	for _, k := range lookupOrder {
		idx.tables[k] = make(map[string]models.ResourceFile)
	}
	return idx
}

// Build scans the immediate children of rootDir/dirName and registers every
// regular file. When the folder does not exist Build returns an empty index
// together with apperr.ErrResourcesMissing.
func Build(rootDir, dirName string) (*Index, error) {
	if dirName == "" {
		dirName = DefaultDir
	}
	idx := New()
	dir, err := filepath.Abs(filepath.Join(rootDir, dirName))
	if err != nil {
		return idx, fmt.Errorf("resources: resolve dir: %w", err)
	}
	idx.dir = dir

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return idx, fmt.Errorf("resources: %s: %w", dir, apperr.ErrResourcesMissing)
		}
		return idx, fmt.Errorf("resources: scan %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by name, which makes collisions deterministic.
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		idx.Add(filepath.Join(dir, e.Name()))
	}
	return idx, nil
}

// Add registers the file at absPath under its four name variants.
func (idx *Index) Add(absPath string) models.ResourceFile {
	name := filepath.Base(absPath)
	rf := models.ResourceFile{Path: absPath, Name: name, Stem: Stem(name)}
	idx.files = append(idx.files, rf)
	for _, k := range lookupOrder {
		key := variant(k, name)
		if _, taken := idx.tables[k][key]; !taken {
			idx.tables[k][key] = rf
		}
	}
	return rf
}

// Resolve looks up a markdown image reference. The reference is URL-decoded
// and reduced to its base name; then name, lowercased name, stem and
// lowercased stem are tried in order. A nil index resolves nothing.
func (idx *Index) Resolve(ref string) (models.ResourceFile, bool) {
	if idx == nil {
		return models.ResourceFile{}, false
	}
	name := baseName(ref)
	for _, k := range lookupOrder {
		if rf, ok := idx.tables[k][variant(k, name)]; ok {
			return rf, true
		}
	}
	return models.ResourceFile{}, false
}

// Candidates returns the keys Resolve tries for ref, in order.
func Candidates(ref string) []string {
	name := baseName(ref)
	out := make([]string, 0, len(lookupOrder))
	for _, k := range lookupOrder {
		out = append(out, variant(k, name))
	}
	return out
}

// Len returns the number of unique files registered.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.files)
}

// Dir returns the scanned directory.
func (idx *Index) Dir() string {
	if idx == nil {
		return ""
	}
	return idx.dir
}

// Stem returns name without its final extension. Dot-files keep their name.
func Stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func variant(k keyKind, name string) string {
	switch k {
	case keyLowerName:
		return strings.ToLower(name)
	case keyStem:
		return Stem(name)
	case keyLowerStem:
		return strings.ToLower(Stem(name))
	default:
		return name
	}
}

func baseName(ref string) string {
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	ref = strings.ReplaceAll(ref, `\`, "/")
	return path.Base(strings.TrimSpace(ref))
}
