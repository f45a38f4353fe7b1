// Package storage provides read access to the exported notebook folder.
package storage

// Provider is the interface for notebook file operations.
// All paths are relative to the provider root.
type Provider interface {
	// Exists reports whether path exists and is a directory when dir is true.
	Exists(path string, dir bool) bool
	// ListDirs returns the names of immediate subdirectories of dir.
	ListDirs(dir string) ([]string, error)
	// ListFiles returns the names of regular files in dir matching pattern.
	ListFiles(dir, pattern string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Abs resolves path to an absolute path under the root.
	Abs(path string) (string, error)
}
