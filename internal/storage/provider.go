// Package storage defines the site file-system abstraction.
package storage

// Provider is the interface for site file operations. All paths are relative
// to the site root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Abs resolves path to an absolute location under the root.
	Abs(path string) (string, error)
}
