// Package storage defines the file-system abstraction behind the outbox and inbox directories.
package storage

import "time"

// Entry describes one file found by List.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Provider is the interface for directory-rooted file operations.
type Provider interface {
	// List returns every file under dir (relative to root) whose extension
	// is one of exts; with no exts every file is returned.
	List(dir string, exts ...string) ([]Entry, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to root).
	Move(oldPath, newPath string) error
}
