// Package storage defines the record directory abstraction.
package storage

import "github.com/starford/bantay/internal/models"

// Provider is the interface for record file operations.
type Provider interface {
	// List returns metadata for every record file under dir (relative to the records root).
	List(dir string) ([]models.RecordMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the records root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the records root).
	Write(path string, content []byte) error
}
