package index

import (
	"context"

	"github.com/starford/bantay/internal/models"
)

// RecordSource is the read side the analytics layer depends on. It hands
// out complete record lists; filtering happens in memory afterwards.
type RecordSource interface {
	// Records returns every record of kind (all kinds when kind is empty),
	// ordered by creation time then id.
	Records(ctx context.Context, kind models.Kind) ([]models.Record, error)
	// Count returns the number of indexed records of kind.
	Count(ctx context.Context, kind models.Kind) (int, error)
}

// RecordIndex is the full index contract used by sync and the watcher.
type RecordIndex interface {
	RecordSource
	UpsertRecord(path, checksum string, r models.Record) error
	DeleteRecord(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ RecordIndex = (*DB)(nil)
