package index

import (
	"log/slog"

	"github.com/starford/bantay/internal/parser"
	"github.com/starford/bantay/internal/storage"
)

// SyncStats counts what a Sync pass changed.
type SyncStats struct {
	Indexed int
	Removed int
	Skipped int
}

// Sync brings the index up to date with the records directory: changed
// files are parsed and upserted, unchanged checksums are skipped, and
// rows whose file is gone are deleted. Files that fail to parse are
// logged and left out; they never abort the pass.
func Sync(db RecordIndex, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	metas, err := store.List("")
	if err != nil {
		return stats, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			stats.Skipped++
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			stats.Skipped++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteRecord(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: done",
		slog.Int("files", len(metas)),
		slog.Int("indexed", stats.Indexed),
		slog.Int("removed", stats.Removed),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

// indexFile parses data and upserts it under path.
func indexFile(db RecordIndex, path string, data []byte) error {
	rec, err := parser.Parse(path, data)
	if err != nil {
		return err
	}
	return db.UpsertRecord(path, storage.Checksum(data), rec)
}
