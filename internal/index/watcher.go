package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/bantay/internal/storage"
)

// Index change operations reported to an EventCallback.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(op string, path string)

const reconcileDelay = 200 * time.Millisecond

type watcher struct {
	db     RecordIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
}

func (w *watcher) notify(op, rel string) {
	if w.cb != nil {
		w.cb(op, rel)
	}
}

// Watch follows the records directory with fsnotify until ctx is cancelled,
// applying every record file change to the index and calling cb after each
// successful mutation. Subdirectories created later are watched as well.
// fsnotify reports renames on the old path only, so a rename deletes the
// old row and schedules a debounced reconciliation that picks up the new
// path.
func Watch(ctx context.Context, db RecordIndex, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}
	w := &watcher{db: db, store: store, root: root, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", root))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					w.addDir(fw, ev.Name)
					continue
				}
			}
			if !storage.IsRecordFile(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			if w.handle(ev.Op, filepath.ToSlash(rel)) {
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one file event and reports whether a reconciliation
// pass should follow.
func (w *watcher) handle(op fsnotify.Op, rel string) bool {
	switch {
	case op&(fsnotify.Create|fsnotify.Write) != 0:
		data, err := w.store.Read(rel)
		if err != nil {
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		existing, _ := w.db.GetChecksum(rel)
		if existing == storage.Checksum(data) {
			return false
		}
		if err := indexFile(w.db, rel, data); err != nil {
			// Create fires before the writer finishes; the following Write retries.
			w.logger.Debug("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		evOp := OpUpdated
		if existing == "" {
			evOp = OpCreated
		}
		w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", evOp))
		w.notify(evOp, rel)

	case op&fsnotify.Remove != 0:
		w.delete(rel)

	case op&fsnotify.Rename != 0:
		w.delete(rel)
		return true
	}
	return false
}

func (w *watcher) delete(rel string) {
	cs, _ := w.db.GetChecksum(rel)
	if cs == "" {
		return
	}
	if err := w.db.DeleteRecord(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify(OpDeleted, rel)
}

// reconcile diffs disk against the index by checksum in one batch.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.delete(p)
		}
	}
	for p, cs := range disk {
		prev, indexed := checksums[p]
		if prev == cs {
			continue
		}
		data, err := w.store.Read(p)
		if err != nil {
			continue
		}
		if err := indexFile(w.db, p, data); err != nil {
			continue
		}
		if indexed {
			w.notify(OpUpdated, p)
		} else {
			w.notify(OpCreated, p)
		}
	}
}

// addDir starts watching a new directory and indexes any record files that
// landed in it before the watch was in place.
func (w *watcher) addDir(fw *fsnotify.Watcher, dir string) {
	if strings.HasPrefix(filepath.Base(dir), ".") {
		return
	}
	if err := addDirsRecursive(fw, dir); err != nil {
		w.logger.Warn("watcher: add new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsRecordFile(p) {
			return nil
		}
		if rel, relErr := filepath.Rel(w.root, p); relErr == nil {
			w.handle(fsnotify.Create, filepath.ToSlash(rel))
		}
		return nil
	})
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}
