package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/bantay/internal/storage"
)

// watcherTestEnv sets up a records dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(op, path string) {
	l.mu.Lock()
	l.events = append(l.events, op+":"+path)
	l.mu.Unlock()
}

func (l *eventLog) has(e string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, got := range l.events {
		if got == e {
			return true
		}
	}
	return false
}

func startWatch(t *testing.T, db *DB, store storage.Provider, dir string, cb EventCallback) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, dir, quietLogger(), cb)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	log := &eventLog{}
	startWatch(t, db, store, dir, log.record)

	_ = os.WriteFile(filepath.Join(dir, "new.yaml"), []byte(sampleRecord), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.yaml")
		return cs != ""
	}, "new file not indexed by watcher")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has("created:new.yaml")
	}, "expected created:new.yaml callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	startWatch(t, db, store, dir, nil)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(sampleRecord), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "real.yaml"), []byte(sampleRecord), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("real.yaml")
		return cs != ""
	}, "record file not indexed")
	if cs, _ := db.GetChecksum("notes.txt"); cs != "" {
		t.Error("non-record file was indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	startWatch(t, db, store, dir, nil)

	sub := filepath.Join(dir, "cases", "2025")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.yaml"), []byte(sampleRecord), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("cases/2025/deep.yaml")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "del.yaml"), []byte(sampleRecord), 0o644)
	if _, err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if cs, _ := db.GetChecksum("del.yaml"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	log := &eventLog{}
	startWatch(t, db, store, dir, log.record)
	_ = os.Remove(filepath.Join(dir, "del.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.yaml")
		return cs == ""
	}, "deleted file still in index")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has("deleted:del.yaml")
	}, "expected deleted:del.yaml callback")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "old.yaml"), []byte(sampleRecord), 0o644)
	if _, err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	startWatch(t, db, store, dir, nil)
	_ = os.Rename(filepath.Join(dir, "old.yaml"), filepath.Join(dir, "renamed.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.yaml")
		newCS, _ := db.GetChecksum("renamed.yaml")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
