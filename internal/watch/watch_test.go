package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/midikit/internal/logger"
)

func TestFileDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mid")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	var calls atomic.Int32
	errCh := make(chan error, 1)
	go func() {
		errCh <- File(ctx, path, 50*time.Millisecond, logger.NewNopLogger(), func() {
			calls.Add(1)
			changed <- struct{}{}
		})
	}()
	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// A sibling file must not trigger.
	if err := os.WriteFile(filepath.Join(dir, "other.mid"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("onChange called %d times, want 1", n)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("File returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("File did not return after cancel")
	}
}

func TestFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "song.mid")
	err := File(context.Background(), path, 0, logger.NewNopLogger(), func() {})
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
