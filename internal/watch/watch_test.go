package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "Token.sol"), func(context.Context) {})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write target", fsnotify.Event{Name: filepath.Join(dir, "Token.sol"), Op: fsnotify.Write}, true},
		{"create target", fsnotify.Event{Name: filepath.Join(dir, "Token.sol"), Op: fsnotify.Create}, true},
		{"chmod target", fsnotify.Event{Name: filepath.Join(dir, "Token.sol"), Op: fsnotify.Chmod}, false},
		{"sibling write", fsnotify.Event{Name: filepath.Join(dir, "Other.sol"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestRun_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")
	if err := os.WriteFile(path, []byte("contract A {}"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var calls int32
	w, err := New(path, func(context.Context) { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watcher register before writing
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("contract A { function mint() {} }"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "Token.sol"), func(context.Context) {})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}
