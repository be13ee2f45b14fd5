package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeBuilder struct {
	public  string
	output  string
	mu      sync.Mutex
	built   []string
	removed []string
	trees   []string
}

func (f *fakeBuilder) PublicDir() string { return f.public }
func (f *fakeBuilder) OutputDir() string { return f.output }

func (f *fakeBuilder) BuildPage(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append(f.built, path)
	return nil
}

func (f *fakeBuilder) RemovePage(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeBuilder) RemoveTree(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees = append(f.trees, path)
	return nil
}

func (f *fakeBuilder) removedTrees() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trees...)
}

func (f *fakeBuilder) builtCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.built)
}

func newTestWatcher(t *testing.T) (*Watcher, *fakeBuilder) {
	t.Helper()
	tmpDir := t.TempDir()
	public := filepath.Join(tmpDir, "public")
	if err := os.MkdirAll(filepath.Join(public, "blog"), 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	fb := &fakeBuilder{public: public, output: filepath.Join(public, "_variants")}
	w, err := NewWatcher(fb, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	return w, fb
}

func TestWatcher(t *testing.T) {
	w, fb := newTestWatcher(t)

	testFile := filepath.Join(fb.public, "blog", "post.html")
	if err := os.WriteFile(testFile, []byte(`<img data-baseImage="a.jpg">`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Could be Create or Write depending on OS
	select {
	case event := <-w.Events():
		if event.Type != EventCreated && event.Type != EventModified {
			t.Errorf("Expected EventCreated or EventModified, got %v", event.Type)
		}
		if event.FilePath != testFile {
			t.Errorf("Expected filepath %s, got %s", testFile, event.FilePath)
		}
		if event.Err != nil {
			t.Errorf("Unexpected rebuild error: %v", event.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}

	if fb.builtCount() == 0 {
		t.Error("Expected page to be rebuilt")
	}

	if err := os.Remove(testFile); err != nil {
		t.Fatalf("Failed to remove test file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Type != EventDeleted {
			t.Errorf("Expected EventDeleted, got %v", event.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for delete event")
	}
}

func TestWatcherIgnoresNonPageFiles(t *testing.T) {
	w, fb := newTestWatcher(t)

	if err := os.WriteFile(filepath.Join(fb.public, "style.css"), []byte("body{}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(fb.public, ".index.html.swp"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	select {
	case event := <-w.Events():
		t.Errorf("Should not receive event for non-page file, got: %v", event)
	case <-time.After(500 * time.Millisecond):
		// Expected - no event received
	}
}

func TestWatcherIgnoresOutputTree(t *testing.T) {
	w, fb := newTestWatcher(t)

	out := filepath.Join(fb.output, "phone")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatalf("Failed to create output folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(out, "index.html"), []byte("<p>"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	select {
	case event := <-w.Events():
		t.Errorf("Should not receive event for output file, got: %v", event)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherWatchesNewFolders(t *testing.T) {
	w, fb := newTestWatcher(t)

	dir := filepath.Join(fb.public, "news")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	// Give the watcher time to pick up the new folder
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	select {
	case event := <-w.Events():
		if filepath.Dir(event.FilePath) != dir {
			t.Errorf("Unexpected event path %s", event.FilePath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event in new folder")
	}
}

func TestWatcherBuildsPagesInMovedFolder(t *testing.T) {
	w, fb := newTestWatcher(t)

	// Pages already inside a folder moved into the site get no events of
	// their own
	staging := filepath.Join(t.TempDir(), "gallery")
	if err := os.MkdirAll(staging, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staging, "index.html"), []byte("<p>"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	dir := filepath.Join(fb.public, "gallery")
	if err := os.Rename(staging, dir); err != nil {
		t.Skipf("Cannot move folder across filesystems: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Type != EventCreated {
			t.Errorf("Expected EventCreated, got %v", event.Type)
		}
		if event.FilePath != filepath.Join(dir, "index.html") {
			t.Errorf("Unexpected event path %s", event.FilePath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for page in moved folder")
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("Failed to remove folder: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, tree := range fb.removedTrees() {
			if tree == dir {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("Expected %s to be removed from the device trees, got %v", dir, fb.removedTrees())
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w, _ := newTestWatcher(t)
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Expected events channel to be closed")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Second Stop should be a no-op, got %v", err)
	}
}
