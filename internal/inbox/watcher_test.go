package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/models"
	"github.com/starford/postcraft/internal/storage"
)

type fakeImporter struct {
	mu       sync.Mutex
	contents []string
	fail     bool
}

func (f *fakeImporter) Create(_ context.Context, title, content string) (*draftservice.DraftDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("store unavailable")
	}
	f.contents = append(f.contents, content)
	return &draftservice.DraftDetail{Draft: models.Draft{ID: "id", Title: title}}, nil
}

func (f *fakeImporter) imported() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.contents...)
}

func inboxEnv(t *testing.T) (string, *storage.FS, *fakeImporter, *slog.Logger) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return dir, store, &fakeImporter{}, logger
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

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestScan_ImportsAndRemoves(t *testing.T) {
	dir, store, imp, logger := inboxEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "a.txt"), []byte("plain post"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "b.json"), []byte(`[{"type":"paragraph","children":[{"text":"x"}]}]`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("ignored"), 0o644)

	n, err := New(store, imp, logger).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 || len(imp.imported()) != 2 {
		t.Fatalf("imported = %d (%v)", n, imp.imported())
	}
	if exists(filepath.Join(dir, "a.txt")) || exists(filepath.Join(dir, "b.json")) {
		t.Error("imported files should be removed")
	}
	if !exists(filepath.Join(dir, "notes.md")) || !exists(filepath.Join(dir, ".hidden.txt")) {
		t.Error("unrelated files should stay")
	}
}

func TestScan_FailedImportQuarantined(t *testing.T) {
	dir, store, imp, logger := inboxEnv(t)
	imp.fail = true
	_ = os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("x"), 0o644)

	w := New(store, imp, logger)
	if n, _ := w.Scan(context.Background()); n != 0 {
		t.Errorf("imported = %d, want 0", n)
	}
	if !exists(filepath.Join(dir, "bad.txt"+failedSuffix)) {
		t.Error("failed file not quarantined")
	}

	imp.mu.Lock()
	imp.fail = false
	imp.mu.Unlock()
	if n, _ := w.Scan(context.Background()); n != 0 {
		t.Errorf("quarantined file re-imported: %d", n)
	}
}

func TestScan_InvalidUTF8Quarantined(t *testing.T) {
	dir, store, imp, logger := inboxEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "latin1.txt"), []byte("caf\xe9 au lait"), 0o644)

	if n, _ := New(store, imp, logger).Scan(context.Background()); n != 0 {
		t.Errorf("imported = %d, want 0", n)
	}
	if len(imp.imported()) != 0 {
		t.Errorf("importer called with %q", imp.imported())
	}
	if !exists(filepath.Join(dir, "latin1.txt"+failedSuffix)) {
		t.Error("invalid file not quarantined")
	}
}

func TestRun_ImportsNewFiles(t *testing.T) {
	dir, store, imp, logger := inboxEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "early.txt"), []byte("before start"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(store, imp, logger).Run(ctx) }()

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return len(imp.imported()) == 1
	}, "startup scan did not import existing file")

	time.Sleep(100 * time.Millisecond)
	_ = os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "late.txt"), []byte("after start"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "sub", "nested.json"), []byte("nested"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(imp.imported()) == 3
	}, "watcher did not import new files")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return !exists(filepath.Join(dir, "late.txt")) && !exists(filepath.Join(dir, "sub", "nested.json"))
	}, "imported files not removed")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestAccepted(t *testing.T) {
	tests := map[string]bool{
		"/in/post.txt":        true,
		"/in/post.JSON":       true,
		"/in/post.md":         false,
		"/in/.tmp.txt":        false,
		"/in/post.txt.failed": false,
	}
	for name, want := range tests {
		if got := accepted(name); got != want {
			t.Errorf("accepted(%q) = %v, want %v", name, got, want)
		}
	}
}
