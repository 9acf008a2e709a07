// Package inbox imports draft files dropped into a watched directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/storage"
)

// Extensions picked up by the inbox. JSON files hold document content,
// text files hold legacy plain text.
var Extensions = []string{".json", ".txt"}

// failedSuffix is appended to files that could not be imported so they
// are not retried on every scan.
const failedSuffix = ".failed"

const settleDelay = 200 * time.Millisecond

// Draft text is stored as JSON, which cannot carry invalid UTF-8.
var errInvalidUTF8 = errors.New("file is not valid UTF-8")

// Importer creates a draft from raw content.
type Importer interface {
	Create(ctx context.Context, title, content string) (*draftservice.DraftDetail, error)
}

// Watcher turns files in the inbox directory into drafts and removes them.
type Watcher struct {
	store  *storage.FS
	imp    Importer
	logger *slog.Logger
}

// New creates a watcher over store's root directory.
func New(store *storage.FS, imp Importer, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{store: store, imp: imp, logger: logger}
}

// Scan imports every file currently in the inbox and returns how many
// drafts were created.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	entries, err := w.store.List("", Extensions...)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		if w.importFile(ctx, e.Path) {
			n++
		}
	}
	return n, nil
}

// Run scans the inbox once, then watches it until ctx is cancelled.
// Writes are debounced so a file is imported once it stops changing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.store.Root()
	if err := addDirsRecursive(fw, root); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", root, err)
	}

	if n, err := w.Scan(ctx); err != nil {
		w.logger.Warn("inbox: initial scan failed", slog.String("error", err.Error()))
	} else if n > 0 {
		w.logger.Info("inbox: imported on startup", slog.Int("count", n))
	}
	w.logger.Info("inbox: watching", slog.String("root", root))

	pending := make(map[string]struct{})
	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			w.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for rel := range pending {
				delete(pending, rel)
				w.importFile(ctx, rel)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if isDir(ev.Name) {
					if err := addDirsRecursive(fw, ev.Name); err != nil {
						w.logger.Warn("inbox: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !accepted(ev.Name) {
				continue
			}
			rel, err := w.store.Rel(ev.Name)
			if err != nil {
				continue
			}
			pending[rel] = struct{}{}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleCh = settle.C
			} else {
				settle.Reset(settleDelay)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox: watcher error", slog.String("error", err.Error()))
		}
	}
}

// importFile creates a draft from rel and deletes the file. Files that
// fail to import are renamed with failedSuffix.
func (w *Watcher) importFile(ctx context.Context, rel string) bool {
	data, err := w.store.Read(rel)
	if err != nil {
		// already consumed
		return false
	}
	if !utf8.Valid(data) {
		w.quarantine(rel, errInvalidUTF8)
		return false
	}
	d, err := w.imp.Create(ctx, "", string(data))
	if err != nil {
		w.quarantine(rel, err)
		return false
	}
	if err := w.store.Delete(rel); err != nil {
		w.logger.Warn("inbox: remove failed", slog.String("file", rel), slog.String("error", err.Error()))
	}
	w.logger.Info("inbox: draft imported", slog.String("file", rel), slog.String("id", d.ID))
	return true
}

func (w *Watcher) quarantine(rel string, cause error) {
	w.logger.Warn("inbox: import failed", slog.String("file", rel), slog.String("error", cause.Error()))
	if mvErr := w.store.Move(rel, rel+failedSuffix); mvErr != nil {
		w.logger.Warn("inbox: quarantine failed", slog.String("file", rel), slog.String("error", mvErr.Error()))
	}
}

func accepted(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(base)))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
