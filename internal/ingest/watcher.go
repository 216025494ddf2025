// Package ingest watches a drop directory for new audio files and hands
// them to the processing pipeline.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Intake receives settled audio files from the watcher.
type Intake interface {
	IngestAudioFile(ctx context.Context, path string) error
}

// defaultSettleDelay is how long a file must stay unchanged before it is
// considered fully written. Podcast uploads are large, so this errs long.
const defaultSettleDelay = 2 * time.Second

// Watcher monitors a single drop directory (non-recursive) using fsnotify.
// Write events are debounced: a file is handed to the intake only after
// its size and mtime stop changing for the settle delay.
type Watcher struct {
	dir         string
	settleDelay time.Duration
	watcher     *fsnotify.Watcher
	intake      Intake
	logger      *slog.Logger

	pending map[string]*pendingFile
	mu      sync.Mutex

	done     chan struct{}
	stopOnce sync.Once
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// NewWatcher creates a watcher for dir. A zero settleDelay uses the
// default.
func NewWatcher(dir string, settleDelay time.Duration, intake Intake, logger *slog.Logger) (*Watcher, error) {
	if settleDelay <= 0 {
		settleDelay = defaultSettleDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:         dir,
		settleDelay: settleDelay,
		watcher:     fsw,
		intake:      intake,
		logger:      logger,
		pending:     make(map[string]*pendingFile),
		done:        make(chan struct{}),
	}, nil
}

// Start processes events until the context is cancelled or Stop is called.
// Files already present in the directory at startup are picked up too, so
// episodes dropped while the server was down aren't missed.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching ingest directory", "dir", w.dir)

	if err := w.sweepExisting(ctx); err != nil {
		w.logger.Warn("initial ingest sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("ingest watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

// sweepExisting ingests audio files already sitting in the directory.
func (w *Watcher) sweepExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !IsAudioFile(path) {
			continue
		}
		w.ingest(ctx, path)
	}
	return nil
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(path)
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !IsAudioFile(path) {
		return
	}

	w.startSettling(ctx, path)
}

// startSettling (re)starts the settle timer for a file.
func (w *Watcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	pending := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	pending.timer = time.AfterFunc(w.settleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = pending
}

// checkSettled hands the file to the intake if it stopped changing,
// otherwise restarts the timer.
func (w *Watcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()

	pending, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// File disappeared while settling.
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.settleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.ingest(ctx, path)
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	w.logger.Info("ingesting audio file", "path", path)
	if err := w.intake.IngestAudioFile(ctx, path); err != nil {
		w.logger.Error("failed to ingest audio file", "path", path, "error", err)
	}
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}
}

// IsAudioFile reports whether the path has a supported audio extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".m4a", ".aac", ".ogg", ".opus", ".flac":
		return true
	}
	return false
}
