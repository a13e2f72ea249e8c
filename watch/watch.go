// Package watch monitors a directory and runs a handler for each media file
// that appears, with bounded concurrency.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Handler processes one newly arrived file.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir           string
	handler       Handler
	logger        *log.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

func New(dir string, handler Handler, logger *log.Logger, maxConcurrent int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Watcher{
		dir:           dir,
		handler:       handler,
		logger:        logger,
		watcher:       fsw,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
	}, nil
}

// Start blocks, dispatching handler calls until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for media files",
		"dir", w.dir, "max_concurrent", w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for in-flight processing")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !IsMediaFile(event.Name) {
				w.logger.Debug("ignoring non-media file", "path", event.Name)
				continue
			}
			w.logger.Info("new media file", "path", event.Name)

			// Give the writer a moment to finish the file.
			time.Sleep(500 * time.Millisecond)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()
					if err := w.handler(ctx, path); err != nil {
						w.logger.Error("processing failed",
							"path", path, "error", err)
					}
				}(event.Name)
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

var mediaExtensions = []string{
	".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv",
	".mp3", ".m4a", ".wav", ".ogg", ".opus", ".flac",
}

// IsMediaFile reports whether the path has a recognized audio or video
// extension.
func IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range mediaExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
