package devhost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from a UI rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads connected pages whenever a file under dir changes. It returns
// once the watch is established and stops when ctx is done.
func (s *Server) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := addWatchTree(watcher, dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		var mu sync.Mutex
		var stopped bool

		defer func() {
			mu.Lock()
			stopped = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addWatchTree(watcher, event.Name)
					}
				}
				if isEditorNoise(event.Name) || event.Op == fsnotify.Chmod {
					continue
				}

				mu.Lock()
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				name := event.Name
				debounceTimer = time.AfterFunc(debounce, func() {
					mu.Lock()
					defer mu.Unlock()
					if stopped {
						return
					}
					s.log.Info("%s changed, reloading page", filepath.Base(name))
					s.Reload()
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("watcher: %v", err)
			}
		}
	}()

	return nil
}

// isEditorNoise filters swap and backup files written by text editors.
func isEditorNoise(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".#") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = watcher.Add(path)
		}
		return nil
	})
}
