package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the quiet period after the last filesystem event
// before an accumulated batch of changes triggers an incremental run.
// Mirrors teacher's file_watcher.go debounceTime.
const watchDebounce = 500 * time.Millisecond

var watchSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".cortex":      true,
}

// RunWatch watches opts.RepoPath for filesystem changes and triggers
// an incremental run (RunIncremental) each time a batch of changes
// settles, until ctx is cancelled. Collapses teacher's
// fileWatcher (recursive fsnotify.Watcher, debounce timer, accumulated
// change set) to the single directory tree and single debounce timer
// this pipeline needs; there is no daemon, so no pause/resume state.
func RunWatch(ctx context.Context, opts *Options, onResult func(*Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, opts.RepoPath); err != nil {
		return fmt.Errorf("watch %s: %w", opts.RepoPath, err)
	}

	accumulated := make(map[string]bool)
	changesCh := make(chan struct{}, 1)
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name); err != nil {
						log.Printf("watch: failed to add directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel, relErr := filepath.Rel(opts.RepoPath, event.Name)
			if relErr != nil {
				continue
			}
			if !IsIndexable(rel) {
				continue
			}

			code := "M"
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				code = "D"
			}
			accumulated[code+":"+rel] = true

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case changesCh <- struct{}{}:
				default:
				}
			})

		case <-changesCh:
			if len(accumulated) == 0 {
				continue
			}
			entries := make([]string, 0, len(accumulated))
			for e := range accumulated {
				entries = append(entries, e)
			}
			accumulated = make(map[string]bool)

			runOpts := *opts
			runOpts.ChangedFiles = strings.Join(entries, ",")
			result, err := RunIncremental(ctx, &runOpts)
			if err != nil {
				log.Printf("watch: incremental run failed: %v", err)
				continue
			}
			if onResult != nil {
				onResult(result)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

// addWatchDirs registers root and every subdirectory under it with
// watcher, skipping the directories teacher's file_watcher.go also
// skips (.git, node_modules, .cortex).
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if watchSkipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
