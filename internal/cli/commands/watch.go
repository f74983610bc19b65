package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFiles runs check once, then again each time one of files changes,
// until ctx is done. Parent directories are watched, not the files, so
// editors that save by renaming a temporary file are still seen.
func watchFiles(ctx context.Context, cc *CommandContext, files []string, check func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	check()
	cc.Renderer.Println(cc.Renderer.Styles().Muted.Render("Watching for changes. Press Ctrl+C to stop."))

	return watchLoop(ctx, watcher.Events, watcher.Errors, targets, cc.Cfg.GetWatchConfig().Debounce, func(name string) {
		cc.Logger.Debug("file changed, re-checking", "file", name)
		check()
	}, func(err error) {
		cc.Logger.Error("watcher error", "error", err)
	})
}

// watchLoop calls onChange once a target has been quiet for debounce after
// a write, create or rename. It returns when ctx is done or events closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	targets map[string]bool, debounce time.Duration, onChange func(string), onError func(error),
) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}

			changed = name
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(changed)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			onError(err)
		}
	}
}
