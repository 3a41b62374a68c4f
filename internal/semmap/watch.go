package semmap

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period the watcher waits for before updating.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Update   UpdateOptions
	Debounce time.Duration
	// OnUpdate is called after every update attempt, with the error if it failed.
	OnUpdate func(*UpdateResult, error)
}

// Watch keeps the document at opts.Update.DocPath in sync with the scan root.
// Changes are debounced; each quiet period runs one Update on this goroutine.
// Writes to the document itself and to excluded directories are ignored.
// It returns nil once ctx is cancelled.
func Watch(ctx context.Context, opts WatchOptions) error {
	upd := opts.Update
	root := upd.Root
	if root == "" {
		root = filepath.Dir(upd.DocPath)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absDoc, err := filepath.Abs(upd.DocPath)
	if err != nil {
		return err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	scan := upd.Scan
	log := scan.logger()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addWatchDirs(w, absRoot, absRoot, scan); err != nil {
		return err
	}
	log.Info("watcher: started", slog.String("root", absRoot), slog.Duration("debounce", debounce))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("watcher: stopped")
			return nil

		case <-fire:
			timer, fire = nil, nil
			result, err := Update(ctx, upd)
			if err != nil {
				log.Warn("watcher: update failed", slog.String("error", err.Error()))
			}
			if opts.OnUpdate != nil {
				opts.OnUpdate(result, err)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name == absDoc || ev.Op == fsnotify.Chmod {
				continue
			}
			rel := relativeSlash(absRoot, ev.Name)
			name := filepath.Base(ev.Name)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if scan.excludesDir(name, rel) {
						continue
					}
					if addErr := addWatchDirs(w, absRoot, ev.Name, scan); addErr != nil {
						log.Warn("watcher: add new dir failed", slog.String("path", rel), slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			if scan.excludesFile(name, rel) || underExcludedDir(rel, scan) {
				continue
			}
			log.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addWatchDirs adds dir and every non-excluded directory below it to the watcher.
func addWatchDirs(w *fsnotify.Watcher, root, dir string, scan ScanOptions) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && scan.excludesDir(d.Name(), relativeSlash(root, p)) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

func underExcludedDir(rel string, scan ScanOptions) bool {
	dir := relDir(rel)
	for dir != "" {
		if scan.excludesDir(filepath.Base(dir), dir) {
			return true
		}
		dir = relDir(dir)
	}
	return false
}
