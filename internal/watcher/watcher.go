// Package watcher reloads the site configuration when site.json is edited
// outside the service.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/sitewright/internal/apperr"
)

// DefaultDebounce coalesces the burst of events an editor or an atomic
// rename produces.
const DefaultDebounce = 200 * time.Millisecond

// Reloader re-reads the configuration and reports whether it changed. A
// reload refused with apperr.ErrBusy is retried after the debounce interval.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Watch starts an fsnotify watcher on the directory holding configPath and
// calls r.Reload, debounced, whenever that file is created, written or
// renamed into place. It returns when ctx is cancelled.
//
// The directory is watched rather than the file because saves replace the
// file, which drops a watch held on the old inode.
func Watch(ctx context.Context, configPath string, r Reloader, debounce time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(configPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(configPath)

	logger.Info("watcher: started", slog.String("path", configPath))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			changed, reloadErr := r.Reload(ctx)
			if errors.Is(reloadErr, apperr.ErrBusy) {
				logger.Debug("watcher: busy, reload deferred")
				scheduleReload()
				continue
			}
			if reloadErr != nil {
				logger.Warn("watcher: reload failed", slog.String("error", reloadErr.Error()))
				continue
			}
			if changed {
				logger.Info("watcher: configuration reloaded")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				logger.Debug("watcher: change", slog.String("op", ev.Op.String()))
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
