package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDebounce is how long Watch waits after the last event on the config
// file before reloading it. One save often produces several events.
const ReloadDebounce = 100 * time.Millisecond

// Watch reloads path after it changes and calls onChange with the new Config.
// It runs until ctx is cancelled.
//
// The parent directory is watched, so a file replaced by rename keeps being
// tracked. A reload that fails, or that finds an empty file, is logged and
// onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", target)

	debounce := time.NewTimer(ReloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(ReloadDebounce)

		case <-debounce.C:
			cfg, ok := reload(target)
			if !ok {
				continue
			}
			slog.Info("config: reloaded", "path", target, "packages", len(cfg.Packages), "fit_files", len(cfg.FitFiles))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reload loads path unless it is missing or empty. An empty file is what a
// truncating writer leaves between its truncate and its write.
func reload(path string) (*Config, bool) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("config: reload skipped", "path", path, "err", err)
		return nil, false
	}
	if info.Size() == 0 {
		slog.Debug("config: reload skipped, file is empty", "path", path)
		return nil, false
	}
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
		return nil, false
	}
	return cfg, true
}
