// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tokenvest/vestctl/internal/util"
)

// reloadDebounce coalesces bursts of editor writes into one reload.
const reloadDebounce = 500 * time.Millisecond

// ReloadFunc is called after every reload attempt with the names loaded
// from the directory, or the error that left the registry unchanged.
type ReloadFunc func(names []string, err error)

// Watch reloads the registry from dir whenever a contract file in it is
// created, modified, removed or renamed. It returns once the watcher is
// running; the watcher stops when ctx is cancelled.
func (r *Registry) Watch(ctx context.Context, dir string, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch interface directory: %w", err)
	}

	util.Log().Debug("watching interface directory", "dir", dir)

	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isContractFile(filepath.Base(event.Name)) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if ctx.Err() != nil {
						return
					}
					names, err := r.LoadDir(dir)
					if err != nil {
						util.Log().Warn("interface reload failed", "dir", dir, "error", err)
					} else {
						util.Log().Info("interfaces reloaded", "dir", dir, "programs", names)
					}
					if onReload != nil {
						onReload(names, err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Log().Warn("file watcher error", "error", err)
			}
		}
	}()

	return nil
}
