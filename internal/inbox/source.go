// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package inbox implements the notification inbox: items fetched from a
// primary remote source, merged with any number of secondary sources, and
// filtered against the locally persisted read set.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/rookie-ai/rookie-tui/internal/backend"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

// Source produces notification items. Sources are pluggable; the inbox
// merges whatever its configured sources return.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch returns the source's current items, newest first.
	Fetch(ctx context.Context) ([]model.NotificationItem, error)
}

// =============================================================================
// BACKEND SOURCE
// =============================================================================

// BackendSource fetches notifications from the hosted backend feed.
type BackendSource struct {
	client *backend.Client
}

// NewBackendSource creates the primary backend-backed source.
func NewBackendSource(client *backend.Client) *BackendSource {
	return &BackendSource{client: client}
}

// Name implements Source.
func (s *BackendSource) Name() string { return "backend" }

// Fetch implements Source.
func (s *BackendSource) Fetch(ctx context.Context) ([]model.NotificationItem, error) {
	return s.client.Notifications(ctx)
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads notification items from a local JSON file, typically
// dropped in place by an external alerts process. A missing file simply
// yields no items.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the given JSON file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return "alerts file" }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]model.NotificationItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read alerts file: %w", err)
	}

	var items []model.NotificationItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse alerts file: %w", err)
	}
	return items, nil
}

// Watch reports changes to the alerts file on the returned channel until
// ctx is cancelled. The channel coalesces events; receivers should treat a
// receive as "refetch now".
func (s *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors and atomic writers replace the file,
	// which would orphan a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch alerts directory: %w", err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return changes, nil
}
