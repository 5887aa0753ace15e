// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

// Inbox merges notification items from its sources and tracks dismissals.
//
// Secondary source items are listed ahead of primary items, preserving each
// source's own order. A failing source contributes nothing; fetch failures
// never surface past the log.
type Inbox struct {
	kv        *kvstore.Store
	primary   Source
	secondary []Source

	mu    sync.Mutex
	items []model.NotificationItem
	read  model.ReadSet
}

// New creates an inbox over the given sources and restores the persisted
// read set.
func New(kv *kvstore.Store, primary Source, secondary ...Source) *Inbox {
	in := &Inbox{kv: kv, primary: primary, secondary: secondary}
	in.restoreReadSet()
	return in
}

// restoreReadSet loads the dismissed-id set from the local store.
func (in *Inbox) restoreReadSet() {
	raw, err := in.kv.Get(kvstore.KeyReadNotifications)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("inbox: reading read set: %v", err)
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), &in.read); err != nil {
		log.Printf("inbox: decoding read set: %v", err)
		in.read = nil
	}
}

// Refresh refetches all sources and replaces the item list. Secondary items
// come first, then primary items.
func (in *Inbox) Refresh(ctx context.Context) []model.NotificationItem {
	var merged []model.NotificationItem

	for _, src := range in.secondary {
		items, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("inbox: fetching from %s: %v", src.Name(), err)
			continue
		}
		merged = append(merged, items...)
	}

	if in.primary != nil {
		items, err := in.primary.Fetch(ctx)
		if err != nil {
			log.Printf("inbox: fetching from %s: %v", in.primary.Name(), err)
		} else {
			merged = append(merged, items...)
		}
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = merged
	return in.visibleLocked()
}

// Items returns a copy of all fetched items, dismissed or not.
func (in *Inbox) Items() []model.NotificationItem {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]model.NotificationItem, len(in.items))
	copy(out, in.items)
	return out
}

// Visible returns the items not yet dismissed.
func (in *Inbox) Visible() []model.NotificationItem {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.visibleLocked()
}

func (in *Inbox) visibleLocked() []model.NotificationItem {
	var out []model.NotificationItem
	for _, item := range in.items {
		if !in.read.Contains(item.ID) {
			out = append(out, item)
		}
	}
	return out
}

// Unread returns the count of fetched items never dismissed.
func (in *Inbox) Unread() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.read.UnreadCount(in.items)
}

// Dismiss marks an item read and persists the read set. Dismissing an id
// twice, or an id that was never fetched, is harmless.
func (in *Inbox) Dismiss(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.read = in.read.Add(id)
	data, err := json.Marshal(in.read)
	if err != nil {
		log.Printf("inbox: encoding read set: %v", err)
		return
	}
	if err := in.kv.Set(kvstore.KeyReadNotifications, string(data)); err != nil {
		log.Printf("inbox: saving read set: %v", err)
	}
}
