// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// NOTIFICATION ITEM
// =============================================================================

// NotificationItem is one inbox entry. Items are wholly owned by the remote
// source; the client only tracks which identifiers were dismissed.
type NotificationItem struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

// =============================================================================
// READ SET
// =============================================================================

// ReadSet is the append-only collection of dismissed notification ids.
// Duplicate entries are permitted; membership is what matters.
type ReadSet []string

// Contains reports whether id has been dismissed.
func (r ReadSet) Contains(id string) bool {
	for _, read := range r {
		if read == id {
			return true
		}
	}
	return false
}

// Add returns the set with id appended. Adding an id twice is harmless.
func (r ReadSet) Add(id string) ReadSet {
	return append(r, id)
}

// UnreadCount returns the number of items whose id is not in the set.
func (r ReadSet) UnreadCount(items []NotificationItem) int {
	count := 0
	for _, item := range items {
		if !r.Contains(item.ID) {
			count++
		}
	}
	return count
}
