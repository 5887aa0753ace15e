// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inbox

import (
	"strings"

	"github.com/rookie-ai/rookie-tui/internal/model"
)

// DefaultImageKey is the fallback bucket for items nothing else matches.
const DefaultImageKey = "default"

// imageKeys is the set of known visual buckets for notification items.
var imageKeys = map[string]bool{
	"dengue":      true,
	"covid":       true,
	"malaria":     true,
	"awareness":   true,
	"vaccination": true,
	"general":     true,
}

// titleKeywords are checked against the item title, in order, when the
// category does not match a known bucket.
var titleKeywords = []string{"dengue", "malaria", "covid"}

// ImageKey maps an item to its visual bucket. The mapping is a pure
// function of the item's text: exact category match first
// (case-insensitive), then keyword substring match on the title, else the
// default bucket.
func ImageKey(item model.NotificationItem) string {
	if cat := strings.ToLower(item.Category); imageKeys[cat] {
		return cat
	}

	title := strings.ToLower(item.Title)
	for _, keyword := range titleKeywords {
		if strings.Contains(title, keyword) {
			return keyword
		}
	}
	return DefaultImageKey
}

// AuthorImageKey maps an item's author label to an author bucket by
// substring match, else the default bucket.
func AuthorImageKey(item model.NotificationItem) string {
	author := strings.ToLower(item.Author)
	if author == "" {
		return DefaultImageKey
	}
	switch {
	case strings.Contains(author, "gov"):
		return "gov"
	case strings.Contains(author, "health"):
		return "healthmin"
	case strings.Contains(author, "ngo"):
		return "ngo"
	case strings.Contains(author, "doctor"):
		return "doctor"
	default:
		return DefaultImageKey
	}
}
