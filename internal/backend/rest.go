// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rookie-ai/rookie-tui/internal/model"
)

// =============================================================================
// USERS TABLE
// =============================================================================

// profileRow is the wire shape of a users table row.
type profileRow struct {
	ID        string  `json:"id,omitempty"`
	Email     string  `json:"email,omitempty"`
	Name      string  `json:"name"`
	Gender    string  `json:"gender,omitempty"`
	Exam      string  `json:"exam,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

func (r profileRow) toProfile() model.Profile {
	p := model.Profile{
		ID:     r.ID,
		Email:  r.Email,
		Name:   r.Name,
		Gender: r.Gender,
		Exam:   r.Exam,
	}
	if r.AvatarURL != nil {
		p.AvatarURL = *r.AvatarURL
	}
	return p
}

func avatarPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetProfile fetches the users row for the given identifier.
// Returns ErrProfileNotFound when no row exists.
func (c *Client) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	values := url.Values{}
	values.Set("select", "*")
	values.Set("id", "eq."+id)
	values.Set("limit", "1")

	body, err := c.do(ctx, http.MethodGet, restQuery("users", values), nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []profileRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse users row: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}

	profile := rows[0].toProfile()
	return &profile, nil
}

// UpsertProfile writes a users row keyed by the profile identifier,
// replacing any existing row for that identifier.
func (c *Client) UpsertProfile(ctx context.Context, p model.Profile) error {
	row := profileRow{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Gender:    p.Gender,
		Exam:      p.Exam,
		AvatarURL: avatarPtr(p.AvatarURL),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.do(ctx, http.MethodPost, "/rest/v1/users", []profileRow{row}, map[string]string{
		"Prefer": "resolution=merge-duplicates",
	})
	return err
}

// InsertProfile creates a users row for a profile with no identifier yet and
// returns the generated identifier.
func (c *Client) InsertProfile(ctx context.Context, p model.Profile) (string, error) {
	row := profileRow{
		Name:      p.Name,
		Gender:    p.Gender,
		Exam:      p.Exam,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := c.do(ctx, http.MethodPost, "/rest/v1/users", []profileRow{row}, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return "", err
	}

	var rows []profileRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", fmt.Errorf("failed to parse inserted row: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("insert returned no rows")
	}
	return rows[0].ID, nil
}

// =============================================================================
// NOTIFICATIONS TABLE
// =============================================================================

// notificationRow is the wire shape of a notifications table row. Only the
// fields the inbox renders are selected.
type notificationRow struct {
	ID       string `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// Notifications fetches the notification feed, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.NotificationItem, error) {
	values := url.Values{}
	values.Set("select", "id,author,title,category,date")
	values.Set("order", "date.desc")

	body, err := c.do(ctx, http.MethodGet, restQuery("notifications", values), nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []notificationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}

	items := make([]model.NotificationItem, 0, len(rows))
	for _, row := range rows {
		item := model.NotificationItem{
			ID:       row.ID,
			Author:   row.Author,
			Title:    row.Title,
			Category: row.Category,
		}
		if ts, err := time.Parse(time.RFC3339, row.Date); err == nil {
			item.Date = ts
		} else if ts, err := time.Parse("2006-01-02", row.Date); err == nil {
			item.Date = ts
		}
		items = append(items, item)
	}
	return items, nil
}
