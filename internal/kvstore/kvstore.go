// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kvstore provides the process-wide local key-value store.
//
// Every persisted entity (profile cache, chat list, theme, language, read
// notifications) is serialized independently under a fixed, namespaced string
// key. Writes are atomic per key; there are no cross-key transactions.
package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// =============================================================================
// KEYS
// =============================================================================

// Namespaced keys for every persisted entity.
const (
	KeyOnboarded         = "rookie_onboarded"
	KeyUser              = "rookie_user"
	KeyChatList          = "rookie_chat_list"
	KeySelectedChat      = "rookie_selected_chat"
	KeyTheme             = "rookie_theme"
	KeyLanguage          = "rookie_language"
	KeyReadNotifications = "rookie_read_notifications"
	KeySession           = "rookie_session"
)

// ErrNotFound is returned when a key has no stored value.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = errors.New("key not found")

// =============================================================================
// STORE
// =============================================================================

// Store is a string-keyed, string-valued store backed by a single SQLite
// table. It is safe for concurrent use; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value. The write is
// atomic at the level of this single key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing a missing key is not
// an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// GetDefault returns the value stored under key, or fallback when the key is
// absent or unreadable. Local-store failures degrade to the default.
func (s *Store) GetDefault(key, fallback string) string {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return value
}
