// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// =============================================================================
// SESSION TYPES
// =============================================================================

// User holds the identity claims attached to a session.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// metadataString returns the first non-empty string claim among the keys.
func (u User) metadataString(keys ...string) string {
	for _, key := range keys {
		if v, ok := u.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// DisplayName returns the user's name claim, or empty if none is present.
func (u User) DisplayName() string {
	return u.metadataString("full_name", "name")
}

// AvatarURL returns the user's avatar claim, or empty if none is present.
func (u User) AvatarURL() string {
	return u.metadataString("avatar_url", "picture")
}

// Session is an authenticated backend session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// =============================================================================
// AUTH STATE EVENTS
// =============================================================================

// AuthEventType identifies an authentication state transition.
type AuthEventType string

const (
	// SignedIn is emitted when a session becomes active.
	SignedIn AuthEventType = "SIGNED_IN"

	// SignedOut is emitted when the active session ends.
	SignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is one authentication state change. Session is nil for SignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// Subscription is a cancellable stream of auth state changes. Callers must
// Unsubscribe when their screen goes away; the event channel is closed then.
type Subscription struct {
	events chan AuthEvent
	once   sync.Once
	cancel func()
}

// Events returns the channel auth state changes are delivered on.
func (s *Subscription) Events() <-chan AuthEvent {
	return s.events
}

// Unsubscribe cancels the subscription and closes the event channel.
// Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// OnAuthStateChange registers a new auth state subscription.
func (c *Client) OnAuthStateChange() *Subscription {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan AuthEvent, 8)
	c.subs[id] = ch

	return &Subscription{
		events: ch,
		cancel: func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		},
	}
}

// emit delivers an event to every live subscriber. A subscriber that has
// fallen 8 events behind misses the event rather than blocking the emitter.
func (c *Client) emit(ev AuthEvent) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// CurrentSession returns the cached session, or nil when signed out.
// It never performs a network call.
func (c *Client) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// setSession swaps the cached session and emits the matching event.
func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if s != nil {
		c.emit(AuthEvent{Type: SignedIn, Session: s})
	} else {
		c.emit(AuthEvent{Type: SignedOut})
	}
}

// SignInWithPassword authenticates with an email and password and activates
// the returned session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	c.setSession(&session)
	return &session, nil
}

// RestoreSession validates a previously issued access token and, when the
// backend still accepts it, activates a session for its user.
func (c *Client) RestoreSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}

	body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}

	session := &Session{AccessToken: accessToken, User: user}
	c.setSession(session)
	return session, nil
}

// SignOut revokes the active session and clears it locally. The SignedOut
// event fires even when no remote session exists, so locally registered
// users still get their cached state cleared by subscribers.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.CurrentSession() != nil {
		_, err = c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	}
	c.setSession(nil)
	return err
}
