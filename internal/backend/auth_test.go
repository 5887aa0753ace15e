// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL, "anon-test-key")
}

func TestSignInWithPassword(t *testing.T) {
	var gotPath, gotAPIKey string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(`{
			"access_token": "token-123",
			"refresh_token": "refresh-123",
			"expires_at": 9999999999,
			"user": {"id": "user-1", "email": "a@b.c", "user_metadata": {"full_name": "Asha"}}
		}`))
	})

	session, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword failed: %v", err)
	}
	if session.AccessToken != "token-123" {
		t.Errorf("AccessToken = %q", session.AccessToken)
	}
	if session.User.DisplayName() != "Asha" {
		t.Errorf("DisplayName = %q", session.User.DisplayName())
	}
	if gotPath != "/auth/v1/token?grant_type=password" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAPIKey != "anon-test-key" {
		t.Errorf("apikey header = %q", gotAPIKey)
	}
	if client.CurrentSession() == nil {
		t.Error("session should be cached after sign-in")
	}
}

func TestSignInFailure(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "a@b.c", "wrong")
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
	if client.CurrentSession() != nil {
		t.Error("failed sign-in must not cache a session")
	}
}

func TestRestoreSession(t *testing.T) {
	var gotAuth string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id": "user-9", "email": "x@y.z", "user_metadata": {}}`))
	})

	session, err := client.RestoreSession(context.Background(), "stored-token")
	if err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if session.User.ID != "user-9" {
		t.Errorf("User.ID = %q", session.User.ID)
	}
	if gotAuth != "Bearer stored-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestRestoreSessionEmptyToken(t *testing.T) {
	client := NewClient("https://example.test", "anon")
	if _, err := client.RestoreSession(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "")
	_, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAuthStateSubscription(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"access_token": "t", "user": {"id": "u1"}}`))
	})

	sub := client.OnAuthStateChange()
	defer sub.Unsubscribe()

	if _, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != SignedIn || ev.Session == nil || ev.Session.User.ID != "u1" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SignedIn event")
	}

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != SignedOut || ev.Session != nil {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SignedOut event")
	}

	if client.CurrentSession() != nil {
		t.Error("session should be cleared after sign-out")
	}
}

func TestSignOutWithoutSessionEmitsSignedOut(t *testing.T) {
	client := NewClient("https://example.test", "anon")
	sub := client.OnAuthStateChange()
	defer sub.Unsubscribe()

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}

	select {
	case ev := <-sub.Events():
		if ev.Type != SignedOut || ev.Session != nil {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SignedOut event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	client := NewClient("https://example.test", "anon")
	sub := client.OnAuthStateChange()

	sub.Unsubscribe()
	sub.Unsubscribe() // second call must be harmless

	if _, ok := <-sub.Events(); ok {
		t.Error("events channel should be closed after Unsubscribe")
	}

	// Emitting after unsubscribe must not panic.
	client.emit(AuthEvent{Type: SignedOut})
}

func TestUserClaimFallbacks(t *testing.T) {
	u := User{UserMetadata: map[string]any{"name": "Ravi", "picture": "https://img/x.png"}}
	if u.DisplayName() != "Ravi" {
		t.Errorf("DisplayName = %q", u.DisplayName())
	}
	if u.AvatarURL() != "https://img/x.png" {
		t.Errorf("AvatarURL = %q", u.AvatarURL())
	}

	empty := User{}
	if empty.DisplayName() != "" || empty.AvatarURL() != "" {
		t.Error("missing claims should yield empty strings")
	}
}
