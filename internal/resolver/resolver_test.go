// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rookie-ai/rookie-tui/internal/backend"
	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeBackend serves the GoTrue and PostgREST endpoints the resolver touches.
type fakeBackend struct {
	requests atomic.Int32

	userRows    string // JSON array returned for users selects
	usersStatus int    // status for users selects, 0 means 200
	upserts     atomic.Int32
	inserted    string // JSON array returned for users inserts
	tokenStatus int    // status for password grants, 0 means 200
}

func (f *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		switch {
		case r.URL.Path == "/auth/v1/token" && r.Method == http.MethodPost:
			if f.tokenStatus != 0 {
				w.WriteHeader(f.tokenStatus)
				w.Write([]byte(`{"message": "invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"access_token": "tok-pass", "user": {"id": "user-1", "email": "a@b.c", "user_metadata": {"full_name": "Asha"}}}`))
		case r.URL.Path == "/auth/v1/user":
			w.Write([]byte(`{"id": "user-1", "email": "a@b.c", "user_metadata": {"full_name": "Asha", "avatar_url": "https://img/a.png"}}`))
		case r.URL.Path == "/rest/v1/users" && r.Method == http.MethodGet:
			if f.usersStatus != 0 {
				w.WriteHeader(f.usersStatus)
				w.Write([]byte(`{"message": "boom"}`))
				return
			}
			w.Write([]byte(f.userRows))
		case r.URL.Path == "/rest/v1/users" && r.Method == http.MethodPost:
			f.upserts.Add(1)
			w.WriteHeader(http.StatusCreated)
			if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
				w.Write([]byte(f.inserted))
				return
			}
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newResolver(t *testing.T, fake *fakeBackend) (*Resolver, *kvstore.Store, *backend.Client) {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	store := newTestStore(t)
	client := backend.NewClient(server.URL, "anon")
	return New(store, client), store, client
}

func signIn(t *testing.T, client *backend.Client) {
	t.Helper()
	if _, err := client.RestoreSession(context.Background(), "tok"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
}

func TestResolveFreshInstall(t *testing.T) {
	fake := &fakeBackend{}
	r, _, _ := newResolver(t, fake)

	res := r.Resolve(context.Background())
	if res.Route != RouteSplash {
		t.Errorf("Route = %v, want splash", res.Route)
	}
	if fake.requests.Load() != 0 {
		t.Errorf("fresh install should make no remote calls, made %d", fake.requests.Load())
	}
}

func TestResolveLocalFlagSkipsRemote(t *testing.T) {
	fake := &fakeBackend{}
	r, store, _ := newResolver(t, fake)

	store.Set(kvstore.KeyOnboarded, "true")
	profile, _ := json.Marshal(model.Profile{ID: "user-1", Name: "Asha", Gender: "Female", Exam: "NEET"})
	store.Set(kvstore.KeyUser, string(profile))

	res := r.Resolve(context.Background())
	if res.Route != RouteMain {
		t.Errorf("Route = %v, want main", res.Route)
	}
	if res.Profile == nil || res.Profile.Name != "Asha" {
		t.Errorf("expected cached profile, got %+v", res.Profile)
	}
	if fake.requests.Load() != 0 {
		t.Errorf("flag path must not hit the network, made %d calls", fake.requests.Load())
	}
}

func TestResolveCompleteRemoteProfile(t *testing.T) {
	fake := &fakeBackend{
		userRows: `[{"id": "user-1", "email": "a@b.c", "name": "Asha", "gender": "Female", "exam": "NEET"}]`,
	}
	r, store, client := newResolver(t, fake)
	signIn(t, client)

	res := r.Resolve(context.Background())
	if res.Route != RouteMain {
		t.Fatalf("Route = %v, want main", res.Route)
	}

	// Profile and flag are cached locally.
	if flag, err := store.Get(kvstore.KeyOnboarded); err != nil || flag != "true" {
		t.Errorf("onboarded flag not cached: %q, %v", flag, err)
	}
	raw, err := store.Get(kvstore.KeyUser)
	if err != nil {
		t.Fatalf("profile not cached: %v", err)
	}
	var cached model.Profile
	json.Unmarshal([]byte(raw), &cached)
	if cached.Gender != "Female" || cached.Exam != "NEET" {
		t.Errorf("cached profile wrong: %+v", cached)
	}
}

func TestResolveIncompleteRemoteProfile(t *testing.T) {
	fake := &fakeBackend{
		userRows: `[{"id": "user-1", "email": "a@b.c", "name": "Asha", "gender": "", "exam": ""}]`,
	}
	r, store, client := newResolver(t, fake)
	signIn(t, client)

	res := r.Resolve(context.Background())
	if res.Route != RouteOnboarding {
		t.Errorf("Route = %v, want onboarding", res.Route)
	}
	if res.PrefillName != "Asha" {
		t.Errorf("PrefillName = %q", res.PrefillName)
	}
	if _, err := store.Get(kvstore.KeyOnboarded); err == nil {
		t.Error("incomplete profile must not set the onboarded flag")
	}
}

func TestResolveMissingProfileCreatesMinimal(t *testing.T) {
	fake := &fakeBackend{userRows: `[]`}
	r, store, client := newResolver(t, fake)
	signIn(t, client)

	res := r.Resolve(context.Background())
	if res.Route != RouteMain {
		t.Fatalf("Route = %v, want main", res.Route)
	}
	if fake.upserts.Load() != 1 {
		t.Errorf("expected one upsert, got %d", fake.upserts.Load())
	}
	if res.Profile == nil || res.Profile.Name != "Asha" || res.Profile.Email != "a@b.c" {
		t.Errorf("minimal profile wrong: %+v", res.Profile)
	}
	if flag, _ := store.Get(kvstore.KeyOnboarded); flag != "true" {
		t.Error("minimal profile path should mark onboarded")
	}
}

func TestResolveProfileFetchFailure(t *testing.T) {
	fake := &fakeBackend{usersStatus: http.StatusInternalServerError}
	r, _, client := newResolver(t, fake)
	signIn(t, client)

	res := r.Resolve(context.Background())
	if res.Route != RouteOnboarding {
		t.Errorf("fetch failure should fall through to onboarding, got %v", res.Route)
	}
	if res.PrefillName != "Asha" {
		t.Errorf("PrefillName = %q", res.PrefillName)
	}
}

func TestResolveRestoresStoredSession(t *testing.T) {
	fake := &fakeBackend{
		userRows: `[{"id": "user-1", "name": "Asha", "gender": "Female", "exam": "NEET"}]`,
	}
	r, store, _ := newResolver(t, fake)
	store.Set(kvstore.KeySession, "stored-token")

	res := r.Resolve(context.Background())
	if res.Route != RouteMain {
		t.Errorf("Route = %v, want main", res.Route)
	}
}

func TestSignInResolvesAndPersistsToken(t *testing.T) {
	fake := &fakeBackend{
		userRows: `[{"id": "user-1", "email": "a@b.c", "name": "Asha", "gender": "Female", "exam": "NEET"}]`,
	}
	r, store, _ := newResolver(t, fake)

	res, err := r.SignIn(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if res.Route != RouteMain {
		t.Errorf("Route = %v, want main", res.Route)
	}
	if tok, err := store.Get(kvstore.KeySession); err != nil || tok != "tok-pass" {
		t.Errorf("session token not persisted: %q, %v", tok, err)
	}
}

func TestSignInFailure(t *testing.T) {
	fake := &fakeBackend{tokenStatus: http.StatusUnauthorized}
	r, store, _ := newResolver(t, fake)

	res, err := r.SignIn(context.Background(), "a@b.c", "wrong")
	if err == nil {
		t.Fatal("expected sign-in error")
	}
	if res.Route != RouteSplash {
		t.Errorf("Route = %v, want splash", res.Route)
	}
	if _, err := store.Get(kvstore.KeySession); err == nil {
		t.Error("failed sign-in must not persist a token")
	}
}

func TestCompleteOnboardingValidation(t *testing.T) {
	fake := &fakeBackend{}
	r, _, _ := newResolver(t, fake)

	tests := []struct {
		name, fullName, gender, exam string
	}{
		{"empty name", "  ", "Male", "NEET"},
		{"empty gender", "Ravi", "", "NEET"},
		{"empty exam", "Ravi", "Male", ""},
		{"bad gender", "Ravi", "Alien", "NEET"},
		{"bad exam", "Ravi", "Male", "SAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.CompleteOnboarding(context.Background(), tt.fullName, tt.gender, tt.exam); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if fake.requests.Load() != 0 {
		t.Errorf("validation failures must not hit the network, made %d calls", fake.requests.Load())
	}
}

func TestCompleteOnboardingWithoutSession(t *testing.T) {
	fake := &fakeBackend{
		inserted: `[{"id": "generated-1", "name": "Ravi", "gender": "Male", "exam": "JEE Mains"}]`,
	}
	r, store, _ := newResolver(t, fake)

	profile, err := r.CompleteOnboarding(context.Background(), " Ravi ", "Male", "JEE Mains")
	if err != nil {
		t.Fatalf("CompleteOnboarding failed: %v", err)
	}
	if profile.ID != "generated-1" {
		t.Errorf("ID = %q, want the generated id", profile.ID)
	}
	if profile.Name != "Ravi" {
		t.Errorf("Name = %q, want trimmed", profile.Name)
	}
	if flag, _ := store.Get(kvstore.KeyOnboarded); flag != "true" {
		t.Error("onboarded flag not persisted")
	}
}

func TestCompleteOnboardingWithSession(t *testing.T) {
	fake := &fakeBackend{userRows: `[]`}
	r, store, client := newResolver(t, fake)
	signIn(t, client)

	profile, err := r.CompleteOnboarding(context.Background(), "Asha", "Female", "NEET")
	if err != nil {
		t.Fatalf("CompleteOnboarding failed: %v", err)
	}
	if profile.ID != "user-1" || profile.Email != "a@b.c" {
		t.Errorf("identity claims not applied: %+v", profile)
	}
	raw, err := store.Get(kvstore.KeyUser)
	if err != nil || !strings.Contains(raw, "NEET") {
		t.Errorf("profile not cached locally: %q, %v", raw, err)
	}
}

func TestCompleteOnboardingSaveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "db down"}`))
	}))
	defer server.Close()
	r := New(newTestStore(t), backend.NewClient(server.URL, "anon"))

	_, err := r.CompleteOnboarding(context.Background(), "Ravi", "Male", "Other")
	if err == nil || !strings.Contains(err.Error(), "failed to save profile to database") {
		t.Errorf("expected database save error, got %v", err)
	}
}

func TestSubscriptionSignOutClearsLocalState(t *testing.T) {
	fake := &fakeBackend{userRows: `[]`}
	r, store, client := newResolver(t, fake)

	store.Set(kvstore.KeyUser, `{"name":"Asha"}`)
	store.Set(kvstore.KeyOnboarded, "true")
	store.Set(kvstore.KeySession, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := r.Subscribe(ctx)
	defer sub.Unsubscribe()

	signIn(t, client)
	if err := client.SignOut(context.Background()); err != nil {
		// logout endpoint 404s in the fake; local clearing still happens
		_ = err
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case res := <-sub.Resolutions():
			if res.Route == RouteSplash {
				for _, key := range []string{kvstore.KeyUser, kvstore.KeyOnboarded, kvstore.KeySession} {
					if _, err := store.Get(key); err == nil {
						t.Errorf("%s should be cleared after sign-out", key)
					}
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for splash resolution")
		}
	}
}
