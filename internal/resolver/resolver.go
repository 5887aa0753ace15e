// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver implements the startup decision logic: given the local
// onboarded flag, the remote authentication session, and the remote profile
// record, it decides which screen the application opens on.
//
// Remote failures never surface here. Every failed call is logged and
// treated as absence, falling through to the next branch. Only the
// onboarding form submission path returns user-visible errors.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/rookie-ai/rookie-tui/internal/backend"
	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

// Route identifies the screen the application should open on.
type Route int

const (
	// RouteSplash shows the introductory splash, then terms, then the form.
	RouteSplash Route = iota

	// RouteOnboarding shows the profile onboarding form.
	RouteOnboarding

	// RouteMain enters the main chat application.
	RouteMain
)

// String returns a human readable route name.
func (r Route) String() string {
	switch r {
	case RouteSplash:
		return "splash"
	case RouteOnboarding:
		return "onboarding"
	case RouteMain:
		return "main"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of a resolve pass.
type Resolution struct {
	Route Route

	// Profile is the locally cached profile, when one was established.
	Profile *model.Profile

	// PrefillName is the known display name to seed the onboarding form
	// with when Route is RouteOnboarding.
	PrefillName string
}

// Resolver decides the initial application state from local and remote state.
type Resolver struct {
	store   *kvstore.Store
	backend *backend.Client
}

// New creates a resolver over the local store and the backend client.
func New(store *kvstore.Store, client *backend.Client) *Resolver {
	return &Resolver{store: store, backend: client}
}

// Resolve runs the startup decision. Branch order:
//
//  1. Local onboarded flag set: enter the main app, no remote calls at all.
//  2. An authentication session exists (cached or restorable from the
//     stored token): resolve from the remote profile record.
//  3. Otherwise: the splash/terms flow.
//
// A failure reading the local flag counts as "not onboarded"; remote
// failures count as absence of the thing being fetched.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	if flag, err := r.store.Get(kvstore.KeyOnboarded); err == nil && flag == "true" {
		return Resolution{Route: RouteMain, Profile: r.cachedProfile()}
	} else if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		log.Printf("resolver: reading onboarded flag: %v", err)
	}

	if session := r.currentSession(ctx); session != nil {
		return r.resolveSignedIn(ctx, session)
	}

	return Resolution{Route: RouteSplash}
}

// currentSession returns the active session, restoring one from the stored
// access token if needed. Restore failures are logged and yield nil.
func (r *Resolver) currentSession(ctx context.Context) *backend.Session {
	if session := r.backend.CurrentSession(); session != nil {
		return session
	}

	token, err := r.store.Get(kvstore.KeySession)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("resolver: reading stored session: %v", err)
		}
		return nil
	}

	session, err := r.backend.RestoreSession(ctx, token)
	if err != nil {
		log.Printf("resolver: restoring session: %v", err)
		return nil
	}
	return session
}

// resolveSignedIn runs the profile-fetch branch for an active session.
func (r *Resolver) resolveSignedIn(ctx context.Context, session *backend.Session) Resolution {
	profile, err := r.backend.GetProfile(ctx, session.User.ID)

	switch {
	case errors.Is(err, backend.ErrProfileNotFound):
		// First sign-in from this identity: create a minimal record from
		// the identity claims and treat the user as onboarded.
		minimal := model.Profile{
			ID:        session.User.ID,
			Email:     session.User.Email,
			Name:      session.User.DisplayName(),
			AvatarURL: session.User.AvatarURL(),
		}
		if upsertErr := r.backend.UpsertProfile(ctx, minimal); upsertErr != nil {
			log.Printf("resolver: creating minimal profile: %v", upsertErr)
			return Resolution{Route: RouteOnboarding, PrefillName: minimal.Name}
		}
		if cacheErr := r.persistLocal(minimal); cacheErr != nil {
			log.Printf("resolver: caching minimal profile: %v", cacheErr)
		}
		return Resolution{Route: RouteMain, Profile: &minimal}

	case err != nil:
		log.Printf("resolver: fetching profile: %v", err)
		return Resolution{Route: RouteOnboarding, PrefillName: session.User.DisplayName()}
	}

	if profile.IsOnboarded() {
		if cacheErr := r.persistLocal(*profile); cacheErr != nil {
			log.Printf("resolver: caching profile: %v", cacheErr)
		}
		return Resolution{Route: RouteMain, Profile: profile}
	}

	name := profile.Name
	if name == "" {
		name = session.User.DisplayName()
	}
	return Resolution{Route: RouteOnboarding, PrefillName: name}
}

// cachedProfile reads the locally persisted profile, if any.
func (r *Resolver) cachedProfile() *model.Profile {
	raw, err := r.store.Get(kvstore.KeyUser)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("resolver: reading cached profile: %v", err)
		}
		return nil
	}
	var profile model.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		log.Printf("resolver: decoding cached profile: %v", err)
		return nil
	}
	return &profile
}

// persistLocal writes the profile and the onboarded flag to the local store.
func (r *Resolver) persistLocal(profile model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := r.store.Set(kvstore.KeyUser, string(data)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	if err := r.store.Set(kvstore.KeyOnboarded, "true"); err != nil {
		return fmt.Errorf("saving onboarded flag: %w", err)
	}
	return nil
}

// clearLocal removes all locally cached profile state.
func (r *Resolver) clearLocal() {
	for _, key := range []string{kvstore.KeyUser, kvstore.KeyOnboarded, kvstore.KeySession} {
		if err := r.store.Remove(key); err != nil {
			log.Printf("resolver: clearing %s: %v", key, err)
		}
	}
}

// persistSession stores the access token so the next launch can restore the
// session without credentials.
func (r *Resolver) persistSession(session *backend.Session) {
	if session == nil || session.AccessToken == "" {
		return
	}
	if err := r.store.Set(kvstore.KeySession, session.AccessToken); err != nil {
		log.Printf("resolver: storing session token: %v", err)
	}
}

// =============================================================================
// SIGN IN
// =============================================================================

// SignIn authenticates with the backend, stores the session token locally,
// and runs the signed-in resolution branch. Unlike Resolve, authentication
// failures surface to the caller.
func (r *Resolver) SignIn(ctx context.Context, email, password string) (Resolution, error) {
	session, err := r.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		return Resolution{Route: RouteSplash}, fmt.Errorf("sign in failed: %w", err)
	}
	r.persistSession(session)
	return r.resolveSignedIn(ctx, session), nil
}

// =============================================================================
// ONBOARDING FORM SUBMISSION
// =============================================================================

// CompleteOnboarding saves the onboarding form answers. Unlike Resolve, this
// path returns errors: validation problems and save failures must surface to
// the user naming the operation that failed.
func (r *Resolver) CompleteOnboarding(ctx context.Context, name, gender, exam string) (*model.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || gender == "" || exam == "" {
		return nil, errors.New("please fill all fields")
	}
	if !model.ValidGender(gender) {
		return nil, fmt.Errorf("unknown gender option %q", gender)
	}
	if !model.ValidExam(exam) {
		return nil, fmt.Errorf("unknown exam option %q", exam)
	}

	profile := model.Profile{Name: name, Gender: gender, Exam: exam}

	if session := r.backend.CurrentSession(); session != nil {
		profile.ID = session.User.ID
		profile.Email = session.User.Email
		profile.AvatarURL = session.User.AvatarURL()
		if err := r.backend.UpsertProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to save profile to database: %w", err)
		}
	} else {
		id, err := r.backend.InsertProfile(ctx, profile)
		if err != nil {
			return nil, fmt.Errorf("failed to save profile to database: %w", err)
		}
		profile.ID = id
	}

	if err := r.persistLocal(profile); err != nil {
		return nil, fmt.Errorf("failed to save profile locally: %w", err)
	}
	return &profile, nil
}

// =============================================================================
// AUTH STATE SUBSCRIPTION
// =============================================================================

// Subscription re-resolves on every authentication state change for as long
// as it is live. Unsubscribe stops the stream and releases the underlying
// backend subscription.
type Subscription struct {
	inner       *backend.Subscription
	resolutions chan Resolution
	once        sync.Once
}

// Resolutions returns the stream of re-resolved outcomes.
func (s *Subscription) Resolutions() <-chan Resolution {
	return s.resolutions
}

// Unsubscribe cancels the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.inner.Unsubscribe)
}

// Subscribe starts watching authentication state changes. A signed-in event
// re-runs the profile-fetch branch; a signed-out event clears all locally
// cached profile state and resolves back to the splash flow.
func (r *Resolver) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		inner:       r.backend.OnAuthStateChange(),
		resolutions: make(chan Resolution, 4),
	}

	go func() {
		defer close(sub.resolutions)
		for ev := range sub.inner.Events() {
			var res Resolution
			switch ev.Type {
			case backend.SignedIn:
				r.persistSession(ev.Session)
				res = r.resolveSignedIn(ctx, ev.Session)
			case backend.SignedOut:
				r.clearLocal()
				res = Resolution{Route: RouteSplash}
			default:
				continue
			}
			select {
			case sub.resolutions <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}
