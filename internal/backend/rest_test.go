// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rookie-ai/rookie-tui/internal/model"
)

func TestGetProfile(t *testing.T) {
	var gotQuery string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{
			"id": "user-1", "email": "a@b.c", "name": "Asha",
			"gender": "Female", "exam": "NEET", "avatar_url": null
		}]`))
	})

	profile, err := client.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Asha" || profile.Gender != "Female" || profile.Exam != "NEET" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if !profile.IsComplete() {
		t.Error("profile with name, gender, exam should be complete")
	}
	if !strings.Contains(gotQuery, "id=eq.user-1") {
		t.Errorf("query missing id filter: %q", gotQuery)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.GetProfile(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpsertProfile(t *testing.T) {
	var gotPrefer string
	var gotRows []map[string]any
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotRows)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	})

	err := client.UpsertProfile(context.Background(), model.Profile{
		ID: "user-1", Email: "a@b.c", Name: "Asha", Gender: "Female", Exam: "NEET",
	})
	if err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Errorf("Prefer = %q", gotPrefer)
	}
	if len(gotRows) != 1 || gotRows[0]["id"] != "user-1" {
		t.Errorf("unexpected rows: %+v", gotRows)
	}
	if _, ok := gotRows[0]["avatar_url"]; ok {
		t.Error("empty avatar should be omitted")
	}
}

func TestInsertProfileReturnsID(t *testing.T) {
	var gotPrefer string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": "generated-7", "name": "Ravi", "gender": "Male", "exam": "JEE Mains"}]`))
	})

	id, err := client.InsertProfile(context.Background(), model.Profile{
		Name: "Ravi", Gender: "Male", Exam: "JEE Mains",
	})
	if err != nil {
		t.Fatalf("InsertProfile failed: %v", err)
	}
	if id != "generated-7" {
		t.Errorf("id = %q", id)
	}
	if gotPrefer != "return=representation" {
		t.Errorf("Prefer = %q", gotPrefer)
	}
}

func TestNotifications(t *testing.T) {
	var gotQuery string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[
			{"id": "n2", "author": "Health Dept", "title": "Dengue advisory", "category": "Dengue", "date": "2025-06-02T10:00:00Z"},
			{"id": "n1", "author": "NGO Care", "title": "Vaccination camp", "category": "Vaccination", "date": "2025-06-01"}
		]`))
	})

	items, err := client.Notifications(context.Background())
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "n2" || items[0].Category != "Dengue" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Date.IsZero() {
		t.Error("date-only timestamps should still parse")
	}
	if !strings.Contains(gotQuery, "order=date.desc") {
		t.Errorf("query missing order: %q", gotQuery)
	}
}

func TestNotificationsError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "relation missing"}`))
	})

	_, err := client.Notifications(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected APIError 500, got %v", err)
	}
}
