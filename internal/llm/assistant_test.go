// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReplySuccess(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatOK("Drink boiled water.")))
	}))
	defer server.Close()

	a := NewAssistant(newTestClient(server.URL))
	got := a.Reply(context.Background(), "How do I avoid cholera?", "en")
	if got != "Drink boiled water." {
		t.Errorf("Reply = %q", got)
	}

	if gotReq.Temperature != replyTemperature {
		t.Errorf("temperature = %v, want %v", gotReq.Temperature, replyTemperature)
	}
	if gotReq.MaxTokens != replyMaxTokens {
		t.Errorf("max_tokens = %d, want %d", gotReq.MaxTokens, replyMaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", gotReq.Messages)
	}
}

func TestReplySystemPromptTargetsNativeLabel(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatOK("ok")))
	}))
	defer server.Close()

	a := NewAssistant(newTestClient(server.URL))
	a.Reply(context.Background(), "hello", "hi")
	if !strings.Contains(gotReq.Messages[0].Content, "हिन्दी") {
		t.Errorf("system prompt should name the native language label, got %q", gotReq.Messages[0].Content)
	}
}

func TestReplyFallbackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	a := NewAssistant(newTestClient(server.URL))
	if got := a.Reply(context.Background(), "hello", "en"); got != ReplyFallback {
		t.Errorf("Reply = %q, want fallback %q", got, ReplyFallback)
	}
}

func TestReplyFallbackOnEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	a := NewAssistant(newTestClient(server.URL))
	if got := a.Reply(context.Background(), "hello", "en"); got != EmptyReplyFallback {
		t.Errorf("Reply = %q, want %q", got, EmptyReplyFallback)
	}
}

func TestTitleSuccess(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatOK("Cholera\nPrevention Tips \n")))
	}))
	defer server.Close()

	a := NewAssistant(newTestClient(server.URL))
	got := a.Title(context.Background(), "How do I avoid cholera?", "en")

	// Newlines are stripped, result trimmed.
	if got != "CholeraPrevention Tips" {
		t.Errorf("Title = %q", got)
	}
	if gotReq.Temperature != titleTemperature {
		t.Errorf("temperature = %v, want %v", gotReq.Temperature, titleTemperature)
	}
	if gotReq.MaxTokens != titleMaxTokens {
		t.Errorf("max_tokens = %d, want %d", gotReq.MaxTokens, titleMaxTokens)
	}
}

func TestTitleFallbacks(t *testing.T) {
	t.Run("request failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "boom"}}`))
		}))
		defer server.Close()

		a := NewAssistant(newTestClient(server.URL).WithMaxRetries(1))
		if got := a.Title(context.Background(), "hello", "en"); got != "New Chat" {
			t.Errorf("Title = %q, want fallback", got)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatOK("  \n ")))
		}))
		defer server.Close()

		a := NewAssistant(newTestClient(server.URL))
		if got := a.Title(context.Background(), "hello", "en"); got != "New Chat" {
			t.Errorf("Title = %q, want fallback", got)
		}
	})
}
