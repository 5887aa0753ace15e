// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the in-memory and persisted list of chat sessions.
//
// The list is ordered most recent first and persisted as one JSON blob on
// every mutation. Sends within one session are serialized: a follow-up send
// waits for the previous send on that session to finish, so replies can
// never append out of order.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/llm"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

// Store is the chat session store.
type Store struct {
	kv        *kvstore.Store
	assistant *llm.Assistant

	mu       sync.Mutex
	sessions []model.ChatSession // most recent first
	activeID string              // empty = fresh pending session

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // per-session send locks
}

// NewStore creates a chat store and restores the persisted session list and
// selection. Unreadable or corrupt persisted state is logged and treated as
// empty.
func NewStore(kv *kvstore.Store, assistant *llm.Assistant) *Store {
	s := &Store{
		kv:        kv,
		assistant: assistant,
		locks:     make(map[string]*sync.Mutex),
	}
	s.restore()
	return s
}

// restore loads the session list and the selected session id.
func (s *Store) restore() {
	raw, err := s.kv.Get(kvstore.KeyChatList)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("chat: reading session list: %v", err)
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), &s.sessions); err != nil {
		log.Printf("chat: decoding session list: %v", err)
		s.sessions = nil
		return
	}

	selected, err := s.kv.Get(kvstore.KeySelectedChat)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("chat: reading selected session: %v", err)
		}
		return
	}
	// A selection pointing at a session that no longer exists falls back
	// to the pending fresh session.
	if s.indexOf(selected) >= 0 {
		s.activeID = selected
	}
}

// indexOf returns the position of a session id, or -1. Caller holds mu.
func (s *Store) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full session list blob. Caller holds mu.
func (s *Store) persist() {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		log.Printf("chat: encoding session list: %v", err)
		return
	}
	if err := s.kv.Set(kvstore.KeyChatList, string(data)); err != nil {
		log.Printf("chat: saving session list: %v", err)
	}
}

// persistSelection writes or clears the selected session id. Caller holds mu.
func (s *Store) persistSelection() {
	var err error
	if s.activeID == "" {
		err = s.kv.Remove(kvstore.KeySelectedChat)
	} else {
		err = s.kv.Set(kvstore.KeySelectedChat, s.activeID)
	}
	if err != nil {
		log.Printf("chat: saving selected session: %v", err)
	}
}

// sessionLock returns the send lock for a session id.
func (s *Store) sessionLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

// Sessions returns a copy of the session list, most recent first.
func (s *Store) Sessions() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// ActiveID returns the selected session id, or empty for a fresh session.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveSession returns a copy of the selected session, or nil when the
// active transcript is the fresh pending one.
func (s *Store) ActiveSession() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.activeID); s.activeID != "" && i >= 0 {
		session := s.sessions[i]
		return &session
	}
	return nil
}

// =============================================================================
// SELECTION
// =============================================================================

// StartNewSession switches to the fresh pending session.
func (s *Store) StartNewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.persistSelection()
}

// SelectSession makes the session with the given id active. An unknown id
// leaves the active transcript empty rather than failing.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		s.activeID = ""
	} else {
		s.activeID = id
	}
	s.persistSelection()
}

// =============================================================================
// SENDS
// =============================================================================

// SendFirstMessage sends the first message of a fresh session. The title
// and the reply are requested concurrently; once both resolve, the new
// session is created with a fresh id, prepended to the list, and selected.
//
// A blank text is a no-op returning nil. Failures of either remote call
// degrade to the fixed fallback strings; the session is created regardless.
func (s *Store) SendFirstMessage(ctx context.Context, text, language string) *model.ChatSession {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	userMsg := model.NewUserMessage(text)

	var title, reply string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		title = s.assistant.Title(ctx, text, language)
	}()
	go func() {
		defer wg.Done()
		reply = s.assistant.Reply(ctx, text, language)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.NewSessionID(func(candidate string) bool {
		return s.indexOf(candidate) >= 0
	})
	session := model.NewChatSession(id, title, language, []model.Message{
		userMsg,
		model.NewAssistantMessage(reply),
	})

	s.sessions = append([]model.ChatSession{session}, s.sessions...)
	s.activeID = session.ID
	s.persist()
	s.persistSelection()

	created := session
	return &created
}

// SendMessage sends a follow-up message on the active session using the
// language fixed at that session's creation. Blank text, or no active
// session, is a no-op returning nil.
//
// Sends on the same session are serialized; the second of two rapid sends
// waits until the first reply has been appended.
func (s *Store) SendMessage(ctx context.Context, text string) *model.ChatSession {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	id := s.activeID
	idx := s.indexOf(id)
	if id == "" || idx < 0 {
		s.mu.Unlock()
		return nil
	}
	language := s.sessions[idx].Language
	s.mu.Unlock()

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	// Append and persist the user message before the reply call is issued.
	if ok := s.appendMessage(id, model.NewUserMessage(text)); !ok {
		return nil
	}

	reply := s.assistant.Reply(ctx, text, language)

	s.appendMessage(id, model.NewAssistantMessage(reply))

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		session := s.sessions[i]
		return &session
	}
	return nil
}

// appendMessage appends one message to the session with the given id and
// persists the list. Returns false if the session vanished.
func (s *Store) appendMessage(id string, msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.sessions[i].Append(msg)
	s.persist()
	return true
}
