// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rookie-ai/rookie-tui/internal/lang"
	"github.com/rookie-ai/rookie-tui/internal/model"
)

// Generation parameters for the two completion flavors.
const (
	replyTemperature = 0.4
	replyMaxTokens   = 400

	titleTemperature = 0.3
	titleMaxTokens   = 12
)

// User-visible fallback strings. Completion failures surface as message
// content, never as errors.
const (
	// ReplyFallback is returned when the reply request fails outright.
	ReplyFallback = "Error...try again."

	// EmptyReplyFallback is returned when the service answers with no content.
	EmptyReplyFallback = "Sorry, I didn't get that."
)

// Assistant wraps a completions Client with the chat persona and the title
// summarization policy.
type Assistant struct {
	client *Client
}

// NewAssistant creates an assistant on top of the given client.
func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

// replySystemPrompt builds the fixed system instruction, targeted at the
// native label of the given language code.
func replySystemPrompt(languageCode string) string {
	return fmt.Sprintf(`You are a multilingual public health awareness chatbot for rural India. Respond in clear, structured, and conversational sentences, using arrows, short paragraphs, and relevant emojis.
Always use a warm, encouraging tone.
- All answers should be in %q language.
- Educate users about preventive healthcare, disease symptoms, and vaccination schedules.
- If asked about a local outbreak, refer users to official government health advisories.
- Do not mention private/sensitive details.`, lang.Label(languageCode))
}

// titleSystemPrompt builds the summarizer instruction for title generation.
func titleSystemPrompt(languageCode string) string {
	return fmt.Sprintf("You are a helpful assistant. Given a user message, summarize it into a short chat title, maximum 5 words, in the same language as the input. Input language: %s.", lang.Label(languageCode))
}

// Reply requests an assistant reply for a user message in the given language.
//
// Failures never propagate: a transport or API error yields ReplyFallback
// and an empty completion yields EmptyReplyFallback, both as ordinary
// message content.
func (a *Assistant) Reply(ctx context.Context, text, languageCode string) string {
	resp, err := a.client.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			NewSystemMessage(replySystemPrompt(languageCode)),
			NewUserMessage(text),
		},
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		log.Printf("llm: reply request failed: %v", err)
		return ReplyFallback
	}
	content := resp.GetContent()
	if content == "" {
		return EmptyReplyFallback
	}
	return content
}

// Title requests a short chat title for the first message of a session.
//
// The result is stripped of newlines and trimmed. Any failure or empty
// completion falls back to the fixed placeholder title.
func (a *Assistant) Title(ctx context.Context, firstMessage, languageCode string) string {
	resp, err := a.client.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			NewSystemMessage(titleSystemPrompt(languageCode)),
			NewUserMessage(fmt.Sprintf("Summarize this message into a chat title of at most 5 words: %q", firstMessage)),
		},
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
	})
	if err != nil {
		log.Printf("llm: title request failed: %v", err)
		return model.FallbackTitle
	}

	title := strings.TrimSpace(strings.ReplaceAll(resp.GetContent(), "\n", ""))
	if title == "" {
		return model.FallbackTitle
	}
	return title
}
