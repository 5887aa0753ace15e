// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the hosted backend integration: authentication
// sessions, the users table, and the notifications feed.
//
// The backend speaks the Supabase wire protocol: GoTrue under /auth/v1 and
// PostgREST under /rest/v1. Every request carries the project's public anon
// key; authenticated requests additionally carry the session bearer token.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Configuration constants for backend requests.
const (
	// DefaultTimeout is the default timeout for backend requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates the backend URL or anon key is not set.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrNoSession indicates no authenticated session is active.
	ErrNoSession = errors.New("no active session")

	// ErrAuthFailed indicates authentication failed.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrProfileNotFound indicates no users row exists for the identifier.
	ErrProfileNotFound = errors.New("profile not found")
)

// APIError represents an error response from the backend.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// apiErrorResponse covers the error shapes both GoTrue and PostgREST emit.
type apiErrorResponse struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (r apiErrorResponse) text() string {
	for _, s := range []string{r.Message, r.Msg, r.ErrorDescription, r.ErrorField} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Client is a client for the hosted backend.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *Session

	subMu   sync.Mutex
	subs    map[int]chan AuthEvent
	nextSub int
}

// NewClient creates a new backend client for the given project URL and
// public anon key. An unconfigured client is still usable; calls fail with
// ErrNotConfigured.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		anonKey: strings.TrimSpace(anonKey),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		subs: make(map[int]chan AuthEvent),
	}
}

// IsConfigured returns true if the client has a URL and anon key configured.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// setHeaders sets the standard backend request headers. The bearer token is
// the session access token when one is active, otherwise the anon key.
func (c *Client) setHeaders(req *http.Request) {
	token := c.anonKey
	if s := c.CurrentSession(); s != nil && s.AccessToken != "" {
		token = s.AccessToken
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "rookie/0.1.0")
}

// readResponse reads a response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do performs a single backend request and returns the response body.
// Extra headers are applied after the standard set.
func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)

	req.Header.Del("Authorization")

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, handleErrorResponse(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// handleErrorResponse converts backend error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.text() != "" {
		if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.text())
		}
		return &APIError{Code: apiErr.Code, Message: apiErr.text(), Status: statusCode}
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return ErrAuthFailed
	}
	return &APIError{Message: string(body), Status: statusCode}
}

// restQuery builds a /rest/v1 path for a table with encoded query values.
func restQuery(table string, values url.Values) string {
	return "/rest/v1/" + table + "?" + values.Encode()
}
