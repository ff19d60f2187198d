/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chainguard.dev/codetools/toolerr"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func fakeChat(t *testing.T, status int, body string) (*httptest.Server, *[]chatRequest) {
	t.Helper()
	var seen []chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

// providerCall is one request seen by fakeProvider.
type providerCall struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeProvider answers every request with status and body and records what
// it was sent.
func fakeProvider(t *testing.T, status int, body string) (*httptest.Server, *[]providerCall) {
	t.Helper()
	var calls []providerCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		calls = append(calls, providerCall{Path: r.URL.Path, Header: r.Header.Clone(), Body: got})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// conversation has a system prompt and an earlier assistant turn.
var conversation = []Message{
	{Role: RoleSystem, Content: "be terse"},
	{Role: RoleUser, Content: "hello"},
	{Role: RoleAssistant, Content: "hi"},
	{Role: RoleUser, Content: "again"},
}

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama-3.3-70b-versatile",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"ok\": true}"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

func TestOpenAICompatible(t *testing.T) {
	srv, seen := fakeChat(t, http.StatusOK, okBody)

	c, err := New(context.Background(), Config{Model: "llama-3.3-70b-versatile", APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	require.Equal(t, "llama-3.3-70b-versatile", c.Model())

	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be terse"},
			{Role: RoleUser, Content: "hello"},
		},
		JSON: true,
	})
	require.NoError(t, err)
	require.Equal(t, `{"ok": true}`, resp.Text)
	require.EqualValues(t, 12, resp.PromptTokens)
	require.EqualValues(t, 5, resp.CompletionTokens)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	require.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "be terse", got.Messages[0].Content)
	require.Equal(t, "user", got.Messages[1].Role)
	require.NotNil(t, got.ResponseFormat)
	require.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAICompatibleError(t *testing.T) {
	srv, seen := fakeChat(t, http.StatusUnauthorized,
		`{"error": {"message": "Invalid API Key", "type": "invalid_request_error", "code": "invalid_api_key"}}`)

	c, err := New(context.Background(), Config{Model: "llama-3.3-70b-versatile", APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var rerr *toolerr.RemoteAPIError
	require.True(t, errors.As(err, &rerr), "got %v", err)
	require.Equal(t, http.StatusUnauthorized, rerr.StatusCode)
	require.Contains(t, err.Error(), "Invalid API Key")
	require.Len(t, *seen, 1, "no retries")
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Config{Model: "claude-sonnet-4-5", APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &anthropicCompleter{}, c)

	c, err = New(ctx, Config{Model: "gemini-2.5-flash", APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &googleCompleter{}, c)

	c, err = New(ctx, Config{Model: "llama-3.3-70b-versatile", APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &openaiCompleter{}, c)

	_, err = New(ctx, Config{Model: "llama-3.3-70b-versatile"})
	var cerr *toolerr.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "COMPLETION_API_KEY", cerr.Setting)
}

func TestSplit(t *testing.T) {
	system, rest := split([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleSystem, Content: "b"},
	})
	require.Equal(t, "a\n\nb", system)
	require.Equal(t, []Message{{Role: RoleUser, Content: "u"}}, rest)
}

func TestBodyMessage(t *testing.T) {
	require.Equal(t, "overloaded", bodyMessage(`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`))
	require.Equal(t, "flat", bodyMessage(`{"message":"flat"}`))
	require.Empty(t, bodyMessage("not json"))
}
