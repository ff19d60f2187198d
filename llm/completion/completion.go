/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package completion sends chat completion requests to a hosted model.
//
// New picks the backend from the model name: claude-* models go to
// Anthropic, gemini-* models to Google, and everything else to an
// OpenAI-compatible endpoint (Groq by default). No backend retries.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chainguard.dev/codetools/llm/metrics"
	"chainguard.dev/codetools/toolerr"
	"google.golang.org/genai"
)

// Role tags a message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is an ordered conversation. When JSON is set the model is asked to
// reply with a single JSON object.
type Request struct {
	Messages  []Message
	JSON      bool
	MaxTokens int64
}

// Response is the first choice of a completion.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// Interface is implemented by every backend.
type Interface interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// Config selects and authenticates a backend.
type Config struct {
	Model  string
	APIKey string
	// BaseURL applies to the OpenAI-compatible backend only.
	BaseURL string
	Metrics *metrics.GenAI
}

const defaultMaxTokens = 8192

// New returns the backend for cfg.Model.
func New(ctx context.Context, cfg Config) (Interface, error) {
	if cfg.Model == "" {
		return nil, toolerr.Invalid("model", "must not be empty")
	}
	if cfg.APIKey == "" {
		return nil, &toolerr.ConfigurationError{Setting: "COMPLETION_API_KEY", Purpose: "completion requests"}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewGenAI(metrics.MeterName)
	}

	model := strings.ToLower(cfg.Model)
	switch {
	case strings.HasPrefix(model, "claude-"):
		return newAnthropic(cfg), nil
	case strings.HasPrefix(model, "gemini-"):
		return newGoogle(ctx, cfg, genai.HTTPOptions{})
	default:
		return newOpenAI(cfg), nil
	}
}

// split separates system messages from the conversation; providers that
// take a single system instruction get them joined.
func split(msgs []Message) (system string, rest []Message) {
	var sys []string
	for _, m := range msgs {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(sys, "\n\n"), rest
}

const jsonInstruction = "Respond with a single JSON object and nothing else."

// record finishes a request: it counts the outcome and token usage, and maps
// err into the toolerr taxonomy.
func record(ctx context.Context, m *metrics.GenAI, model string, resp *Response, err error) (*Response, error) {
	if err != nil {
		m.RecordRequest(ctx, model, toolerr.Kind(err))
		return nil, err
	}
	m.RecordRequest(ctx, model, "ok")
	m.RecordTokens(ctx, model, resp.PromptTokens, resp.CompletionTokens)
	return resp, nil
}

func remoteError(status int, message string, err error) error {
	return &toolerr.RemoteAPIError{
		Service:    "completion",
		Operation:  "chat completion",
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

// bodyMessage pulls a human-readable message out of a provider error body.
// Both {"error":{"message":...}} and {"message":...} shapes are understood.
func bodyMessage(raw string) string {
	var body struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(raw), &body) != nil {
		return ""
	}
	if body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return body.Message
}

func emptyChoice(model string) error {
	return &toolerr.MalformedResponseError{Expected: "completion", Reason: fmt.Sprintf("model %s returned no choices", model)}
}
