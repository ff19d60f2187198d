/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/codetools/llm/metrics"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

type googleCompleter struct {
	client  *genai.Client
	model   string
	metrics *metrics.GenAI
}

func newGoogle(ctx context.Context, cfg Config, httpOpts genai.HTTPOptions) (*googleCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &googleCompleter{client: client, model: cfg.Model, metrics: cfg.Metrics}, nil
}

func (c *googleCompleter) Model() string { return c.model }

func (c *googleCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.complete(ctx, req)
	return record(ctx, c.metrics, c.model, resp, err)
}

func (c *googleCompleter) complete(ctx context.Context, req Request) (*Response, error) {
	system, rest := split(req.Messages)

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	clog.FromContext(ctx).With("model", c.model).Infof("Requesting completion (%d messages)", len(rest))
	out, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, remoteError(apiErr.Code, apiErr.Message, err)
		}
		return nil, remoteError(0, "", err)
	}

	text := out.Text()
	if text == "" {
		return nil, emptyChoice(c.model)
	}
	resp := &Response{Text: text, Model: c.model}
	if out.UsageMetadata != nil {
		resp.PromptTokens = int64(out.UsageMetadata.PromptTokenCount)
		resp.CompletionTokens = int64(out.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}
