/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"errors"
	"strings"

	"chainguard.dev/codetools/llm/metrics"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

type anthropicCompleter struct {
	client  anthropic.Client
	model   string
	metrics *metrics.GenAI
}

func newAnthropic(cfg Config, extra ...option.RequestOption) *anthropicCompleter {
	opts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}, extra...)
	return &anthropicCompleter{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		metrics: cfg.Metrics,
	}
}

func (c *anthropicCompleter) Model() string { return c.model }

func (c *anthropicCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.complete(ctx, req)
	return record(ctx, c.metrics, c.model, resp, err)
}

func (c *anthropicCompleter) complete(ctx context.Context, req Request) (*Response, error) {
	system, rest := split(req.Messages)
	if req.JSON {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(rest)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range rest {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	clog.FromContext(ctx).With("model", c.model).Infof("Requesting completion (%d messages)", len(rest))
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, remoteError(apiErr.StatusCode, bodyMessage(apiErr.RawJSON()), err)
		}
		return nil, remoteError(0, "", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, emptyChoice(c.model)
	}

	return &Response{
		Text:             text.String(),
		Model:            string(msg.Model),
		PromptTokens:     msg.Usage.InputTokens,
		CompletionTokens: msg.Usage.OutputTokens,
	}, nil
}
