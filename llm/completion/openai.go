/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"errors"

	"chainguard.dev/codetools/llm/metrics"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openaiCompleter struct {
	client  openai.Client
	model   string
	metrics *metrics.GenAI
}

func newOpenAI(cfg Config) *openaiCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openaiCompleter{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		metrics: cfg.Metrics,
	}
}

func (c *openaiCompleter) Model() string { return c.model }

func (c *openaiCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.complete(ctx, req)
	return record(ctx, c.metrics, c.model, resp, err)
}

func (c *openaiCompleter) complete(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	clog.FromContext(ctx).With("model", c.model).Infof("Requesting completion (%d messages)", len(req.Messages))
	out, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = bodyMessage(apiErr.RawJSON())
			}
			return nil, remoteError(apiErr.StatusCode, msg, err)
		}
		return nil, remoteError(0, "", err)
	}
	if len(out.Choices) == 0 {
		return nil, emptyChoice(c.model)
	}

	return &Response{
		Text:             out.Choices[0].Message.Content,
		Model:            out.Model,
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}, nil
}
