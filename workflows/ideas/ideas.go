/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ideas expands a project idea into a list of developer tasks.
package ideas

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/codetools/llm/completion"
	"chainguard.dev/codetools/llm/result"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
)

const (
	expandSystem = "You are an AI Product Manager, your role is to take the idea given to you and expand on it. " +
		"If a detail is not given, assume the simplest. " +
		"Expand on the idea as much as you can, we'll be summarizing these ideas into bullet points later. " +
		"Return only the description nothing more nothing less"

	summarizeSystem = "You are an AI Product Manager, your job is to look at the description of the project given to you " +
		"and break it down into smaller tasks that developers can complete. " +
		"Only output the smaller tasks in a bulletpoint format, nothing else."

	structureSystem = "You are a structured output generator. Take the bullet points given to you and format them into an array of strings. " +
		"Each bullet point should be its own string in the array. " +
		`Your response must be valid JSON in the format: {"tasks": ["task 1", "task 2", ...]}.`
)

// Request is the input of the validate-idea tool.
type Request struct {
	Prompt string `json:"prompt" jsonschema:"required,description=The prompt for the project to be built"`
}

// Validate implements the tools request contract.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return toolerr.Invalid("prompt", "must not be empty")
	}
	return nil
}

// Result is the output of the validate-idea tool.
type Result struct {
	Tasks []string `json:"expanded_idea" jsonschema:"description=List of smaller checkpoints that need to be completed"`
}

// Validator chains the expand, summarize and structure passes.
type Validator struct {
	completer completion.Interface
}

// New returns a Validator. c may be nil when no completion key is
// configured; Expand then fails with a ConfigurationError.
func New(c completion.Interface) *Validator {
	return &Validator{completer: c}
}

// Expand runs the three passes, each feeding the next.
func (v *Validator) Expand(ctx context.Context, req Request) (*Result, error) {
	if v.completer == nil {
		return nil, &toolerr.ConfigurationError{Setting: "COMPLETION_API_KEY", Purpose: "idea validation"}
	}
	log := clog.FromContext(ctx)

	passes := []struct {
		name, system string
		json         bool
	}{
		{"expand", expandSystem, false},
		{"summarize", summarizeSystem, false},
		{"structure", structureSystem, true},
	}

	text := req.Prompt
	for _, p := range passes {
		resp, err := v.completer.Complete(ctx, completion.Request{
			Messages: []completion.Message{
				{Role: completion.RoleSystem, Content: p.system},
				{Role: completion.RoleUser, Content: text},
			},
			JSON: p.json,
		})
		if err != nil {
			return nil, fmt.Errorf("%s pass: %w", p.name, err)
		}
		log.Infof("Idea %s pass returned %d bytes", p.name, len(resp.Text))
		text = resp.Text
	}

	out, err := result.Extract[struct {
		Tasks *[]string `json:"tasks"`
	}](text)
	if err != nil {
		return nil, &toolerr.MalformedResponseError{Expected: "tasks object", Reason: err.Error(), Raw: text, Err: err}
	}
	if out.Tasks == nil {
		return nil, &toolerr.MalformedResponseError{Expected: "tasks object", Reason: "missing tasks", Raw: text}
	}
	return &Result{Tasks: *out.Tasks}, nil
}
