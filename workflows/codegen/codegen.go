/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package codegen turns an issue description into file changes with two
// completions (engineer, then reviewer) and commits them to a repository.
package codegen

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/codetools/github/contents"
	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/llm/completion"
	"chainguard.dev/codetools/llm/promptbuilder"
	"chainguard.dev/codetools/llm/result"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
)

// FileOutput is one file the model wants written.
type FileOutput struct {
	FileName    string `json:"fileName" jsonschema:"description=Name of the file that was modified"`
	FileContent string `json:"fileContent" jsonschema:"description=The complete updated content of the modified file"`
}

// Request is the input of the write-code tool.
type Request struct {
	IssueContext string `json:"issueContext" jsonschema:"required,description=The GitHub issue description and requirements that need to be implemented"`
	CodeContext  string `json:"codeContext" jsonschema:"required,description=Relevant code files and their contents that provide context for the implementation"`
	RepoURL      string `json:"repoURL" jsonschema:"required,description=The GitHub repository URL to push changes to"`
	Branch       string `json:"branch,omitempty" jsonschema:"description=Branch to commit to; the default branch when empty"`
}

// Validate implements the tools request contract.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.IssueContext) == "" {
		return toolerr.Invalid("issueContext", "must not be empty")
	}
	_, err := reporef.Parse(r.RepoURL)
	return err
}

// Result is the output of the write-code tool.
type Result struct {
	ListOutputs []FileOutput      `json:"listOutputs" jsonschema:"description=The generated files"`
	Commits     []contents.Commit `json:"commits" jsonschema:"description=One commit per file in write order"`
}

// Generator runs the two completion passes.
type Generator struct {
	completer completion.Interface
}

// NewGenerator returns a Generator backed by c.
func NewGenerator(c completion.Interface) *Generator {
	return &Generator{completer: c}
}

// Generate asks the engineer persona for a fix, then has the reviewer persona
// check it and restate it as JSON. The reviewer's answer must parse strictly.
func (g *Generator) Generate(ctx context.Context, issue, code string) ([]FileOutput, error) {
	if g.completer == nil {
		return nil, &toolerr.ConfigurationError{Setting: "COMPLETION_API_KEY", Purpose: "code generation"}
	}
	log := clog.FromContext(ctx)

	user, err := bind(engineerPrompt, "issue", issue, "code", code)
	if err != nil {
		return nil, err
	}
	draft, err := g.completer.Complete(ctx, completion.Request{Messages: []completion.Message{
		{Role: completion.RoleSystem, Content: engineerSystem},
		{Role: completion.RoleUser, Content: user},
	}})
	if err != nil {
		return nil, fmt.Errorf("engineer pass: %w", err)
	}
	log.Infof("Engineer pass returned %d bytes", len(draft.Text))

	user, err = bind(reviewerPrompt, "issue", issue, "generated", draft.Text)
	if err != nil {
		return nil, err
	}
	reviewed, err := g.completer.Complete(ctx, completion.Request{
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: reviewerSystem},
			{Role: completion.RoleUser, Content: user},
		},
		JSON: true,
	})
	if err != nil {
		return nil, fmt.Errorf("reviewer pass: %w", err)
	}

	outputs, err := Parse(reviewed.Text)
	if err != nil {
		return nil, err
	}
	log.Infof("Reviewer pass produced %d files", len(outputs))
	return outputs, nil
}

// Parse decodes {"listOutputs": [{"fileName", "fileContent"}]}. A missing
// listOutputs key or an entry without a file name is rejected.
func Parse(text string) ([]FileOutput, error) {
	payload, err := result.Extract[struct {
		ListOutputs *[]FileOutput `json:"listOutputs"`
	}](text)
	if err != nil {
		return nil, &toolerr.MalformedResponseError{Expected: "listOutputs object", Reason: err.Error(), Raw: text, Err: err}
	}
	if payload.ListOutputs == nil {
		return nil, &toolerr.MalformedResponseError{Expected: "listOutputs object", Reason: "missing listOutputs", Raw: text}
	}
	for i, f := range *payload.ListOutputs {
		if strings.Trim(f.FileName, "/ ") == "" {
			return nil, &toolerr.MalformedResponseError{
				Expected: "listOutputs object",
				Reason:   fmt.Sprintf("listOutputs[%d] has an empty fileName", i),
				Raw:      text,
			}
		}
	}
	return *payload.ListOutputs, nil
}

func bind(p *promptbuilder.Prompt, kv ...string) (string, error) {
	var err error
	for i := 0; i+1 < len(kv); i += 2 {
		if p, err = p.BindText(kv[i], kv[i+1]); err != nil {
			return "", fmt.Errorf("binding prompt: %w", err)
		}
	}
	return p.Build()
}

// CommitMessage is the message used for every generated file.
func CommitMessage(issue string) string {
	first, _, _ := strings.Cut(issue, "\n")
	return "fix: Automated code update for issue\n\n" + strings.TrimSpace(first)
}

// Workflow generates changes and pushes them.
type Workflow struct {
	generator *Generator
	clients   *ghclient.Factory
	pusher    *contents.Pusher
}

// New returns a Workflow. c may be nil when no completion key is configured;
// Run then fails with a ConfigurationError.
func New(c completion.Interface, f *ghclient.Factory) *Workflow {
	return &Workflow{
		generator: NewGenerator(c),
		clients:   f,
		pusher:    contents.NewPusher(f),
	}
}

// Run checks credentials, generates the files and commits each one in order.
func (w *Workflow) Run(ctx context.Context, req Request) (*Result, error) {
	repo, err := reporef.Parse(req.RepoURL)
	if err != nil {
		return nil, err
	}
	if w.generator.completer == nil {
		return nil, &toolerr.ConfigurationError{Setting: "COMPLETION_API_KEY", Purpose: "code generation"}
	}
	if !w.clients.HasCredential() {
		return nil, &toolerr.AuthenticationError{Operation: "push changes"}
	}

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("repo", repo.String()))

	outputs, err := w.generator.Generate(ctx, req.IssueContext, req.CodeContext)
	if err != nil {
		return nil, err
	}

	msg := CommitMessage(req.IssueContext)
	changes := make([]contents.Change, 0, len(outputs))
	for _, o := range outputs {
		changes = append(changes, contents.Change{Path: o.FileName, Content: o.FileContent, Message: msg})
	}
	commits, err := w.pusher.Push(ctx, repo, req.Branch, changes)
	if err != nil {
		return nil, err
	}

	return &Result{ListOutputs: outputs, Commits: commits}, nil
}
