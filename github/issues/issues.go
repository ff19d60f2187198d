/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package issues lists, opens and closes GitHub issues.
package issues

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Issue is the normalized view of a GitHub issue.
type Issue struct {
	Number    int       `json:"number" jsonschema:"description=Issue number"`
	Title     string    `json:"title" jsonschema:"description=Issue title"`
	Body      string    `json:"body" jsonschema:"description=Issue body"`
	State     string    `json:"state" jsonschema:"description=Issue state"`
	CreatedAt time.Time `json:"created_at" jsonschema:"description=Creation time"`
	URL       string    `json:"html_url" jsonschema:"description=Issue URL"`
}

// CloseResult reports what Close did.
type CloseResult struct {
	Closed       bool `json:"closed" jsonschema:"description=Whether the issue was successfully closed"`
	CommentAdded bool `json:"commentAdded" jsonschema:"description=Whether a closing comment was posted"`
}

// Valid states for List.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// Manager talks to the issues API.
type Manager struct {
	clients *ghclient.Factory
}

// NewManager returns a Manager that builds clients from f.
func NewManager(f *ghclient.Factory) *Manager {
	return &Manager{clients: f}
}

// List returns every issue in repo with the given state, following
// pagination to the end. An empty state means open.
func (m *Manager) List(ctx context.Context, repo reporef.Ref, state string) ([]Issue, error) {
	switch state {
	case "":
		state = StateOpen
	case StateOpen, StateClosed, StateAll:
	default:
		return nil, toolerr.Invalid("state", "must be one of open, closed or all, got %q", state)
	}

	gh, err := m.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	out := []Issue{}
	for {
		page, resp, err := gh.Issues.ListByRepo(ctx, repo.Owner, repo.Repo, opts)
		if err != nil {
			return nil, ghclient.Classify("list issues", "repository "+repo.String(), err)
		}
		for _, is := range page {
			out = append(out, normalize(is))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	clog.FromContext(ctx).With("repo", repo.String()).Infof("Listed %d %s issues", len(out), state)
	return out, nil
}

// Create opens a new issue.
func (m *Manager) Create(ctx context.Context, repo reporef.Ref, title, body string) (*Issue, error) {
	if title == "" {
		return nil, toolerr.Invalid("title", "must not be empty")
	}

	gh, err := m.clients.AuthenticatedClient(ctx, "create issue")
	if err != nil {
		return nil, err
	}

	req := &github.IssueRequest{Title: github.Ptr(title)}
	if body != "" {
		req.Body = github.Ptr(body)
	}
	is, _, err := gh.Issues.Create(ctx, repo.Owner, repo.Repo, req)
	if err != nil {
		return nil, ghclient.Classify("create issue", "repository "+repo.String(), err)
	}

	out := normalize(is)
	clog.FromContext(ctx).With("repo", repo.String()).Infof("Created issue #%d", out.Number)
	return &out, nil
}

// Close closes issue number, posting comment first when it is non-empty.
// The two calls are independent: a failed state change leaves the comment
// in place, and the returned result still reports it.
func (m *Manager) Close(ctx context.Context, repo reporef.Ref, number int, comment string) (CloseResult, error) {
	var res CloseResult
	if number <= 0 {
		return res, toolerr.Invalid("issueNumber", "must be a positive integer, got %d", number)
	}

	gh, err := m.clients.AuthenticatedClient(ctx, "close issue")
	if err != nil {
		return res, err
	}

	log := clog.FromContext(ctx).With("repo", repo.String(), "issue", number)
	log.Infof("Closing issue #%d", number)

	if comment != "" {
		if _, _, err := gh.Issues.CreateComment(ctx, repo.Owner, repo.Repo, number, &github.IssueComment{
			Body: github.Ptr(comment),
		}); err != nil {
			return res, ghclient.Classify("comment on issue", fmt.Sprintf("issue #%d in %s", number, repo), err)
		}
		res.CommentAdded = true
	}

	if _, _, err := gh.Issues.Edit(ctx, repo.Owner, repo.Repo, number, &github.IssueRequest{
		State: github.Ptr(StateClosed),
	}); err != nil {
		return res, ghclient.Classify("close issue", fmt.Sprintf("issue #%d in %s", number, repo), err)
	}
	res.Closed = true
	return res, nil
}

func normalize(is *github.Issue) Issue {
	return Issue{
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		State:     is.GetState(),
		CreatedAt: is.GetCreatedAt().Time,
		URL:       is.GetHTMLURL(),
	}
}
