/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contents

import (
	"context"
	"errors"
	"strings"

	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one file to create or update.
type Change struct {
	Path    string `json:"path" jsonschema:"required,description=File path in the repository"`
	Content string `json:"content" jsonschema:"required,description=New file content"`
	Message string `json:"message" jsonschema:"required,description=Commit message for this file change"`
}

// LineStats counts changed lines relative to the previous version.
type LineStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Commit is the outcome of writing one file.
type Commit struct {
	Path    string     `json:"path" jsonschema:"description=File path that was written"`
	SHA     string     `json:"sha" jsonschema:"description=Commit SHA"`
	URL     string     `json:"url" jsonschema:"description=Commit URL"`
	Created bool       `json:"created" jsonschema:"description=Whether the file was newly created"`
	Stats   *LineStats `json:"stats,omitempty" jsonschema:"description=Changed line counts when the previous content was available"`
}

// Pusher writes files one commit at a time.
type Pusher struct {
	clients *ghclient.Factory
}

// NewPusher returns a Pusher that builds clients from f.
func NewPusher(f *ghclient.Factory) *Pusher {
	return &Pusher{clients: f}
}

// Push writes each change in order. For every path it first reads the
// current blob sha (absence means create), then issues a create-or-update
// carrying that sha only for an update. The first failure stops the batch:
// earlier commits stay in place and are returned alongside the error.
func (p *Pusher) Push(ctx context.Context, repo reporef.Ref, branch string, changes []Change) ([]Commit, error) {
	log := clog.FromContext(ctx).With("repo", repo.String())

	gh, err := p.clients.AuthenticatedClient(ctx, "push changes")
	if err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(changes))
	for _, c := range changes {
		path := strings.Trim(c.Path, "/")

		prev, err := current(ctx, gh, repo, path, branch)
		if err != nil {
			return commits, &toolerr.RemoteWriteError{Path: path, Written: len(commits), Err: err}
		}

		opts := &github.RepositoryContentFileOptions{
			Message: github.Ptr(c.Message),
			Content: []byte(c.Content),
		}
		if branch != "" {
			opts.Branch = github.Ptr(branch)
		}

		var resp *github.RepositoryContentResponse
		if prev == nil {
			log.Infof("Creating %s", path)
			resp, _, err = gh.Repositories.CreateFile(ctx, repo.Owner, repo.Repo, path, opts)
		} else {
			log.Infof("Updating %s (blob %s)", path, prev.GetSHA())
			opts.SHA = github.Ptr(prev.GetSHA())
			resp, _, err = gh.Repositories.UpdateFile(ctx, repo.Owner, repo.Repo, path, opts)
		}
		if err != nil {
			return commits, &toolerr.RemoteWriteError{
				Path:    path,
				Written: len(commits),
				Err:     ghclient.Classify("put contents", "repository "+repo.String(), err),
			}
		}

		commits = append(commits, Commit{
			Path:    path,
			SHA:     resp.Commit.GetSHA(),
			URL:     resp.Commit.GetHTMLURL(),
			Created: prev == nil,
			Stats:   stats(prev, c.Content),
		})
	}

	return commits, nil
}

// current returns the existing file at path, or nil when there is none.
func current(ctx context.Context, gh *github.Client, repo reporef.Ref, path, branch string) (*github.RepositoryContent, error) {
	var opts *github.RepositoryContentGetOptions
	if branch != "" {
		opts = &github.RepositoryContentGetOptions{Ref: branch}
	}
	f, dir, _, err := gh.Repositories.GetContents(ctx, repo.Owner, repo.Repo, path, opts)
	if err != nil {
		err = ghclient.Classify("get contents", "file "+path, err)
		if toolerr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if f == nil && dir != nil {
		return nil, toolerr.Invalid("path", "%s is a directory", path)
	}
	return f, nil
}

// stats diffs the new content against the previous version. It returns nil
// when the previous content was withheld by the API.
func stats(prev *github.RepositoryContent, next string) *LineStats {
	var old string
	if prev != nil {
		if !inline(prev) {
			return nil
		}
		var err error
		if old, err = prev.GetContent(); err != nil {
			return nil
		}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, next)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var s LineStats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			s.Deletions += countLines(d.Text)
		}
	}
	return &s
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

var errNoChanges = errors.New("no files to push")

// Validate rejects an empty batch and changes without a path or message.
func Validate(changes []Change) error {
	if len(changes) == 0 {
		return toolerr.Invalid("files", "%v", errNoChanges)
	}
	for i, c := range changes {
		if strings.Trim(c.Path, "/") == "" {
			return toolerr.Invalid("files", "entry %d has an empty path", i)
		}
		if c.Message == "" {
			return toolerr.Invalid("files", "entry %d (%s) has an empty commit message", i, c.Path)
		}
	}
	return nil
}
