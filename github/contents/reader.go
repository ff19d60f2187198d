/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package contents reads and writes repository files through the GitHub
// contents API.
package contents

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/sync/errgroup"
)

// File is a repository file as read from, or about to be written to, GitHub.
// SHA is empty when the file does not exist yet.
type File struct {
	Path    string `json:"path" jsonschema:"description=File path"`
	Content string `json:"content" jsonschema:"description=File content"`
	SHA     string `json:"sha" jsonschema:"description=File SHA"`
}

// Reader fetches file contents.
type Reader struct {
	clients *ghclient.Factory
}

// NewReader returns a Reader that builds clients from f.
func NewReader(f *ghclient.Factory) *Reader {
	return &Reader{clients: f}
}

// Read returns the files at p in repo. A directory yields its direct file
// children (subdirectories are skipped, not recursed); a file yields itself.
// Entries whose content the API withholds are fetched from their raw
// download URL concurrently, and the result keeps the listing order.
func (r *Reader) Read(ctx context.Context, repo reporef.Ref, p, ref string) ([]File, error) {
	log := clog.FromContext(ctx).With("repo", repo.String(), "path", p)

	gh, err := r.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	single, listing, _, err := gh.Repositories.GetContents(ctx, repo.Owner, repo.Repo, strings.Trim(p, "/"), opts)
	if err != nil {
		return nil, ghclient.Classify("get contents", "repository path "+repo.String()+"/"+p, err)
	}

	entries := listing
	if single != nil {
		entries = []*github.RepositoryContent{single}
	}

	var fileEntries []*github.RepositoryContent
	for _, e := range entries {
		if e.GetType() == "file" {
			fileEntries = append(fileEntries, e)
		}
	}
	log.Infof("Listing has %d entries, %d files", len(entries), len(fileEntries))

	files := make([]File, len(fileEntries))
	eg, egctx := errgroup.WithContext(ctx)
	for i, e := range fileEntries {
		files[i] = File{Path: e.GetPath(), SHA: e.GetSHA()}
		if !inline(e) && e.GetDownloadURL() == "" {
			continue
		}

		eg.Go(func() error {
			if inline(e) {
				content, err := e.GetContent()
				if err != nil {
					return &toolerr.RemoteAPIError{Service: "github", Operation: "decode contents", Message: "decoding " + e.GetPath() + ": " + err.Error(), Err: err}
				}
				files[i].Content = content
				return nil
			}
			content, err := download(egctx, gh, e.GetDownloadURL())
			if err != nil {
				return ghclient.Classify("download raw content", "raw content of "+e.GetPath(), err)
			}
			files[i].Content = content
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// inline reports whether the entry carries its own base64 content. Listings
// never do, and files over 1MB come back with encoding "none".
func inline(e *github.RepositoryContent) bool {
	if e.Content == nil || e.GetEncoding() == "none" {
		return false
	}
	return *e.Content != "" || e.GetSize() == 0
}

func download(ctx context.Context, gh *github.Client, rawURL string) (string, error) {
	req, err := gh.NewRequest("GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building raw request: %w", err)
	}
	var buf bytes.Buffer
	if _, err := gh.Do(ctx, req, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
