/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package repos creates repositories for the authenticated user.
package repos

import (
	"context"
	"fmt"
	"slices"

	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Languages a new project can be initialized in.
var Languages = []string{"python", "typescript"}

// Repository is a newly created repository.
type Repository struct {
	FullName string `json:"fullName" jsonschema:"description=owner/name of the new repository"`
	URL      string `json:"gitUrl" jsonschema:"description=URL for the new github repository"`
	Private  bool   `json:"private" jsonschema:"description=Whether the repository is private"`
}

// Creator makes new repositories.
type Creator struct {
	clients *ghclient.Factory
}

// NewCreator returns a Creator that builds clients from f.
func NewCreator(f *ghclient.Factory) *Creator {
	return &Creator{clients: f}
}

// Create makes a private repository named name under the authenticated
// user, described as a project in language.
func (c *Creator) Create(ctx context.Context, name, language string) (*Repository, error) {
	if name == "" {
		return nil, toolerr.Invalid("name", "must not be empty")
	}
	if !slices.Contains(Languages, language) {
		return nil, toolerr.Invalid("language", "must be one of %v, got %q", Languages, language)
	}

	gh, err := c.clients.AuthenticatedClient(ctx, "create repository")
	if err != nil {
		return nil, err
	}

	repo, _, err := gh.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.Ptr(name),
		Description: github.Ptr(fmt.Sprintf("%s, a %s project", name, language)),
		Private:     github.Ptr(true),
	})
	if err != nil {
		return nil, ghclient.Classify("create repository", "repository "+name, err)
	}

	clog.FromContext(ctx).Infof("Created repository %s", repo.GetHTMLURL())
	return &Repository{
		FullName: repo.GetFullName(),
		URL:      repo.GetHTMLURL(),
		Private:  repo.GetPrivate(),
	}, nil
}
