/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ghclient builds GitHub API clients from injected credentials and
// maps GitHub failures onto the toolerr taxonomy.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"chainguard.dev/codetools/toolerr"
	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// Credentials selects how requests are authenticated. At most one of Token
// or App is used; Token wins when both are set.
type Credentials struct {
	Token string
	App   *AppCredentials
}

// AppCredentials identifies a GitHub App installation.
type AppCredentials struct {
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Factory builds a fresh *github.Client for every call. It holds only
// immutable configuration, so it is safe to share.
type Factory struct {
	creds     Credentials
	baseURL   *url.URL
	transport http.RoundTripper
}

// Option configures a Factory.
type Option func(*Factory) error

// WithBaseURL points clients at a GitHub Enterprise or test server.
func WithBaseURL(raw string) Option {
	return func(f *Factory) error {
		if raw == "" {
			return nil
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing GitHub API URL %q: %w", raw, err)
		}
		f.baseURL = u
		return nil
	}
}

// WithTransport overrides the base transport beneath authentication.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Factory) error {
		f.transport = rt
		return nil
	}
}

// NewFactory validates options and returns a Factory.
func NewFactory(creds Credentials, opts ...Option) (*Factory, error) {
	f := &Factory{
		creds:     creds,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// HasCredential reports whether any GitHub credential is configured.
func (f *Factory) HasCredential() bool {
	return f.creds.Token != "" || f.creds.App != nil
}

// Client returns an authenticated client, or an anonymous one when no
// credential is configured.
func (f *Factory) Client(ctx context.Context) (*github.Client, error) {
	var hc *http.Client
	switch {
	case f.creds.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: f.creds.Token})
		hc = &http.Client{Transport: &oauth2.Transport{Source: ts, Base: f.transport}}
	case f.creds.App != nil:
		itr, err := ghinstallation.NewKeyFromFile(f.transport, f.creds.App.AppID, f.creds.App.InstallationID, f.creds.App.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("loading GitHub App key: %w", err)
		}
		if f.baseURL != nil {
			itr.BaseURL = strings.TrimSuffix(f.baseURL.String(), "/")
		}
		hc = &http.Client{Transport: itr}
	default:
		hc = &http.Client{Transport: f.transport}
	}

	client := github.NewClient(hc)
	if f.baseURL != nil {
		client.BaseURL = f.baseURL
	}
	return client, nil
}

// AuthenticatedClient is Client for operations that must not run anonymously.
// It fails with AuthenticationError before any network call.
func (f *Factory) AuthenticatedClient(ctx context.Context, operation string) (*github.Client, error) {
	if !f.HasCredential() {
		return nil, &toolerr.AuthenticationError{Operation: operation}
	}
	return f.Client(ctx)
}

// Classify converts a go-github error into the toolerr taxonomy. A 404
// becomes NotFoundError, any other HTTP failure a RemoteAPIError carrying the
// message GitHub returned.
func Classify(operation, resource string, err error) error {
	if err == nil {
		return nil
	}

	var er *github.ErrorResponse
	if errors.As(err, &er) {
		status := 0
		if er.Response != nil {
			status = er.Response.StatusCode
		}
		if status == http.StatusNotFound {
			return &toolerr.NotFoundError{Resource: resource, Message: er.Message, Err: err}
		}
		return &toolerr.RemoteAPIError{
			Service:    "github",
			Operation:  operation,
			StatusCode: status,
			Message:    er.Message,
			Err:        err,
		}
	}

	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		status := 0
		if rle.Response != nil {
			status = rle.Response.StatusCode
		}
		return &toolerr.RemoteAPIError{Service: "github", Operation: operation, StatusCode: status, Message: rle.Message, Err: err}
	}

	var arle *github.AbuseRateLimitError
	if errors.As(err, &arle) {
		status := 0
		if arle.Response != nil {
			status = arle.Response.StatusCode
		}
		return &toolerr.RemoteAPIError{Service: "github", Operation: operation, StatusCode: status, Message: arle.Message, Err: err}
	}

	return &toolerr.RemoteAPIError{Service: "github", Operation: operation, Err: err}
}
