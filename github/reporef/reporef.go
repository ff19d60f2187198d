/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package reporef parses the repository references accepted by the tools.
package reporef

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"chainguard.dev/codetools/toolerr"
)

// Ref identifies a GitHub repository.
type Ref struct {
	Owner string
	Repo  string
}

func (r Ref) String() string { return r.Owner + "/" + r.Repo }

var (
	hostsMu sync.RWMutex
	hosts   = map[string]bool{"github.com": true, "www.github.com": true}
)

// AllowAPIHost also accepts repository URLs on the web host served by the
// REST API at apiURL, such as a GitHub Enterprise Server. An "api." prefix
// on the API host is dropped, so https://api.github.com/ maps to github.com.
func AllowAPIHost(apiURL string) error {
	u, err := url.Parse(apiURL)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("GitHub API URL %q has no host", apiURL)
	}
	host := strings.ToLower(u.Hostname())

	hostsMu.Lock()
	defer hostsMu.Unlock()
	hosts[strings.TrimPrefix(host, "api.")] = true
	return nil
}

func allowed(host string) bool {
	hostsMu.RLock()
	defer hostsMu.RUnlock()
	return hosts[strings.ToLower(host)]
}

// Parse accepts "https://github.com/owner/repo" (optionally with a trailing
// slash, ".git" suffix or extra path segments), "github.com/owner/repo" and
// plain "owner/repo". Hosts other than github.com and those added with
// AllowAPIHost are rejected.
func Parse(raw string) (Ref, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Ref{}, toolerr.Invalid("repoURL", "must not be empty")
	}

	var host string
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Ref{}, toolerr.Invalid("repoURL", "%q is not a valid URL: %v", raw, err)
		}
		if u.Hostname() == "" {
			return Ref{}, toolerr.Invalid("repoURL", "%q has no host", raw)
		}
		host, s = u.Hostname(), u.Path
	} else if first, rest, ok := strings.Cut(s, "/"); ok && strings.Contains(first, ".") {
		// GitHub logins cannot contain a dot, so a dotted first segment is a host.
		host, s = first, rest
	}
	if host != "" && !allowed(host) {
		return Ref{}, toolerr.Invalid("repoURL", "%q is not a GitHub repository (host %s)", raw, host)
	}

	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, toolerr.Invalid("repoURL", "%q does not name a repository (expected https://github.com/owner/repo)", raw)
	}

	return Ref{
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Ref {
	r, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("reporef.MustParse(%q): %v", raw, err))
	}
	return r
}
