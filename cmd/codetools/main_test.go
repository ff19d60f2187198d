/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chainguard.dev/codetools/audit"
	"chainguard.dev/codetools/github/ghtest"
	"chainguard.dev/codetools/tools"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range []string{"GITHUB_TOKEN", "GITHUB_APP_ID", "GITHUB_INSTALLATION_ID", "GITHUB_PRIVATE_KEY_PATH", "COMPLETION_API_KEY", "AUDIT_DB_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("WORKSPACE_DIR", dir)
	return dir
}

func TestToolsJSON(t *testing.T) {
	out, err := run(t, "tools")
	require.NoError(t, err)

	var defs []tools.Definition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 10)
	require.Equal(t, "write-code", defs[0].ID)
	require.Nil(t, defs[0].Input)
	require.Equal(t, "USD", defs[0].Pricing.Currency)
}

func TestToolsSchemaYAML(t *testing.T) {
	out, err := run(t, "tools", "--schema", "--format", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "- id: write-code")

	var defs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 10)
	input, ok := defs[0]["input"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{"issueContext", "codeContext", "repoURL"}, input["required"])
}

func TestToolsUnknownFormat(t *testing.T) {
	_, err := run(t, "tools", "--format", "toml")
	require.ErrorContains(t, err, "unknown format")
}

func TestCallReadFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("a\nb\n"), 0o644))

	out, err := run(t, "call", "read-file", "--input", `{"fileName": "notes.md"}`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Accessed the notes.md file content\na\nb\n"))
	require.Contains(t, out, "File Contents")
	require.Contains(t, out, `"fileContent": "a\nb\n"`)
}

func TestCallInputFromFileWithAudit(t *testing.T) {
	dir := isolate(t)
	srv := ghtest.New(t)
	srv.AddRepo("acme", "widgets")
	t.Setenv("GITHUB_API_URL", srv.APIURL())
	db := filepath.Join(t.TempDir(), "audit.db")
	t.Setenv("AUDIT_DB_PATH", db)

	in := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"repoURL": "https://github.com/acme/widgets"}`), 0o644))

	out, err := run(t, "call", "get-github-issues", "--input", "@"+in)
	require.NoError(t, err)
	require.Contains(t, out, "Found 0 issues in repository acme/widgets")

	_, err = run(t, "call", "get-github-issues", "--input", `{"repoURL": "nope"}`)
	require.ErrorContains(t, err, "repoURL")

	store, err := audit.Open(context.Background(), db)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "validation", entries[0].Outcome)
	require.Equal(t, "ok", entries[1].Outcome)

	out, err = run(t, "audit", "--limit", "1")
	require.NoError(t, err)
	require.Contains(t, out, "validation")
	require.NotContains(t, out, " ok ")
}

func TestCallRepositoryHosts(t *testing.T) {
	isolate(t)
	srv := ghtest.New(t)
	srv.AddRepo("acme", "widgets")
	t.Setenv("GITHUB_API_URL", srv.APIURL())

	_, err := run(t, "call", "get-github-issues", "--input", `{"repoURL": "https://gitlab.com/acme/widgets"}`)
	require.ErrorContains(t, err, "not a GitHub repository")
	require.Empty(t, srv.Calls())

	host := strings.TrimSuffix(strings.TrimPrefix(srv.APIURL(), "http://"), "/")
	out, err := run(t, "call", "get-github-issues", "--input", `{"repoURL": "http://`+host+`/acme/widgets"}`)
	require.NoError(t, err)
	require.Contains(t, out, "Found 0 issues in repository acme/widgets")
}

func TestAuditRequiresPath(t *testing.T) {
	isolate(t)
	_, err := run(t, "audit")
	require.ErrorIs(t, err, errNoAudit)
}

func TestWriteEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, []audit.Entry{{
		ID:        "1",
		Tool:      "write-code",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Outcome:   "remote_api",
		Error:     "GitHub push HTTP 500",
	}}))
	require.Contains(t, buf.String(), "write-code")
	require.Contains(t, buf.String(), "1500ms")
}
