/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/ghtest"
	"chainguard.dev/codetools/llm/completion/completiontest"
	"chainguard.dev/codetools/toolerr"
	"chainguard.dev/codetools/workflows/codegen"
	"chainguard.dev/codetools/workspace"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func registry(t *testing.T, d Deps, opts ...RegistryOption) *Registry {
	t.Helper()
	r, err := NewRegistry(Catalog(d), opts...)
	require.NoError(t, err)
	return r
}

func ghFactory(t *testing.T, srv *ghtest.Server, token string) *ghclient.Factory {
	t.Helper()
	f, err := ghclient.NewFactory(ghclient.Credentials{Token: token}, ghclient.WithBaseURL(srv.APIURL()))
	require.NoError(t, err)
	return f
}

func dataJSON(t *testing.T, env *Envelope) string {
	t.Helper()
	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	return string(b)
}

func TestCatalogIDs(t *testing.T) {
	var ids []string
	for _, tool := range Catalog(Deps{}) {
		ids = append(ids, tool.ID)
		require.NotEmpty(t, tool.Name, tool.ID)
		require.NotEmpty(t, tool.Description, tool.ID)
		require.NotNil(t, tool.Input, tool.ID)
		require.NotNil(t, tool.Output, tool.ID)
		require.Equal(t, Free, tool.Pricing, tool.ID)
	}
	want := []string{
		"write-code", "read-git-repo", "push-to-git-repo", "get-github-issues", "close-github-issue",
		"new-gh-project", "new-gh-issue", "validate-idea", "read-file", "write-file",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("tool ids mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidInputMakesNoCalls(t *testing.T) {
	tests := []struct {
		tool  string
		input string
		field string
	}{
		{"push-to-git-repo", `{"repoURL": "https://github.com/acme/widgets"}`, "files"},
		{"push-to-git-repo", `{"repoURL": "https://github.com/acme/widgets", "files": []}`, "files"},
		{"push-to-git-repo", `{"repoURL": "https://github.com/acme/widgets", "files": [{"path": "a", "content": "b"}]}`, "files[0].message"},
		{"close-github-issue", `{"repoURL": "https://github.com/acme/widgets", "issueNumber": "3"}`, "issueNumber"},
		{"close-github-issue", `{"repoURL": "https://github.com/acme/widgets", "issueNumber": 0}`, "issueNumber"},
		{"get-github-issues", `{"repoURL": "https://github.com/acme/widgets", "state": "merged"}`, "state"},
		{"get-github-issues", `{"repoURL": "https://github.com/acme"}`, "repoURL"},
		{"read-git-repo", `{}`, "repoURL"},
		{"new-gh-project", `{"name": "demo", "language": "rust"}`, "language"},
		{"new-gh-issue", `{"repoUrl": "https://github.com/acme/widgets", "title": "  ", "description": "d"}`, "title"},
		{"write-code", `{"issueContext": "i", "repoURL": "https://github.com/acme/widgets"}`, "codeContext"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.field, func(t *testing.T) {
			srv := ghtest.New(t)
			fake := completiontest.New()
			r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok"), Completer: fake, IdeaCompleter: fake})

			env, err := r.Invoke(context.Background(), tt.tool, json.RawMessage(tt.input))
			require.Nil(t, env)
			var ve *toolerr.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			require.True(t, strings.HasPrefix(ve.Field, tt.field), "field %q", ve.Field)
			require.Empty(t, srv.Calls())
			require.Empty(t, fake.Requests())
		})
	}
}

func TestGetIssuesEmptyRepo(t *testing.T) {
	srv := ghtest.New(t)
	srv.AddRepo("acme", "widgets")
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "")})

	env, err := r.Invoke(context.Background(), "get-github-issues", json.RawMessage(`{"repoURL": "https://github.com/acme/widgets"}`))
	require.NoError(t, err)
	require.Contains(t, env.Text, "Found 0 issues")
	require.JSONEq(t, `{"issues": []}`, dataJSON(t, env))
	require.Equal(t, "GitHub Issues", env.UI.Title)
}

func TestCloseIssueWithoutComment(t *testing.T) {
	srv := ghtest.New(t)
	n := srv.AddIssue("acme", "widgets", "Infinite loop", nil, "open")
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok")})

	env, err := r.Invoke(context.Background(), "close-github-issue",
		json.RawMessage(`{"repoURL": "https://github.com/acme/widgets", "issueNumber": 1}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"closed": true, "commentAdded": false}`, dataJSON(t, env))
	require.Equal(t, "Successfully closed issue #1", env.Text)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, http.MethodPatch, calls[0].Method)

	state, comments, ok := srv.Issue("acme", "widgets", n)
	require.True(t, ok)
	require.Equal(t, "closed", state)
	require.Empty(t, comments)
}

func TestCloseIssueWithComment(t *testing.T) {
	srv := ghtest.New(t)
	srv.AddIssue("acme", "widgets", "Infinite loop", nil, "open")
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok")})

	env, err := r.Invoke(context.Background(), "close-github-issue",
		json.RawMessage(`{"repoURL": "https://github.com/acme/widgets", "issueNumber": 1, "comment": "Fixed in loop.c"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"closed": true, "commentAdded": true}`, dataJSON(t, env))
	require.Equal(t, "Successfully closed issue #1 with comment", env.Text)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, http.MethodPost, calls[0].Method)
	require.Equal(t, http.MethodPatch, calls[1].Method)
}

func TestWriteCodeThroughRegistry(t *testing.T) {
	srv := ghtest.New(t)
	srv.AddFile("acme", "widgets", "loop.c", "int main(void) { for (;;) {} }\n")
	fixed := "int main(void) { return 0; }\n"
	fake := completiontest.New(
		"loop.c\n```c\n"+fixed+"```",
		`{"listOutputs": [{"fileName": "loop.c", "fileContent": "int main(void) { return 0; }\n"}]}`,
	)
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok"), Completer: fake})

	env, err := r.Invoke(context.Background(), "write-code", json.RawMessage(`{
		"issueContext": "Fix infinite loop in loop.c",
		"codeContext": "loop.c",
		"repoURL": "https://github.com/acme/widgets"
	}`))
	require.NoError(t, err)
	require.Len(t, fake.Requests(), 2)
	require.Equal(t, "Generated and pushed 1 file modifications", env.Text)
	require.Equal(t, "Code Changes", env.UI.Title)

	res, ok := env.Data.(codegen.Result)
	require.True(t, ok, "data is %T", env.Data)
	require.Len(t, res.Commits, 1)
	require.NotEmpty(t, res.Commits[0].SHA)
	require.NotEmpty(t, res.Commits[0].URL)
	require.Len(t, srv.CallsMatching(http.MethodPut), 1)

	content, _ := srv.File("acme", "widgets", "loop.c")
	require.Equal(t, fixed, content)
}

func TestWriteCodeWithoutCompleter(t *testing.T) {
	srv := ghtest.New(t)
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok")})

	_, err := r.Invoke(context.Background(), "write-code", json.RawMessage(`{
		"issueContext": "i", "codeContext": "c", "repoURL": "https://github.com/acme/widgets"
	}`))
	var ce *toolerr.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	require.Empty(t, srv.Calls())
}

func TestReadAndPush(t *testing.T) {
	srv := ghtest.New(t)
	srv.AddFile("acme", "widgets", "src/a.txt", "one\ntwo\n")
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok")})
	ctx := context.Background()

	env, err := r.Invoke(ctx, "read-git-repo", json.RawMessage(`{"repoURL": "https://github.com/acme/widgets", "path": "src/a.txt"}`))
	require.NoError(t, err)
	require.Equal(t, "Read 1 files from repository", env.Text)
	read := env.Data.(ReadRepoResult)
	require.Len(t, read.Files, 1)
	require.Equal(t, "one\ntwo\n", read.Files[0].Content)

	env, err = r.Invoke(ctx, "push-to-git-repo", json.RawMessage(`{
		"repoURL": "https://github.com/acme/widgets",
		"files": [
			{"path": "src/a.txt", "content": "one\n", "message": "trim"},
			{"path": "src/b.txt", "content": "new\n", "message": "add"}
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, "Successfully pushed 2 files to repository", env.Text)
	pushed := env.Data.(PushResult)
	require.Len(t, pushed.Commits, 2)
	require.False(t, pushed.Commits[0].Created)
	require.True(t, pushed.Commits[1].Created)

	puts := srv.CallsMatching(http.MethodPut)
	require.Len(t, puts, 2)
	require.Equal(t, ghtest.BlobSHA("one\ntwo\n"), puts[0].Body["sha"])
	require.NotContains(t, puts[1].Body, "sha")
}

func TestNewProjectAndIssue(t *testing.T) {
	srv := ghtest.New(t)
	srv.AddRepo("acme", "widgets")
	r := registry(t, Deps{GitHub: ghFactory(t, srv, "tok")})
	ctx := context.Background()

	env, err := r.Invoke(ctx, "new-gh-project", json.RawMessage(`{"name": "demo", "language": "python"}`))
	require.NoError(t, err)
	require.Equal(t, "New GitHub Repository Created", env.UI.Title)
	require.Contains(t, env.Text, "initialized a python project")

	env, err = r.Invoke(ctx, "new-gh-issue", json.RawMessage(`{
		"repoUrl": "https://github.com/acme/widgets", "title": "Add tests", "description": "Cover the loop"
	}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"issueUrl": "https://github.com/acme/widgets/issues/1", "number": 1}`, dataJSON(t, env))
}

func TestValidateIdea(t *testing.T) {
	fake := completiontest.New("expanded", "- a\n- b", `{"tasks": ["a", "b"]}`)
	r := registry(t, Deps{IdeaCompleter: fake})

	env, err := r.Invoke(context.Background(), "validate-idea", json.RawMessage(`{"prompt": "a todo app"}`))
	require.NoError(t, err)
	require.Equal(t, "Generated 2 tasks for your project idea", env.Text)
	require.JSONEq(t, `{"expanded_idea": ["a", "b"]}`, dataJSON(t, env))
}

func TestWorkspaceTools(t *testing.T) {
	dir := t.TempDir()
	ws, err := workspace.New(dir)
	require.NoError(t, err)
	r := registry(t, Deps{Workspace: ws})
	ctx := context.Background()

	env, err := r.Invoke(ctx, "write-file", json.RawMessage(`{"fileName": "notes/todo.md", "content": "a\nb"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"success": true, "bytesWritten": 3, "lines": 2}`, dataJSON(t, env))

	b, err := os.ReadFile(filepath.Join(dir, "notes", "todo.md"))
	require.NoError(t, err)
	require.Equal(t, "a\nb", string(b))

	env, err = r.Invoke(ctx, "read-file", json.RawMessage(`{"fileName": "notes/todo.md"}`))
	require.NoError(t, err)
	require.Equal(t, "Accessed the notes/todo.md file content\na\nb", env.Text)

	_, err = r.Invoke(ctx, "read-file", json.RawMessage(`{"fileName": "missing.md"}`))
	require.True(t, toolerr.IsNotFound(err), "got %v", err)

	_, err = r.Invoke(ctx, "write-file", json.RawMessage(`{"fileName": "../escape.md", "content": "x"}`))
	var ve *toolerr.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
}

func TestWorkspaceToolsUnconfigured(t *testing.T) {
	r := registry(t, Deps{})
	_, err := r.Invoke(context.Background(), "read-file", json.RawMessage(`{"fileName": "a"}`))
	var ce *toolerr.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	require.Equal(t, "WORKSPACE_DIR", ce.Setting)
}
