/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ideas

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/codetools/llm/completion/completiontest"
	"chainguard.dev/codetools/toolerr"
	"github.com/stretchr/testify/require"
)

func TestExpandChainsPasses(t *testing.T) {
	fake := completiontest.New(
		"A todo app with accounts and reminders.",
		"- Build login\n- Build reminders",
		`{"tasks": ["Build login", "Build reminders"]}`,
	)

	got, err := New(fake).Expand(context.Background(), Request{Prompt: "todo app"})
	require.NoError(t, err)
	require.Equal(t, []string{"Build login", "Build reminders"}, got.Tasks)

	reqs := fake.Requests()
	require.Len(t, reqs, 3)
	require.Equal(t, "todo app", reqs[0].Messages[1].Content)
	require.Equal(t, "A todo app with accounts and reminders.", reqs[1].Messages[1].Content)
	require.Equal(t, "- Build login\n- Build reminders", reqs[2].Messages[1].Content)
	require.False(t, reqs[1].JSON)
	require.True(t, reqs[2].JSON)
}

func TestExpandMalformed(t *testing.T) {
	for _, final := range []string{"- Build login", `{"todo": []}`, `["Build login"]`} {
		fake := completiontest.New("a", "b", final)
		_, err := New(fake).Expand(context.Background(), Request{Prompt: "x"})
		var merr *toolerr.MalformedResponseError
		require.True(t, errors.As(err, &merr), "final %q: got %v", final, err)
	}
}

func TestExpandWithoutCompleter(t *testing.T) {
	_, err := New(nil).Expand(context.Background(), Request{Prompt: "x"})
	var cerr *toolerr.ConfigurationError
	require.True(t, errors.As(err, &cerr))
}
