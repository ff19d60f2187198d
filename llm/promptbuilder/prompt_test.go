/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"testing"

	"chainguard.dev/codetools/llm/promptbuilder"
	"github.com/stretchr/testify/require"
)

func TestNewPrompt(t *testing.T) {
	p, err := promptbuilder.NewPrompt("Issue: {{issue}}\n\nCode: {{ code }}\n\nAgain: {{issue}}")
	require.NoError(t, err)
	require.Equal(t, []string{"code", "issue"}, p.Bindings())

	for _, bad := range []string{"{{unclosed", "{{9lives}}", "{{}}", "{{a-b}}"} {
		_, err := promptbuilder.NewPrompt(promptbuilder.TemplateForTest(bad))
		require.Error(t, err, "template %q", bad)
	}
}

func TestBuild(t *testing.T) {
	p := promptbuilder.MustNewPrompt("Issue: {{issue}} / {{issue}}")

	_, err := p.Build()
	require.ErrorContains(t, err, "unbound placeholder: issue")

	bound, err := p.BindText("issue", "uses {{braces}}")
	require.NoError(t, err)
	got, err := bound.Build()
	require.NoError(t, err)
	require.Equal(t, "Issue: uses {{braces}} / uses {{braces}}", got)

	// The original prompt is unchanged.
	_, err = p.Build()
	require.Error(t, err)

	_, err = bound.BindText("issue", "again")
	require.ErrorContains(t, err, "already bound")
	_, err = p.BindText("missing", "x")
	require.ErrorContains(t, err, "not found")
}
