/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	require.Empty(t, cfg.GitHubToken)
	require.Empty(t, cfg.CompletionAPIKey)
	require.Equal(t, "https://api.github.com/", cfg.GitHubAPIURL)
	require.Equal(t, "https://api.groq.com/openai/v1/", cfg.CompletionBaseURL)
	require.Equal(t, "llama-3.3-70b-versatile", cfg.CompletionModel)
	require.Equal(t, ".", cfg.WorkspaceDir)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.HasGitHubApp())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"GITHUB_TOKEN":            "ghp_test",
		"GITHUB_APP_ID":           "12",
		"GITHUB_INSTALLATION_ID":  "34",
		"GITHUB_PRIVATE_KEY_PATH": "/tmp/key.pem",
		"COMPLETION_MODEL":        "claude-sonnet-4-5",
		"PORT":                    "9090",
	}))
	require.NoError(t, err)

	require.Equal(t, "ghp_test", cfg.GitHubToken)
	require.Equal(t, "claude-sonnet-4-5", cfg.CompletionModel)
	require.Equal(t, 9090, cfg.Port)
	require.True(t, cfg.HasGitHubApp())
}

func TestLoadRejectsBadPort(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT": "not-a-number",
	}))
	require.Error(t, err)
}
