/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads process configuration from the environment.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is populated once at startup. Credentials are optional here: each
// tool checks for the credential it needs when it is called, so a missing
// token fails that call rather than the whole process.
type Config struct {
	// GitHub authentication, either a token or a GitHub App installation.
	GitHubToken          string `env:"GITHUB_TOKEN"`
	GitHubAppID          int64  `env:"GITHUB_APP_ID"`
	GitHubInstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	GitHubPrivateKeyPath string `env:"GITHUB_PRIVATE_KEY_PATH"`
	GitHubAPIURL         string `env:"GITHUB_API_URL,default=https://api.github.com/"`

	// Completion provider. The backend is picked from the model name.
	CompletionAPIKey  string `env:"COMPLETION_API_KEY"`
	CompletionBaseURL string `env:"COMPLETION_BASE_URL,default=https://api.groq.com/openai/v1/"`
	CompletionModel   string `env:"COMPLETION_MODEL,default=llama-3.3-70b-versatile"`
	IdeaModel         string `env:"IDEA_MODEL,default=llama-3.3-70b-versatile"`

	WorkspaceDir string `env:"WORKSPACE_DIR,default=."`
	AuditDBPath  string `env:"AUDIT_DB_PATH"`

	Port        int  `env:"PORT,default=8080"`
	EnablePprof bool `env:"ENABLE_PPROF,default=false"`
}

// Load processes the environment into a Config.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &cfg, nil
}

// LoadFrom processes the given lookuper instead of the process environment.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &cfg, nil
}

// HasGitHubApp reports whether a complete GitHub App credential is configured.
func (c *Config) HasGitHubApp() bool {
	return c.GitHubAppID != 0 && c.GitHubInstallationID != 0 && c.GitHubPrivateKeyPath != ""
}
