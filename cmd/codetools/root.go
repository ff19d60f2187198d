/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"

	"chainguard.dev/codetools/audit"
	"chainguard.dev/codetools/config"
	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/llm/completion"
	"chainguard.dev/codetools/llm/metrics"
	"chainguard.dev/codetools/tools"
	"chainguard.dev/codetools/workspace"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "codetools",
		Short:        "GitHub and code generation tools for agents",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newToolsCmd(), newCallCmd(), newAuditCmd())
	return root
}

// runtime is everything a command needs to invoke tools.
type runtime struct {
	registry *tools.Registry
	close    func()
}

// build wires the registry from cfg. Missing credentials are not an error
// here; the tools that need them fail when called.
func build(ctx context.Context, cfg *config.Config) (*runtime, error) {
	log := clog.FromContext(ctx)

	creds := ghclient.Credentials{Token: cfg.GitHubToken}
	if creds.Token == "" && cfg.HasGitHubApp() {
		creds.App = &ghclient.AppCredentials{
			AppID:          cfg.GitHubAppID,
			InstallationID: cfg.GitHubInstallationID,
			PrivateKeyPath: cfg.GitHubPrivateKeyPath,
		}
	}
	if err := reporef.AllowAPIHost(cfg.GitHubAPIURL); err != nil {
		return nil, err
	}
	gh, err := ghclient.NewFactory(creds, ghclient.WithBaseURL(cfg.GitHubAPIURL))
	if err != nil {
		return nil, err
	}

	gm := metrics.NewGenAI(metrics.MeterName)
	gm.SetAttributeEnricher(tools.EnrichMetrics)

	deps := tools.Deps{GitHub: gh}
	if cfg.CompletionAPIKey != "" {
		if deps.Completer, err = newCompleter(ctx, cfg, cfg.CompletionModel, gm); err != nil {
			return nil, err
		}
		if deps.IdeaCompleter, err = newCompleter(ctx, cfg, cfg.IdeaModel, gm); err != nil {
			return nil, err
		}
	} else {
		log.Warn("COMPLETION_API_KEY is not set; write-code and validate-idea will fail")
	}
	if !gh.HasCredential() {
		log.Warn("No GitHub credential is set; only anonymous reads will work")
	}

	if ws, err := workspace.New(cfg.WorkspaceDir); err != nil {
		log.Warn("Workspace unavailable; read-file and write-file will fail", "error", err)
	} else {
		deps.Workspace = ws
	}

	rt := &runtime{close: func() {}}
	var opts []tools.RegistryOption
	if cfg.AuditDBPath != "" {
		store, err := audit.Open(ctx, cfg.AuditDBPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tools.WithRecorder(store))
		rt.close = func() {
			if err := store.Close(); err != nil {
				log.Warn("Closing audit store", "error", err)
			}
		}
	}

	if rt.registry, err = tools.NewRegistry(tools.Catalog(deps), opts...); err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func newCompleter(ctx context.Context, cfg *config.Config, model string, gm *metrics.GenAI) (completion.Interface, error) {
	return completion.New(ctx, completion.Config{
		Model:   model,
		APIKey:  cfg.CompletionAPIKey,
		BaseURL: cfg.CompletionBaseURL,
		Metrics: gm,
	})
}

var errNoAudit = errors.New("AUDIT_DB_PATH is not set")
