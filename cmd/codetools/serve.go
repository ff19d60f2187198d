/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"chainguard.dev/codetools/config"
	"chainguard.dev/codetools/tools/mcpserver"
	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			if cfg.EnablePprof {
				profiler.SetupProfiler()
			}
			defer httpmetrics.SetupTracer(ctx)()

			rt, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			srv, err := mcpserver.New(rt.registry, version)
			if err != nil {
				return err
			}

			switch transport {
			case "stdio":
				clog.InfoContextf(ctx, "Serving %d tools over stdio", len(rt.registry.Tools()))
				return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
			case "http":
				if addr == "" {
					addr = fmt.Sprintf(":%d", cfg.Port)
				}
				return srv.ServeHTTP(ctx, addr)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (default :$PORT)")
	return cmd
}
