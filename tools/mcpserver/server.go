/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package mcpserver exposes a tools.Registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"chainguard.dev/codetools/tools"
	"github.com/chainguard-dev/clog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves every tool in a registry.
type Server struct {
	registry *tools.Registry
	mcp      *server.MCPServer
}

// New registers each tool of reg with a fresh MCP server.
func New(reg *tools.Registry, version string) (*Server, error) {
	s := &Server{
		registry: reg,
		mcp: server.NewMCPServer("codetools", version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithLogging(),
		),
	}
	for _, t := range reg.Tools() {
		schema, err := json.Marshal(t.Input)
		if err != nil {
			return nil, fmt.Errorf("marshalling input schema of %s: %w", t.ID, err)
		}
		tool := mcp.NewToolWithRawSchema(t.ID, t.Description, schema)
		tool.Annotations.Title = t.Name
		s.mcp.AddTool(tool, s.handle(t.ID))
	}
	return s, nil
}

// handle adapts Registry.Invoke to an MCP tool handler. Tool failures are
// reported in the result with isError set, never as protocol errors.
func (s *Server) handle(id string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if string(raw) == "null" {
			raw = nil
		}

		env, err := s.registry.Invoke(ctx, id, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultStructured(env, env.Text+"\n\n"+env.UI.String()), nil
	}
}

// ServeStdio speaks MCP on in and out until ctx is done or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// Handler mounts the streamable HTTP transport at /mcp and Prometheus
// metrics at /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath("/mcp")))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ServeHTTP listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		clog.FromContext(ctx).Infof("Serving MCP on %s/mcp", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
