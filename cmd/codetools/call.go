/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"chainguard.dev/codetools/config"
	"chainguard.dev/codetools/tools"
	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "call <tool-id>",
		Short: "Invoke a tool once",
		Long:  "Invoke a tool once. --input takes a JSON object, or @path to read it from a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			raw, err := readInput(input)
			if err != nil {
				return err
			}

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			rt, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			env, err := rt.registry.Invoke(ctx, args[0], raw)
			if err != nil {
				return err
			}
			return printEnvelope(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "{}", "tool input as JSON, or @file")
	return cmd
}

func readInput(s string) (json.RawMessage, error) {
	if path, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return b, nil
	}
	return json.RawMessage(s), nil
}

func printEnvelope(w io.Writer, env *tools.Envelope) error {
	if _, err := fmt.Fprintln(w, env.Text); err != nil {
		return err
	}
	if err := env.UI.Render(w); err != nil {
		return fmt.Errorf("rendering card: %w", err)
	}
	b, err := json.MarshalIndent(env.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling data: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
