/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"chainguard.dev/codetools/audit"
	"chainguard.dev/codetools/config"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool invocations from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if cfg.AuditDBPath == "" {
				return errNoAudit
			}
			store, err := audit.Open(ctx, cfg.AuditDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}

func writeEntries(w io.Writer, entries []audit.Entry) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Started", "Tool", "Duration", "Outcome", "Error"}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	for _, e := range entries {
		if err := table.Append([]string{
			e.StartedAt.Local().Format(time.DateTime),
			e.Tool,
			strconv.FormatInt(e.Duration.Milliseconds(), 10) + "ms",
			e.Outcome,
			e.Error,
		}); err != nil {
			return fmt.Errorf("appending row: %w", err)
		}
	}
	return table.Render()
}
