/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"chainguard.dev/codetools/tools"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newToolsCmd() *cobra.Command {
	var (
		schema bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := definitions(tools.Catalog(tools.Deps{}), schema)
			return writeDefinitions(cmd.OutOrStdout(), defs, format)
		},
	}
	cmd.Flags().BoolVar(&schema, "schema", false, "include input and output schemas")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func definitions(ts []*tools.Tool, schema bool) []tools.Definition {
	defs := make([]tools.Definition, 0, len(ts))
	for _, t := range ts {
		d := t.Definition
		if !schema {
			d.Input, d.Output = nil, nil
		}
		defs = append(defs, d)
	}
	return defs
}

func writeDefinitions(w io.Writer, defs []tools.Definition, format string) error {
	b, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling definitions: %w", err)
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		// Go through JSON so the schemas keep their json tags and property order.
		var doc yaml.Node
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("converting to yaml: %w", err)
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// blockStyle clears the flow and quoting styles JSON input leaves on n.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
