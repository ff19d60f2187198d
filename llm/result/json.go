/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result decodes JSON out of completion text.
package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON payload of a completion. Models sometimes wrap
// it in a ```json fence, or a bare ``` fence; the first fenced block wins and
// otherwise the trimmed text is returned as is.
func ExtractJSON(text string) string {
	var (
		buf   bytes.Buffer
		in    bool
		found bool
	)
	for _, line := range strings.Split(text, "\n") {
		if !in && strings.TrimSpace(line) == "```json" {
			in, found = true, true
			continue
		}
		if in && strings.TrimSpace(line) == "```" {
			break
		}
		if in {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
		}
	}
	if found {
		return strings.TrimSpace(buf.String())
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Extract decodes the JSON object in text into T. The payload must be a
// single JSON object; arrays, scalars and trailing data are rejected.
func Extract[T any](text string) (T, error) {
	var out T

	payload := ExtractJSON(text)
	if payload == "" {
		return out, errors.New("empty response")
	}
	if payload[0] != '{' {
		return out, fmt.Errorf("expected a JSON object, got %q", preview(payload))
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	if dec.More() {
		return out, errors.New("unexpected data after JSON object")
	}
	return out, nil
}

func preview(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
