/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// walk copies template, replacing each {{name}} with resolve(name).
func walk(template string, resolve func(name string) (string, error)) (string, error) {
	var b strings.Builder
	for {
		start := strings.Index(template, "{{")
		if start < 0 {
			b.WriteString(template)
			return b.String(), nil
		}
		b.WriteString(template[:start])

		end := strings.Index(template[start:], "}}")
		if end < 0 {
			return "", errors.New("unclosed binding: missing '}}'")
		}
		end += start + 2

		name := strings.TrimSpace(template[start+2 : end-2])
		if !identifier(name) {
			return "", fmt.Errorf("invalid binding identifier %q", name)
		}
		v, err := resolve(name)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
		template = template[end:]
	}
}

func identifier(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}
