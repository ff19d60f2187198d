/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/codetools/toolerr"
	"github.com/invopop/jsonschema"
)

// Check verifies raw against s: it must be an object, every required field
// must be present and non-null, and every known field must have the declared
// primitive type and, when the schema lists one, an allowed enum value.
// Unknown fields are ignored.
func Check(s *jsonschema.Schema, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return toolerr.Invalid("input", "not valid JSON: %v", err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return toolerr.Invalid("input", "must be a JSON object")
	}

	for _, name := range s.Required {
		if v, ok := obj[name]; !ok || v == nil {
			return toolerr.Invalid(name, "is required")
		}
	}

	if s.Properties == nil {
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(obj)) {
		prop, ok := s.Properties.Get(name)
		if !ok || obj[name] == nil {
			continue
		}
		if err := checkValue(name, prop, obj[name]); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(field string, s *jsonschema.Schema, v any) error {
	switch s.Type {
	case "string":
		if _, ok := v.(string); !ok {
			return toolerr.Invalid(field, "must be a string")
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return toolerr.Invalid(field, "must be a boolean")
		}
	case "integer":
		n, ok := v.(json.Number)
		if !ok {
			return toolerr.Invalid(field, "must be an integer")
		}
		if _, err := n.Int64(); err != nil {
			return toolerr.Invalid(field, "must be an integer, got %s", n)
		}
	case "number":
		if _, ok := v.(json.Number); !ok {
			return toolerr.Invalid(field, "must be a number")
		}
	case "array":
		items, ok := v.([]any)
		if !ok {
			return toolerr.Invalid(field, "must be an array")
		}
		if s.Items != nil {
			for i, item := range items {
				if err := checkValue(fmt.Sprintf("%s[%d]", field, i), s.Items, item); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return toolerr.Invalid(field, "must be an object")
		}
		for _, name := range s.Required {
			if x, ok := obj[name]; !ok || x == nil {
				return toolerr.Invalid(field+"."+name, "is required")
			}
		}
		if s.Properties != nil {
			for _, name := range slices.Sorted(maps.Keys(obj)) {
				prop, ok := s.Properties.Get(name)
				if !ok || obj[name] == nil {
					continue
				}
				if err := checkValue(field+"."+name, prop, obj[name]); err != nil {
					return err
				}
			}
		}
	}

	if len(s.Enum) > 0 && !slices.ContainsFunc(s.Enum, func(e any) bool { return fmt.Sprint(e) == fmt.Sprint(v) }) {
		return toolerr.Invalid(field, "must be one of %v, got %v", s.Enum, v)
	}
	return nil
}
