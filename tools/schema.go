/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import "github.com/invopop/jsonschema"

var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// ReflectType returns the inline JSON schema of T. Only fields tagged
// jsonschema:"required" are required.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	s := reflector.Reflect(&zero)
	// MCP clients expect a bare object schema.
	s.Version = ""
	return s
}
