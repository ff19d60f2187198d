/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder fills {{name}} placeholders in prompt templates.
//
// Templates are parsed once; binding returns a new Prompt so a parsed
// template can be shared between invocations. Bound values are inserted
// verbatim and never re-scanned for placeholders, so user content that
// happens to contain "{{" is safe to bind.
package promptbuilder

import (
	"fmt"
	"maps"
	"slices"
)

// templateLiteral restricts NewPrompt to constant strings.
type templateLiteral string

// Prompt is a template plus its bindings.
type Prompt struct {
	template string
	values   map[string]*string
}

// NewPrompt parses template. Every placeholder must be a letter followed by
// letters, digits or underscores.
func NewPrompt(template templateLiteral) (*Prompt, error) {
	values := map[string]*string{}
	if _, err := walk(string(template), func(name string) (string, error) {
		values[name] = nil
		return "", nil
	}); err != nil {
		return nil, err
	}
	return &Prompt{template: string(template), values: values}, nil
}

// MustNewPrompt is NewPrompt for package-level templates.
func MustNewPrompt(template templateLiteral) *Prompt {
	p, err := NewPrompt(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Bindings lists the placeholder names in the template, sorted.
func (p *Prompt) Bindings() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// BindText binds name to value.
func (p *Prompt) BindText(name, value string) (*Prompt, error) {
	v, ok := p.values[name]
	switch {
	case !ok:
		return nil, fmt.Errorf("binding %q not found in template", name)
	case v != nil:
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Prompt{template: p.template, values: maps.Clone(p.values)}
	next.values[name] = &value
	return next, nil
}

// Build renders the template. Every placeholder must be bound.
func (p *Prompt) Build() (string, error) {
	return walk(p.template, func(name string) (string, error) {
		if v := p.values[name]; v != nil {
			return *v, nil
		}
		return "", fmt.Errorf("unbound placeholder: %s", name)
	})
}
