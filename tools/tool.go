/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tools declares the schema-typed tools and the registry that
// invokes them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"

	"chainguard.dev/codetools/render"
	"chainguard.dev/codetools/toolerr"
	"github.com/invopop/jsonschema"
)

// Pricing is the advertised per-call price of a tool. It is metadata only.
type Pricing struct {
	PricePerUse float64 `json:"pricePerUse" yaml:"pricePerUse"`
	Currency    string  `json:"currency" yaml:"currency"`
}

// Free is the price of every built-in tool.
var Free = Pricing{PricePerUse: 0, Currency: "USD"}

// Definition describes a tool to a host.
type Definition struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	Pricing     Pricing            `json:"pricing" yaml:"pricing"`
	Input       *jsonschema.Schema `json:"input,omitempty" yaml:"input,omitempty"`
	Output      *jsonschema.Schema `json:"output,omitempty" yaml:"output,omitempty"`
}

// Envelope is what every tool returns: summary text, typed data and a card.
type Envelope struct {
	Text string      `json:"text"`
	Data any         `json:"data"`
	UI   render.Card `json:"ui"`
}

// Tool is a Definition bound to its handler.
type Tool struct {
	Definition
	run func(ctx context.Context, raw json.RawMessage) (*Envelope, error)
}

// New declares a tool whose input and output schemas are reflected from Req
// and Resp. Raw input is checked against the input schema, decoded, and then
// passed through Req's Validate before h runs.
func New[Req, Resp any, PReq interface {
	*Req
	Validate() error
}](id, name, description string, h func(context.Context, *Req) (Resp, render.Summary, error)) *Tool {
	t := &Tool{Definition: Definition{
		ID:          id,
		Name:        name,
		Description: description,
		Pricing:     Free,
		Input:       ReflectType[Req](),
		Output:      ReflectType[Resp](),
	}}
	t.run = func(ctx context.Context, raw json.RawMessage) (*Envelope, error) {
		if len(bytes.TrimSpace(raw)) == 0 {
			raw = json.RawMessage("{}")
		}
		if err := Check(t.Input, raw); err != nil {
			return nil, err
		}
		req := new(Req)
		if err := json.Unmarshal(raw, req); err != nil {
			return nil, toolerr.Invalid("input", "%v", err)
		}
		if err := PReq(req).Validate(); err != nil {
			return nil, err
		}
		data, sum, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Envelope{Text: sum.Text, Data: data, UI: sum.Card}, nil
	}
	return t
}
