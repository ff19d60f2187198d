/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Invocation identifies one tool call.
type Invocation struct {
	ID   string `json:"id"`
	Tool string `json:"tool"`
}

// EnrichAttributes appends the tool id to base. The invocation id is left to
// traces and logs; it would give every call its own time series.
func (i Invocation) EnrichAttributes(base []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(base), len(base)+1)
	copy(attrs, base)
	if i.Tool != "" {
		attrs = append(attrs, attribute.String("tool", i.Tool))
	}
	return attrs
}

type invocationKey struct{}

// WithInvocation stores inv in ctx.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFrom returns the invocation stored in ctx, if any.
func InvocationFrom(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// EnrichMetrics is a metrics.AttributeEnricher that labels completion
// metrics with the invoking tool.
func EnrichMetrics(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
	inv, ok := InvocationFrom(ctx)
	if !ok {
		return base
	}
	return inv.EnrichAttributes(base)
}
