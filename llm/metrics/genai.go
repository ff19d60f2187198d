/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records OpenTelemetry metrics for completion requests.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope shared by every completion backend.
const MeterName = "chainguard.dev/codetools/llm"

// AttributeEnricher adds contextual attributes (such as the invoking tool)
// to the base attributes of a measurement.
type AttributeEnricher func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue

// GenAI holds the token and request counters. A counter that fails to
// register is replaced with a no-op so metrics never fail a request.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	requests         metric.Int64Counter
	enrich           AttributeEnricher
}

// NewGenAI registers the counters on the global meter provider.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metric disabled", "error", err, "counter", name)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		requests:         counter("genai.requests", "The number of completion requests by outcome", "{requests}"),
	}
}

// SetAttributeEnricher installs e on every subsequent measurement.
func (m *GenAI) SetAttributeEnricher(e AttributeEnricher) {
	m.enrich = e
}

func (m *GenAI) attrs(ctx context.Context, model string, extra ...attribute.KeyValue) metric.MeasurementOption {
	base := []attribute.KeyValue{attribute.String("model", model)}
	if m.enrich != nil {
		base = m.enrich(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens adds prompt and completion token usage for model.
func (m *GenAI) RecordTokens(ctx context.Context, model string, prompt, completion int64) {
	opt := m.attrs(ctx, model)
	m.promptTokens.Add(ctx, prompt, opt)
	m.completionTokens.Add(ctx, completion, opt)
}

// RecordRequest counts one completion request with its outcome
// ("ok" or an error kind).
func (m *GenAI) RecordRequest(ctx context.Context, model, outcome string) {
	m.requests.Add(ctx, 1, m.attrs(ctx, model, attribute.String("outcome", outcome)))
}
