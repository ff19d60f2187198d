/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chainguard.dev/codetools/audit"
	"chainguard.dev/codetools/toolerr"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Recorder persists finished invocations.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Registry holds the tools in declaration order.
type Registry struct {
	tools    []*Tool
	byID     map[string]*Tool
	recorder Recorder
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRecorder writes an audit entry for every invocation.
func WithRecorder(r Recorder) RegistryOption {
	return func(reg *Registry) { reg.recorder = r }
}

// NewRegistry indexes tools by id. Duplicate ids are an error.
func NewRegistry(tools []*Tool, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %q", t.ID)
		}
		r.byID[t.ID] = t
		r.tools = append(r.tools, t)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Tools returns the registered tools in declaration order.
func (r *Registry) Tools() []*Tool {
	return append([]*Tool(nil), r.tools...)
}

// Lookup returns the tool with the given id.
func (r *Registry) Lookup(id string) (*Tool, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Invoke runs tool id on raw input. The call gets a fresh invocation id
// carried in ctx, a span, a logger, metrics and, when configured, an audit
// entry.
func (r *Registry) Invoke(ctx context.Context, id string, raw json.RawMessage) (*Envelope, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, toolerr.Invalid("tool", "unknown tool %q", id)
	}

	inv := Invocation{ID: uuid.NewString(), Tool: id}
	ctx = WithInvocation(ctx, inv)
	log := clog.FromContext(ctx).With("invocation", inv.ID, "tool", id)
	ctx = clog.WithLogger(ctx, log)

	tr := otel.Tracer("chainguard.dev/codetools/tools", oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "codetools.tool.invoke", oteltrace.WithAttributes(
		attribute.String("tool.id", id),
		attribute.String("invocation.id", inv.ID),
	))
	defer span.End()

	inflight := inflightGauge.WithLabelValues(id)
	inflight.Inc()
	defer inflight.Dec()

	start := time.Now()
	log.Info("Invoking tool")
	env, err := t.run(ctx, raw)
	elapsed := time.Since(start)

	outcome := toolerr.Kind(err)
	invocationCounter.WithLabelValues(id, outcome).Inc()
	invocationDuration.WithLabelValues(id).Observe(elapsed.Seconds())
	span.SetAttributes(attribute.String("outcome", outcome))

	entry := audit.Entry{ID: inv.ID, Tool: id, StartedAt: start, Duration: elapsed, Outcome: outcome}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("Tool failed", "outcome", outcome, "error", err, "duration", elapsed)
		entry.Error = err.Error()
	} else {
		span.SetStatus(codes.Ok, "")
		log.Info("Tool finished", "duration", elapsed)
	}

	if r.recorder != nil {
		if rerr := r.recorder.Record(context.WithoutCancel(ctx), entry); rerr != nil {
			log.Error("Failed to record invocation", "error", rerr)
		}
	}
	return env, err
}
