/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package completiontest provides a scripted completion.Interface.
package completiontest

import (
	"context"
	"fmt"
	"sync"

	"chainguard.dev/codetools/llm/completion"
)

// Reply is one scripted outcome.
type Reply struct {
	Text string
	Err  error
}

// Fake replays Replies in order and records every request.
type Fake struct {
	ModelName string
	Replies   []Reply

	mu       sync.Mutex
	requests []completion.Request
}

var _ completion.Interface = (*Fake)(nil)

// New returns a Fake that answers with texts in order.
func New(texts ...string) *Fake {
	f := &Fake{ModelName: "fake-model"}
	for _, t := range texts {
		f.Replies = append(f.Replies, Reply{Text: t})
	}
	return f
}

// Model implements completion.Interface.
func (f *Fake) Model() string { return f.ModelName }

// Complete implements completion.Interface.
func (f *Fake) Complete(_ context.Context, req completion.Request) (*completion.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.requests)
	f.requests = append(f.requests, req)
	if n >= len(f.Replies) {
		return nil, fmt.Errorf("unexpected completion request #%d", n+1)
	}
	r := f.Replies[n]
	if r.Err != nil {
		return nil, r.Err
	}
	return &completion.Response{Text: r.Text, Model: f.ModelName}, nil
}

// Requests returns the requests seen so far.
func (f *Fake) Requests() []completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Request(nil), f.requests...)
}
