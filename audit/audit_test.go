/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	first := Entry{ID: "a", Tool: "get-github-issues", StartedAt: base, Duration: 120 * time.Millisecond, Outcome: "ok"}
	second := Entry{ID: "b", Tool: "write-code", StartedAt: base.Add(time.Minute), Duration: 3 * time.Second, Outcome: "configuration", Error: "COMPLETION_API_KEY environment variable is required for code generation"}
	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	if diff := cmp.Diff([]Entry{second, first}, got); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}

	got, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Error(t, s.Record(ctx, first), "ids are unique")
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Entry{ID: "x", Tool: "t", StartedAt: time.Now(), Outcome: "ok"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	got, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
