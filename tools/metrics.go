/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetools_tool_invocations_total",
			Help: "Total number of tool invocations by outcome",
		},
		[]string{"tool", "outcome"},
	)

	invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codetools_tool_duration_seconds",
			Help:    "Tool invocation latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"tool"},
	)

	inflightGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "codetools_tool_inflight",
			Help: "Tool invocations currently running",
		},
		[]string{"tool"},
	)
)
