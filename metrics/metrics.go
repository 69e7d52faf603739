// Copyright 2025 The vecexpr Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label constants.
const (
	LblType   = "type"
	LblResult = "result"
)

// Metrics.
var (
	RowsEvaluatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vecexpr",
			Subsystem: "runtime",
			Name:      "rows_evaluated_total",
			Help:      "Counter of rows processed by per-row evaluation.",
		})

	RowErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vecexpr",
			Subsystem: "runtime",
			Name:      "row_errors_total",
			Help:      "Counter of user-level failures recorded per row.",
		})

	ScratchBorrowCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecexpr",
			Subsystem: "runtime",
			Name:      "scratch_borrows_total",
			Help:      "Counter of scratch object borrows by kind and pool result.",
		}, []string{LblType, LblResult})

	BatchEvalDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vecexpr",
			Subsystem: "runtime",
			Name:      "batch_eval_duration_seconds",
			Help:      "Bucketed histogram of wall time spent evaluating one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 24), // 10us ~ 167s
		})
)

// RegisterMetrics registers all metrics with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(RowsEvaluatedCounter)
	prometheus.MustRegister(RowErrorCounter)
	prometheus.MustRegister(ScratchBorrowCounter)
	prometheus.MustRegister(BatchEvalDurationHistogram)
}
