// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretsplit.
//
// go-secretsplit is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for split and combine
// operations. The CLI is a short-lived batch process, so instead of serving
// /metrics it writes the registry to a node_exporter textfile.
package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics
	Namespace = "secretsplit"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit   = "split"
	OpCombine = "combine"
)

var (
	// Registry holds every metric in this package. It is separate from the
	// default registry so textfile output contains no Go runtime series.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// OperationsTotal counts split and combine calls by outcome.
	OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of split and combine operations by status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks wall time of split and combine in seconds.
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of split and combine operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal counts failures by error kind (invalid_parameters,
	// malformed_share, inconsistent_shares, authentication_failure, ...).
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// PayloadBytes records plaintext payload sizes.
	PayloadBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "payload_bytes",
			Help:      "Size of split or reconstructed payloads in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{LabelOperation},
	)

	// SharesTotal counts shares produced by split and consumed by combine.
	SharesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_total",
			Help:      "Number of shares produced or consumed",
		},
		[]string{LabelOperation},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records the outcome and duration of one operation.
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError counts a failure of the given kind.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordPayload records a payload size and the number of shares involved.
func RecordPayload(operation string, payloadBytes, shares int) {
	if !enabled.Load() {
		return
	}
	PayloadBytes.WithLabelValues(operation).Observe(float64(payloadBytes))
	SharesTotal.WithLabelValues(operation).Add(float64(shares))
}

// WriteTextfile writes all metrics to path in the Prometheus text format
// for the node_exporter textfile collector. The file is written to a
// temporary name and renamed, so the collector never reads a partial file.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Reset clears all recorded values.
func Reset() {
	OperationsTotal.Reset()
	OperationDuration.Reset()
	ErrorsTotal.Reset()
	PayloadBytes.Reset()
	SharesTotal.Reset()
}

// Enable turns recording on.
func Enable() {
	enabled.Store(true)
}

// Disable turns recording off; Record* calls become no-ops.
func Disable() {
	enabled.Store(false)
}

// IsEnabled reports whether recording is on.
func IsEnabled() bool {
	return enabled.Load()
}
