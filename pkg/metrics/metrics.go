// Package metrics provides the centralized Prometheus metrics registry for
// the Terraform Cloud collector. All metrics are defined in their respective
// packages (client, ratelimit) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the collector.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - tfc_requests_total{endpoint, status} (Counter): Total requests by endpoint path and HTTP status
//   - tfc_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint path
//   - tfc_rate_limit_waits_total (Counter): Rate-limit waits taken before retrying
//   - tfc_rate_limit_wait_seconds (Histogram): Advertised Retry-After wait durations
//
// Budget Metrics (pkg/ratelimit):
//   - tfc_requests_in_flight (Gauge): Requests currently holding a budget permit
//   - tfc_budget_acquires_total (Counter): Budget permits acquired, including retries
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   sum(rate(tfc_requests_total{status!~"2.."}[5m])) / sum(rate(tfc_requests_total[5m]))
//
//   # Budget Saturation
//   tfc_requests_in_flight
//
//   # Rate-Limit Pressure
//   rate(tfc_rate_limit_waits_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(tfc_request_duration_seconds_bucket[5m]))
