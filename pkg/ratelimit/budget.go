// Package ratelimit implements the request budget bounding in-flight
// Terraform Cloud requests and the interpretation of the API's rate-limit
// response metadata.
package ratelimit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for budget usage.
var (
	tfcRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tfc_requests_in_flight",
		Help: "Number of requests currently holding a budget permit",
	})

	tfcBudgetAcquiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tfc_budget_acquires_total",
		Help: "Total number of budget permits acquired",
	})
)

// Budget is a counting permit pool of fixed capacity. One permit covers one
// outbound request: it is acquired before the request is issued and returned
// on the request's terminal outcome, or right before a rate-limit sleep and
// re-acquired after. The budget lives for one collection run and is never
// persisted.
type Budget struct {
	sem      *semaphore.Weighted
	capacity int
}

// NewBudget creates a budget with the given permit capacity. A capacity
// below one is raised to one so the pool can always make progress.
func NewBudget(capacity int) *Budget {
	if capacity < 1 {
		capacity = 1
	}

	return &Budget{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Capacity returns the fixed permit capacity.
func (b *Budget) Capacity() int {
	return b.capacity
}

// Acquire blocks until a permit is available or the context is done.
func (b *Budget) Acquire(ctx context.Context) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	tfcRequestsInFlight.Inc()
	tfcBudgetAcquiresTotal.Inc()
	return nil
}

// Release returns a permit acquired with Acquire.
func (b *Budget) Release() {
	tfcRequestsInFlight.Dec()
	b.sem.Release(1)
}
