// Package metrics exposes fleetpay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PayoutRuns counts materialization runs per outcome (ok, empty, error).
	PayoutRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetpay_payout_runs_total",
		Help: "Payout materialization runs by outcome.",
	}, []string{"outcome"})

	// PayoutsCreated counts payout records created by materialization.
	PayoutsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetpay_payouts_created_total",
		Help: "Payout records created.",
	})

	// PayoutRunDuration observes materialization latency.
	PayoutRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetpay_payout_run_duration_seconds",
		Help:    "Payout materialization duration.",
		Buckets: prometheus.DefBuckets,
	})

	// AppraisalRequests counts pricing lookups per outcome
	// (ok, cache_hit, error).
	AppraisalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetpay_appraisal_requests_total",
		Help: "Appraisal requests by outcome.",
	}, []string{"outcome"})

	// VerificationResults counts payment verification outcomes
	// (verified, pending).
	VerificationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetpay_verification_results_total",
		Help: "Payment verification results.",
	}, []string{"result"})
)
