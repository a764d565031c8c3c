// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequiredFieldViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "required_field_violations_total",
			Help: "Create or write calls rejected for missing required fields.",
		}, []string{"model", "op"})

	RequiredFieldChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "required_field_checks_total",
			Help: "Create or write calls inspected by the required-field hooks.",
		}, []string{"op", "outcome"})

	RuleSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "required_field_rule_saves_total",
			Help: "Required-field rule saves by operation and outcome.",
		}, []string{"op", "outcome"})
)

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
)

func init() {
	prometheus.MustRegister(
		RequiredFieldViolationsTotal,
		RequiredFieldChecksTotal,
		RuleSavesTotal,
	)
}
