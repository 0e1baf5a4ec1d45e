// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DealAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridgegen_deal_attempts_total",
		Help: "Random deals drawn by the dealer, accepted or not",
	})

	DealsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridgegen_deals_accepted_total",
		Help: "Random deals that satisfied the active constraints",
	})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgegen_generations_total",
		Help: "Generation requests by outcome (ok, budget, generic)",
	}, []string{"outcome"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridgegen_generation_duration_seconds",
		Help:    "Wall time of generation requests",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"shape"})

	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridgegen_sessions",
		Help: "Open board sessions",
	})
)
