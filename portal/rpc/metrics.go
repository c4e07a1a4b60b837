package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contractResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "contract_resolutions_total",
		Help:      "Hook contract lookups, labelled by whether the default chain was used instead",
	}, []string{"fallback"})

	strategySelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "strategy_selections_total",
		Help:      "Strategy selection updates by outcome",
	}, []string{"outcome"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "submissions_total",
		Help:      "Transfer submissions by outcome",
	}, []string{"outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "portal",
		Name:      "strategy_sessions",
		Help:      "Open strategy selection sessions",
	})
)

const (
	outcomeAccepted   = "accepted"
	outcomeRejected   = "rejected"
	outcomeDispatched = "dispatched"
	outcomeFailed     = "failed"
)
