package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Gate struct {
	RateLimited      *prometheus.CounterVec
	LimiterFailOpen  prometheus.Counter
	CreditConsumed   prometheus.Counter
	CreditExhausted  prometheus.Counter
	LedgerFailClosed prometheus.Counter
}

func NewGate(reg prometheus.Registerer) *Gate {
	m := &Gate{
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_gate_rate_limited_total",
				Help: "Total requests rejected by the sliding-window rate limiter",
			},
			[]string{"class"},
		),
		LimiterFailOpen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_gate_limiter_fail_open_total",
				Help: "Total rate checks allowed because the counter store was unreachable",
			},
		),
		CreditConsumed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_gate_credit_consumed_total",
				Help: "Total interview credits spent",
			},
		),
		CreditExhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_gate_credit_exhausted_total",
				Help: "Total consume attempts refused on a zero balance",
			},
		),
		LedgerFailClosed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_gate_ledger_fail_closed_total",
				Help: "Total credit operations refused because the ledger store was unreachable",
			},
		),
	}

	reg.MustRegister(
		m.RateLimited,
		m.LimiterFailOpen,
		m.CreditConsumed,
		m.CreditExhausted,
		m.LedgerFailClosed,
	)
	return m
}
