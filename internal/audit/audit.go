// Package audit records every access decision made by the gate pipeline
// and escalates anomalous patterns to the alerting channel (prometheus
// counters scraped by the monitoring stack).
package audit

import (
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"blogmetrics/internal/gate"
)

var (
	decisionsTotal *prometheus.CounterVec
	alertsTotal    *prometheus.CounterVec

	metricsOnce sync.Once
)

// InitMetrics registers the audit counters with the default registry.
func InitMetrics() {
	metricsOnce.Do(func() {
		decisionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogmetrics",
				Name:      "gate_decisions_total",
				Help:      "Access decisions made by the analytics gate pipeline.",
			},
			[]string{"route", "outcome", "reason"},
		)
		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blogmetrics",
				Name:      "alerts_total",
				Help:      "Escalated audit events by severity and kind.",
			},
			[]string{"severity", "kind"},
		)
		prometheus.MustRegister(decisionsTotal, alertsTotal)
	})
}

type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
)

// Entry describes one access decision. The raw credential never appears
// here; callers only hand over request metadata.
type Entry struct {
	Route     string
	ClientIP  string
	UserAgent string
	Query     string
	Outcome   Outcome
	Reason    gate.Reason
}

// Logger emits one structured line per decision and raises monitoring
// events for denials. It is side-effecting only and never returns an
// error, so the response path cannot block on it.
type Logger struct {
	env string
}

func NewLogger(env string) *Logger {
	return &Logger{env: env}
}

func (l *Logger) Record(e Entry) {
	log.Printf("audit route=%s outcome=%s reason=%s ip=%s env=%s ua=%q query=%q",
		e.Route, e.Outcome, e.Reason, e.ClientIP, l.env, e.UserAgent, e.Query)
	if decisionsTotal != nil {
		decisionsTotal.WithLabelValues(e.Route, string(e.Outcome), e.Reason.String()).Inc()
	}

	if e.Outcome == OutcomeDenied {
		// A denial caused by the environment check means the route is
		// deployed somewhere it should not exist at all.
		severity := "warning"
		if e.Reason == gate.ReasonEnvironmentBlocked {
			severity = "critical"
		}
		l.alert(severity, "gate_denial", e)
	}

	// Reaching this gateway at all while in production means the access
	// gate was bypassed upstream. Security incident, not a normal denial.
	if l.env == "production" {
		l.alert("critical", "production_exposure", e)
	}
}

func (l *Logger) alert(severity, kind string, e Entry) {
	log.Printf("ALERT severity=%s kind=%s route=%s ip=%s env=%s reason=%s",
		severity, kind, e.Route, e.ClientIP, l.env, e.Reason)
	if alertsTotal != nil {
		alertsTotal.WithLabelValues(severity, kind).Inc()
	}
}
