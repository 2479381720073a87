package audit

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"blogmetrics/internal/gate"
)

func TestRecord_CountsDecisions(t *testing.T) {
	InitMetrics()
	l := NewLogger("preview")

	before := testutil.ToFloat64(decisionsTotal.WithLabelValues("analytics", "allowed", "none"))
	l.Record(Entry{Route: "analytics", ClientIP: "127.0.0.1", Outcome: OutcomeAllowed, Reason: gate.ReasonNone})
	after := testutil.ToFloat64(decisionsTotal.WithLabelValues("analytics", "allowed", "none"))

	if after != before+1 {
		t.Fatalf("expected decision counter to advance by 1, got %v -> %v", before, after)
	}
}

func TestRecord_EnvironmentDenialEscalatesToCritical(t *testing.T) {
	InitMetrics()
	l := NewLogger("staging")

	before := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "gate_denial"))
	l.Record(Entry{Route: "analytics", Outcome: OutcomeDenied, Reason: gate.ReasonEnvironmentBlocked})
	after := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "gate_denial"))

	if after != before+1 {
		t.Fatal("environment denial should raise a critical alert")
	}
}

func TestRecord_OrdinaryDenialIsWarning(t *testing.T) {
	InitMetrics()
	l := NewLogger("preview")

	warnBefore := testutil.ToFloat64(alertsTotal.WithLabelValues("warning", "gate_denial"))
	critBefore := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "gate_denial"))
	l.Record(Entry{Route: "analytics", Outcome: OutcomeDenied, Reason: gate.ReasonInvalidCredential})

	if got := testutil.ToFloat64(alertsTotal.WithLabelValues("warning", "gate_denial")); got != warnBefore+1 {
		t.Fatal("credential denial should raise a warning alert")
	}
	if got := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "gate_denial")); got != critBefore {
		t.Fatal("credential denial must not be critical")
	}
}

func TestRecord_ProductionTrafficAlwaysAlerts(t *testing.T) {
	InitMetrics()
	l := NewLogger("production")

	before := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "production_exposure"))
	// Even an allowed outcome alerts: the request should never have
	// reached the gateway in production.
	l.Record(Entry{Route: "analytics", Outcome: OutcomeAllowed, Reason: gate.ReasonNone})
	after := testutil.ToFloat64(alertsTotal.WithLabelValues("critical", "production_exposure"))

	if after != before+1 {
		t.Fatal("any production request must raise the exposure alert")
	}
}
