package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWizardMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWizardMetrics(reg)

	m.ObserveCommand("next", "ok")
	m.ObserveCommand("next", "ok")
	m.ObserveCommand("next", "invalid")
	m.ObserveValidationFailure("MissingField")
	m.ObservePersistenceError("write")
	m.SetActiveSessions(3)
	m.ObservePlanSubmitted("SUBMITTED")

	if got := testutil.ToFloat64(m.commandsTotal.WithLabelValues("next", "ok")); got != 2 {
		t.Errorf("expected 2 ok next commands, got %v", got)
	}
	if got := testutil.ToFloat64(m.commandsTotal.WithLabelValues("next", "invalid")); got != 1 {
		t.Errorf("expected 1 invalid next command, got %v", got)
	}
	if got := testutil.ToFloat64(m.validationFailures.WithLabelValues("MissingField")); got != 1 {
		t.Errorf("expected 1 validation failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 3 {
		t.Errorf("expected 3 active sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.plansSubmitted.WithLabelValues("SUBMITTED")); got != 1 {
		t.Errorf("expected 1 submitted plan, got %v", got)
	}
}

func TestWizardMetrics_NilSafe(t *testing.T) {
	var m *WizardMetrics
	m.ObserveCommand("next", "ok")
	m.ObserveValidationFailure("MissingField")
	m.ObservePersistenceError("write")
	m.SetActiveSessions(1)
	m.ObservePlanSubmitted("SUBMITTED")
}
