package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters and gauges for the planning wizard.
type WizardMetrics struct {
	commandsTotal      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	persistenceErrors  *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	plansSubmitted     *prometheus.CounterVec
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "wizard",
			Name:      "commands_total",
			Help:      "Wizard commands dispatched, by outcome",
		}, []string{"command", "outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "wizard",
			Name:      "validation_failures_total",
			Help:      "Validation failures by kind",
		}, []string{"kind"}),
		persistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "wizard",
			Name:      "persistence_errors_total",
			Help:      "Draft storage errors by kind",
		}, []string{"kind"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "planner",
			Subsystem: "wizard",
			Name:      "active_sessions",
			Help:      "Wizard sessions held in memory",
		}),
		plansSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "wizard",
			Name:      "plans_submitted_total",
			Help:      "Itinerary requests handed to generation",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.commandsTotal, m.validationFailures, m.persistenceErrors, m.activeSessions, m.plansSubmitted)
	return m
}

func (m *WizardMetrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *WizardMetrics) ObserveValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

func (m *WizardMetrics) ObservePersistenceError(kind string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(kind).Inc()
}

func (m *WizardMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *WizardMetrics) ObservePlanSubmitted(status string) {
	if m == nil {
		return
	}
	m.plansSubmitted.WithLabelValues(status).Inc()
}
