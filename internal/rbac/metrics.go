package rbac

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts authorization decisions by outcome.
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the RBAC decision counter with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendora_authz_decisions_total",
		Help: "Authorization decisions by resource, action, outcome and reason.",
	}, []string{"resource", "action", "outcome", "reason"})
	reg.MustRegister(decisions)
	return &Metrics{decisions: decisions}
}

// ObserveDecision records one decision outcome.
func (m *Metrics) ObserveDecision(decision Decision) {
	if m == nil {
		return
	}
	outcome := "allow"
	if !decision.Allowed {
		outcome = "deny"
	}
	m.decisions.WithLabelValues(
		string(decision.Resource),
		string(decision.Action),
		outcome,
		string(decision.Reason),
	).Inc()
}
