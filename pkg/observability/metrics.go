package observability

import (
	"context"
	"errors"

	"github.com/aretw0/redscript/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts registrations, fallbacks and failures per script.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	Failures      *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redscript_registrations_total",
				Help: "Scripts registered with SCRIPT LOAD",
			},
			[]string{"script"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redscript_fallbacks_total",
				Help: "Calls resent with the full body after NOSCRIPT",
			},
			[]string{"script"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redscript_failures_total",
				Help: "Failed script calls, by whether the error carried a script position",
			},
			[]string{"script", "kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.Registrations, m.Fallbacks, m.Failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns runner hooks that feed the counters.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnRegister: func(_ context.Context, e *domain.ScriptEvent) {
			m.Registrations.WithLabelValues(e.Script).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.ScriptEvent) {
			m.Fallbacks.WithLabelValues(e.Script).Inc()
		},
		OnFailure: func(_ context.Context, e *domain.ScriptEvent) {
			m.Failures.WithLabelValues(e.Script, failureKind(e.Err)).Inc()
		},
	}
}

func failureKind(err error) string {
	var serr *domain.ScriptError
	if errors.As(err, &serr) {
		return "script"
	}
	return "other"
}
