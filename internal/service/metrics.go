package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"datanexus/internal/model"
)

const (
	outcomeCommitted = "committed"
	outcomePending   = "pending"
	outcomeFailed    = "failed"
)

// PipelineMetrics counts terminal registration outcomes and reconciliation
// results. A nil *PipelineMetrics is a valid no-op.
type PipelineMetrics struct {
	registrations   *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_registrations_total",
				Help: "Registrations by terminal phase",
			},
			[]string{"phase"},
		),
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_reconciliations_total",
				Help: "Orphan reconciliation attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.registrations); err != nil {
		return nil, err
	}
	if err := reg.Register(m.reconciliations); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) RegistrationFinished(phase model.Phase) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(string(phase)).Inc()
}

func (m *PipelineMetrics) ReconciliationFinished(outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
}
