package measure

import (
	"sync"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

type DefaultMeasure struct {
	mu       sync.Mutex
	stages   map[string]Metric
	outcomes map[model.ResultKind]int64
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		stages:   make(map[string]Metric),
		outcomes: make(map[model.ResultKind]int64),
	}
}

// AddMetric returns the metric of the stage, creating it on first use.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.stages[name]; ok {
		return mt
	}
	mt := &DefaultMetric{
		transitions: make(map[string]int64),
	}
	m.stages[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stages[name]
}

// AllMetrics returns a snapshot of the stage metrics.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.stages))
	for name, mt := range m.stages {
		out[name] = mt
	}

	return out
}

func (m *DefaultMeasure) AddOutcome(kind model.ResultKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[kind]++
}

func (m *DefaultMeasure) Outcomes() map[model.ResultKind]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[model.ResultKind]int64, len(m.outcomes))
	for kind, n := range m.outcomes {
		out[kind] = n
	}

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
