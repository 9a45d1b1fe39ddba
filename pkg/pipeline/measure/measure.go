package measure

import (
	"sync"
	"time"
)

type DefaultMeasure struct {
	mu      sync.Mutex
	metrics map[string]Metric
	names   []string
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		metrics: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.metrics[name]; ok {
		return mt
	}

	mt := &DefaultMetric{}
	m.metrics[name] = mt
	m.names = append(m.names, name)

	return mt
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.metrics))
	for name, mt := range m.metrics {
		all[name] = mt
	}

	return all
}

func (m *DefaultMeasure) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.names))
	copy(names, m.names)

	return names
}

// Observe records one call of name that started at start and failed when err is set.
func Observe(m Measure, name string, start time.Time, err error) {
	if m == nil {
		return
	}

	mt := m.AddMetric(name)
	mt.AddDuration(time.Since(start))
	if err != nil {
		mt.AddError()
	}
}

var _ Measure = (*DefaultMeasure)(nil)
