package measure

import "time"

// Measure records how long named operations take.
type Measure interface {
	// AddMetric returns the metric for name, creating it on first use.
	AddMetric(name string) Metric
	// AllMetrics returns every metric keyed by name.
	AllMetrics() map[string]Metric
	// Names returns metric names in the order they were first added.
	Names() []string
}

type Metric interface {
	AddDuration(elapsed time.Duration)
	AddError()
	AVGDuration() time.Duration
	SetTotalDuration(total time.Duration)
	GetTotalDuration() time.Duration
	Calls() int64
	Errors() int64
}
