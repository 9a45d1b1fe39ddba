package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu          sync.Mutex
	elapsed     time.Duration
	calls       int64
	errors      int64
	EndDuration time.Duration
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.calls++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) AddError() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.errors++
}

func (mt *DefaultMetric) SetTotalDuration(total time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = total
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.calls == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.calls)))
}

func (mt *DefaultMetric) Calls() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.calls
}

func (mt *DefaultMetric) Errors() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.errors
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(10 * time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
