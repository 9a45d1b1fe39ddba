package measure_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
)

func TestAddMetricReturnsSameMetric(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	first := m.AddMetric("publish")
	first.AddDuration(time.Second)

	assert.Same(t, first, m.AddMetric("publish"))
	assert.Equal(t, []string{"publish"}, m.Names())
}

func TestNamesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	for _, name := range []string{"b", "a", "b", "c"} {
		m.AddMetric(name)
	}

	assert.Equal(t, []string{"b", "a", "c"}, m.Names())
	assert.Len(t, m.AllMetrics(), 3)
}

func TestMetricAverage(t *testing.T) {
	t.Parallel()

	mt := measure.NewDefaultMeasure().AddMetric("call")
	assert.Equal(t, time.Duration(0), mt.AVGDuration())

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	mt.AddError()

	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, int64(2), mt.Calls())
	assert.Equal(t, int64(1), mt.Errors())

	mt.SetTotalDuration(time.Minute)
	assert.Equal(t, time.Minute, mt.GetTotalDuration())
}

func TestObserve(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	start := time.Now().Add(-5 * time.Millisecond)

	measure.Observe(m, "ok", start, nil)
	measure.Observe(m, "failed", start, assert.AnError)
	measure.Observe(nil, "ignored", start, nil)

	all := m.AllMetrics()
	require.Contains(t, all, "ok")
	assert.Equal(t, int64(0), all["ok"].Errors())
	assert.GreaterOrEqual(t, all["ok"].AVGDuration(), 5*time.Millisecond)
	assert.Equal(t, int64(1), all["failed"].Errors())
	assert.NotContains(t, all, "ignored")
}

func TestObserveConcurrent(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			measure.Observe(m, "lookup", time.Now(), nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.AddMetric("lookup").Calls())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	require.NoError(t, opt.New("pipe"))
	require.NoError(t, opt.PrepareParameter(nil))
	require.NoError(t, opt.PrepareStep(nil))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, opt.Finish())

	total := m.AddMetric(measure.TotalMetric).GetTotalDuration()
	assert.GreaterOrEqual(t, total, time.Millisecond)
	assert.Equal(t, int64(0), m.AddMetric(measure.TotalMetric).Calls())
}
