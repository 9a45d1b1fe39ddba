package measure

import (
	"time"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// TotalMetric is the name of the metric holding the time from pipeline creation to
// the end of the publish run.
const TotalMetric = "total"

type pipelineMeasure struct {
	Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New(string) error {
	pm.startTime = time.Now()
	pm.AddMetric(TotalMetric)

	return nil
}

func (pm *pipelineMeasure) PrepareParameter(*model.PathParameter) error {
	return nil
}

func (pm *pipelineMeasure) PrepareStep(*model.Step) error {
	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.AddMetric(TotalMetric).SetTotalDuration(round(time.Since(pm.startTime)))

	return nil
}

// PipelineMeasure records the total build and publish time of a pipeline in m.
func PipelineMeasure(m Measure) model.PipelineOption {
	return &pipelineMeasure{Measure: m}
}
