package drawer

import (
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m     measure.Measure
	steps []model.Step
}

func (pd *pipelineDrawer) New(string) error {
	return nil
}

func (pd *pipelineDrawer) PrepareParameter(param *model.PathParameter) error {
	err := pd.AddParameter(param.Name, param.DefaultValue().String())
	if err != nil {
		return errors.Wrapf(err, "unable to add parameter %s to drawer", param.Name)
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(step *model.Step) error {
	err := pd.AddStep(step.Name, step.ComputeTarget)
	if err != nil {
		return errors.Wrapf(err, "unable to add step %s to drawer", step.Name)
	}

	pd.steps = append(pd.steps, *step)

	return nil
}

// Finish links the steps once all of them are known, since a step may bind the output
// of a step added after it.
func (pd *pipelineDrawer) Finish() error {
	for _, step := range pd.steps {
		for _, in := range step.Inputs {
			producer := in.Parameter
			if producer != "" {
				producer = parameterVertex(producer)
			} else {
				producer = in.FromStep
			}

			err := pd.AddLink(producer, step.Name, string(in.Mode))
			if err != nil {
				return errors.Wrapf(err, "unable to link input %s of step %s", in.Name, step.Name)
			}
		}
	}

	if pd.m != nil {
		total := pd.m.AddMetric(measure.TotalMetric).GetTotalDuration()
		if total > 0 {
			err := pd.SetTotalTime(total)
			if err != nil {
				return errors.Wrap(err, "unable to set total time")
			}
		}

		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline with drawer once it is finished. When m is set,
// the recorded control plane calls are drawn as well.
func PipelineDrawer(drawer Drawer, m measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: m}
}
