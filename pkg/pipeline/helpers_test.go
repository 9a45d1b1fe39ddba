package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/pkg/pipeline"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

var testEnv = &model.Environment{Name: "training-env", Version: "3"}

func createParameter(t *testing.T, name string) *model.PathParameter {
	t.Helper()

	param, err := model.NewPathParameter(name, &model.Datastore{Name: "workspaceblobstore"}, "training_data/")
	require.NoError(t, err)

	return param
}

func createStep(t *testing.T, name string, opts ...pipeline.StepOption) model.Step {
	t.Helper()

	base := []pipeline.StepOption{
		pipeline.StepRunConfig(model.RunConfig{Environment: testEnv}),
		pipeline.StepComputeTarget("cpu-cluster"),
	}

	return pipeline.NewScriptStep(name, name+".py", append(base, opts...)...)
}

func createPipeline(t *testing.T, opts ...pipeline.PipelineOption) *pipeline.Pipeline {
	t.Helper()

	pipe, err := pipeline.New("test pipeline", opts...)
	require.NoError(t, err)

	return pipe
}

func stepNames(steps []model.Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}

	return names
}

// recordingOption records the hooks it receives.
type recordingOption struct {
	calls []string
	err   error
}

func (r *recordingOption) New(name string) error {
	r.calls = append(r.calls, "new "+name)
	return r.err
}

func (r *recordingOption) PrepareParameter(param *model.PathParameter) error {
	r.calls = append(r.calls, "parameter "+param.Name)
	return r.err
}

func (r *recordingOption) PrepareStep(step *model.Step) error {
	r.calls = append(r.calls, "step "+step.Name)
	return r.err
}

func (r *recordingOption) Finish() error {
	r.calls = append(r.calls, "finish")
	return r.err
}
