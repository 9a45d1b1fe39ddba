package pipeline_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/pkg/pipeline"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

func validationIssues(t *testing.T, err error) []string {
	t.Helper()

	var verr *pipeline.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)

	return verr.Issues
}

func TestValidateEmptyPipeline(t *testing.T) {
	t.Parallel()

	err := createPipeline(t).Validate()
	assert.Equal(t, []string{"pipeline has no steps"}, validationIssues(t, err))
}

func TestValidateStepFields(t *testing.T) {
	t.Parallel()

	pipe := createPipeline(t)
	require.NoError(t, pipe.AddStep(pipeline.NewScriptStep("train", "")))

	assert.Equal(t, []string{
		`step "train": script name must be set`,
		`step "train": compute target must be set`,
		`step "train": run configuration has no environment`,
	}, validationIssues(t, pipe.Validate()))
}

func TestValidateInputs(t *testing.T) {
	t.Parallel()

	pipe := createPipeline(t)
	require.NoError(t, pipe.AddParameter(createParameter(t, "data")))
	require.NoError(t, pipe.AddStep(createStep(t, "prep",
		pipeline.StepOutputs(model.OutputBinding{Name: "features"}),
	)))
	require.NoError(t, pipe.AddStep(createStep(t, "train",
		pipeline.StepInputs(
			model.InputBinding{Name: "data", Parameter: "data"},
			model.InputBinding{Name: "data", Parameter: "data"},
			model.InputBinding{Name: "both", Parameter: "data", FromStep: "prep", Output: "features"},
			model.InputBinding{Name: "undeclared", Parameter: "missing"},
			model.InputBinding{Name: "ghost", FromStep: "nowhere", Output: "x"},
			model.InputBinding{Name: "wrong output", FromStep: "prep", Output: "labels"},
			model.InputBinding{Name: "unbound"},
		),
		pipeline.StepArguments(model.Argument{Input: "nope"}),
	)))

	assert.Equal(t, []string{
		`step "train": input "data" is declared twice`,
		`step "train": input "both" is bound to both a parameter and a step output`,
		`step "train": input "undeclared" references undeclared parameter "missing"`,
		`step "train": input "ghost" references unknown step "nowhere"`,
		`step "train": input "wrong output" references undeclared output "labels" of step "prep"`,
		`step "train": input "unbound" is not bound`,
		`step "train": argument references undeclared input "nope"`,
	}, validationIssues(t, pipe.Validate()))
}

func TestValidateCycle(t *testing.T) {
	t.Parallel()

	pipe := createPipeline(t)
	require.NoError(t, pipe.AddStep(createStep(t, "a",
		pipeline.StepInputs(model.StepOutputInput("in", "b", "out", model.DownloadBinding)),
		pipeline.StepOutputs(model.OutputBinding{Name: "out"}),
	)))
	require.NoError(t, pipe.AddStep(createStep(t, "b",
		pipeline.StepInputs(model.StepOutputInput("in", "a", "out", model.DownloadBinding)),
		pipeline.StepOutputs(model.OutputBinding{Name: "out"}),
	)))

	assert.Equal(t, []string{
		`step "b": input "in" from step "a" creates a cycle`,
	}, validationIssues(t, pipe.Validate()))
}

func TestValidateSelfReference(t *testing.T) {
	t.Parallel()

	pipe := createPipeline(t)
	require.NoError(t, pipe.AddStep(createStep(t, "a",
		pipeline.StepInputs(model.StepOutputInput("in", "a", "out", model.DownloadBinding)),
		pipeline.StepOutputs(model.OutputBinding{Name: "out"}),
	)))

	assert.Equal(t, []string{
		`step "a": input "in" from step "a" creates a cycle`,
	}, validationIssues(t, pipe.Validate()))
}

func TestValidateValid(t *testing.T) {
	t.Parallel()

	pipe := createPipeline(t)
	param := createParameter(t, "training_data_path")
	require.NoError(t, pipe.AddParameter(param))

	input := model.ParameterInput(param, model.DownloadBinding)
	require.NoError(t, pipe.AddStep(createStep(t, "train",
		pipeline.StepArguments(model.Literal("--data-path"), model.InputArg(input)),
		pipeline.StepInputs(input),
	)))

	require.NoError(t, pipe.Validate())
	// Validation is repeatable.
	require.NoError(t, pipe.Validate())
}
