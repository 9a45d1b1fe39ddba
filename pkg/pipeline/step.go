package pipeline

import "github.com/askiada/pipeline-publish/pkg/pipeline/model"

// NewScriptStep creates a step running scriptName from its source directory.
//
// There is no option to enable reuse: a script step always runs again on every
// submission.
func NewScriptStep(name, scriptName string, opts ...StepOption) model.Step {
	step := model.Step{
		Name:            name,
		ScriptName:      scriptName,
		SourceDirectory: ".",
	}
	for _, opt := range opts {
		opt(&step)
	}

	step.AllowReuse = false

	return step
}
