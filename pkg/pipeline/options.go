package pipeline

import "github.com/askiada/pipeline-publish/pkg/pipeline/model"

type PipelineOption func(p *Pipeline)

func PipelineDescription(description string) PipelineOption {
	return func(p *Pipeline) {
		p.description = description
	}
}

func PipelineContinueOnStepFailure(continueOnFailure bool) PipelineOption {
	return func(p *Pipeline) {
		p.continueOnStepFailure = continueOnFailure
	}
}

// PipelineHooks registers options that observe the pipeline as it is built.
func PipelineHooks(hooks ...model.PipelineOption) PipelineOption {
	return func(p *Pipeline) {
		p.hooks = append(p.hooks, hooks...)
	}
}

type StepOption func(s *model.Step)

func StepSource(sourceDirectory string) StepOption {
	return func(s *model.Step) {
		s.SourceDirectory = sourceDirectory
	}
}

func StepArguments(args ...model.Argument) StepOption {
	return func(s *model.Step) {
		s.Arguments = append(s.Arguments, args...)
	}
}

func StepInputs(inputs ...model.InputBinding) StepOption {
	return func(s *model.Step) {
		s.Inputs = append(s.Inputs, inputs...)
	}
}

func StepOutputs(outputs ...model.OutputBinding) StepOption {
	return func(s *model.Step) {
		s.Outputs = append(s.Outputs, outputs...)
	}
}

func StepRunConfig(runConfig model.RunConfig) StepOption {
	return func(s *model.Step) {
		s.RunConfig = runConfig
	}
}

func StepComputeTarget(target string) StepOption {
	return func(s *model.Step) {
		s.ComputeTarget = target
	}
}

func StepSnapshot(snapshotID string) StepOption {
	return func(s *model.Step) {
		s.SnapshotID = snapshotID
	}
}
