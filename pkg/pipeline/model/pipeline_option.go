package model

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New(pipelineName string) error
	// PrepareParameter runs when a parameter is declared.
	PrepareParameter(param *PathParameter) error
	// PrepareStep runs when a step is added to the pipeline.
	PrepareStep(step *Step) error
	// Finish runs once the pipeline has been published, or validated on a dry run.
	Finish() error
}
