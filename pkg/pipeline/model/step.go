package model

// Environment is a registered execution environment.
type Environment struct {
	Name          string `json:"name" yaml:"name"`
	Version       string `json:"version" yaml:"version"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	PythonVersion string `json:"pythonVersion,omitempty" yaml:"python_version,omitempty"`
}

// RunConfig is the runtime configuration of a step.
type RunConfig struct {
	Environment          *Environment      `json:"environment" yaml:"environment"`
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty" yaml:"environment_variables,omitempty"`
}

// Step is an execution unit of a pipeline.
//
// AllowReuse=false forces the step to run on every submission even when the control
// plane holds cached outputs of an identical prior run.
type Step struct {
	Name            string          `json:"name" yaml:"name"`
	SourceDirectory string          `json:"sourceDirectory" yaml:"source_directory"`
	ScriptName      string          `json:"scriptName" yaml:"script_name"`
	Arguments       []Argument      `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Inputs          []InputBinding  `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs         []OutputBinding `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	RunConfig       RunConfig       `json:"runConfig" yaml:"run_config"`
	ComputeTarget   string          `json:"computeTarget" yaml:"compute_target"`
	AllowReuse      bool            `json:"allowReuse" yaml:"allow_reuse"`
	SnapshotID      string          `json:"snapshotId,omitempty" yaml:"snapshot_id,omitempty"`
}

// Input returns the input with the given name.
func (s *Step) Input(name string) (InputBinding, bool) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in, true
		}
	}

	return InputBinding{}, false
}

// HasOutput reports whether the step declares the named output.
func (s *Step) HasOutput(name string) bool {
	for _, out := range s.Outputs {
		if out.Name == name {
			return true
		}
	}

	return false
}
