package publisher

import (
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// Config names everything a run creates or looks up.
type Config struct {
	PipelineName        string `yaml:"pipeline_name"`
	PipelineDescription string `yaml:"pipeline_description"`

	EndpointName        string `yaml:"endpoint_name"`
	EndpointDescription string `yaml:"endpoint_description"`

	ParameterName   string `yaml:"parameter_name"`
	DefaultDataPath string `yaml:"default_data_path"`
	BindingMode     string `yaml:"binding_mode"`

	EnvironmentName    string `yaml:"environment_name"`
	EnvironmentVersion string `yaml:"environment_version"`

	StepName         string `yaml:"step_name"`
	SourceDirectory  string `yaml:"source_directory"`
	ScriptName       string `yaml:"script_name"`
	DataPathArgument string `yaml:"data_path_argument"`
	ComputeTarget    string `yaml:"compute_target"`
}

// DefaultConfig returns the configuration of the training pipeline.
func DefaultConfig() Config {
	return Config{
		PipelineName:        "prepare-training-pipeline-datapath",
		EndpointName:        "training-pipeline-endpoint",
		EndpointDescription: "New Training Pipeline Endpoint",
		ParameterName:       "training_data_path",
		DefaultDataPath:     "training_data/",
		BindingMode:         string(model.DownloadBinding),
		EnvironmentName:     "training-env",
		StepName:            "train-step",
		SourceDirectory:     "./",
		ScriptName:          "train.py",
		DataPathArgument:    "--data-path",
		ComputeTarget:       "cpu-cluster",
	}
}

// Validate checks that every name a run needs is set.
func (c Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"pipeline_name", c.PipelineName},
		{"endpoint_name", c.EndpointName},
		{"parameter_name", c.ParameterName},
		{"environment_name", c.EnvironmentName},
		{"step_name", c.StepName},
		{"source_directory", c.SourceDirectory},
		{"script_name", c.ScriptName},
		{"compute_target", c.ComputeTarget},
	}

	for _, r := range required {
		if r.value == "" {
			return errors.Errorf("config: %s must be set", r.key)
		}
	}

	_, err := model.ParseBindingMode(c.BindingMode)
	if err != nil {
		return errors.Wrap(err, "config: binding_mode")
	}

	return nil
}
