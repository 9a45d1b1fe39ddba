package publisher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/pkg/publisher"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := publisher.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "prepare-training-pipeline-datapath", cfg.PipelineName)
	assert.Equal(t, "training-pipeline-endpoint", cfg.EndpointName)
	assert.Equal(t, "New Training Pipeline Endpoint", cfg.EndpointDescription)
	assert.Equal(t, "training_data_path", cfg.ParameterName)
	assert.Equal(t, "training_data/", cfg.DefaultDataPath)
	assert.Equal(t, "training-env", cfg.EnvironmentName)
	assert.Equal(t, "train-step", cfg.StepName)
	assert.Equal(t, "train.py", cfg.ScriptName)
	assert.Equal(t, "cpu-cluster", cfg.ComputeTarget)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate  func(c *publisher.Config)
		wantErr string
	}{
		"no pipeline name":  {mutate: func(c *publisher.Config) { c.PipelineName = "" }, wantErr: "pipeline_name"},
		"no endpoint name":  {mutate: func(c *publisher.Config) { c.EndpointName = "" }, wantErr: "endpoint_name"},
		"no compute target": {mutate: func(c *publisher.Config) { c.ComputeTarget = "" }, wantErr: "compute_target"},
		"bad binding mode":  {mutate: func(c *publisher.Config) { c.BindingMode = "copy" }, wantErr: "binding_mode"},
		"empty binding ok":  {mutate: func(c *publisher.Config) { c.BindingMode = "" }},
		"no description ok": {mutate: func(c *publisher.Config) { c.EndpointDescription = "" }},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := publisher.DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
