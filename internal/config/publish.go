package config

import (
	"os"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/publisher"
)

// LoadPublish returns the default publish configuration overlaid with the keys set
// in the YAML file at path. An empty path yields the defaults.
func LoadPublish(path string) (publisher.Config, error) {
	cfg := publisher.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to read publish config %s", path)
	}

	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "unable to parse publish config %s", path)
	}

	return cfg, nil
}
