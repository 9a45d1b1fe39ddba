// Package config loads the workspace and publish configuration files.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrWorkspaceConfigNotFound is returned when no workspace config file is found.
var ErrWorkspaceConfigNotFound = errors.New("workspace config file not found")

// WorkspaceConfigNames are the locations searched, relative to each directory from
// the working directory up to the filesystem root.
var WorkspaceConfigNames = []string{
	"config.json",
	filepath.Join(".azureml", "config.json"),
	filepath.Join("aml_config", "config.json"),
}

// Workspace identifies the workspace to publish to. The file is usually the JSON
// downloaded from the workspace portal; YAML is accepted as well.
type Workspace struct {
	SubscriptionID string `yaml:"subscription_id"`
	ResourceGroup  string `yaml:"resource_group"`
	WorkspaceName  string `yaml:"workspace_name"`
	// Endpoint overrides the control plane base URL.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// FindWorkspace returns the first workspace config file found in dir or one of its
// parents.
func FindWorkspace(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve directory")
	}

	for {
		for _, name := range WorkspaceConfigNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", errors.Wrapf(err, "unable to stat %s", candidate)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrWorkspaceConfigNotFound
		}
		dir = parent
	}
}

// LoadWorkspace reads and checks a workspace config file.
func LoadWorkspace(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read workspace config %s", path)
	}

	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, errors.Wrapf(err, "unable to parse workspace config %s", path)
	}

	var missing []string
	if ws.SubscriptionID == "" {
		missing = append(missing, "subscription_id")
	}
	if ws.ResourceGroup == "" {
		missing = append(missing, "resource_group")
	}
	if ws.WorkspaceName == "" {
		missing = append(missing, "workspace_name")
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("workspace config %s is missing %v", path, missing)
	}

	return &ws, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}
