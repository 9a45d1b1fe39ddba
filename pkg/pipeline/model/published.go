package model

import "time"

// Definition is the graph of a pipeline as sent to the control plane. Steps are in
// topological order.
type Definition struct {
	Name                  string          `json:"name" yaml:"name"`
	Description           string          `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters            []PathParameter `json:"parameters" yaml:"parameters"`
	Steps                 []Step          `json:"steps" yaml:"steps"`
	ContinueOnStepFailure bool            `json:"continueOnStepFailure" yaml:"continue_on_step_failure"`
}

// PublishedPipeline is an immutable, versioned pipeline registered in a workspace.
type PublishedPipeline struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Endpoint    string    `json:"endpoint,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EndpointPipeline is one published pipeline registered under an endpoint.
type EndpointPipeline struct {
	PipelineID string `json:"pipelineId"`
	Version    string `json:"version"`
	IsDefault  bool   `json:"isDefault"`
}

// Endpoint is a stable named alias routing submissions to its default pipeline.
type Endpoint struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	DefaultVersion string             `json:"defaultVersion"`
	URL            string             `json:"url,omitempty"`
	Pipelines      []EndpointPipeline `json:"pipelines,omitempty"`
}

// DefaultPipeline returns the pipeline the endpoint currently routes to.
func (e *Endpoint) DefaultPipeline() (EndpointPipeline, bool) {
	for _, p := range e.Pipelines {
		if p.IsDefault {
			return p, true
		}
	}

	return EndpointPipeline{}, false
}
