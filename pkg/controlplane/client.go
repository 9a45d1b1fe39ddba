package controlplane

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// ErrNotFound is returned when a named asset does not exist in the workspace.
var ErrNotFound = errors.New("not found")

// PublishRequest publishes a pipeline definition under a name.
type PublishRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Definition  *model.Definition `json:"definition"`
}

// CreateEndpointRequest creates an endpoint whose sole and default version is
// PipelineID.
type CreateEndpointRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PipelineID  string `json:"pipelineId"`
}

// Client is a workspace control plane.
type Client interface {
	// DefaultDatastore returns the workspace's default datastore.
	DefaultDatastore(ctx context.Context) (*model.Datastore, error)
	// Environment returns a registered environment. An empty version selects the
	// latest one.
	Environment(ctx context.Context, name, version string) (*model.Environment, error)
	// ValidatePipeline asks the control plane to validate a definition.
	ValidatePipeline(ctx context.Context, def *model.Definition) error
	// PublishPipeline registers a new immutable pipeline version.
	PublishPipeline(ctx context.Context, req PublishRequest) (*model.PublishedPipeline, error)
	// FindEndpoint looks an endpoint up by name. It returns found=false and a nil
	// error when the endpoint does not exist; any error means the lookup itself
	// failed and says nothing about existence.
	FindEndpoint(ctx context.Context, name string) (endpoint *model.Endpoint, found bool, err error)
	// CreateEndpoint creates an endpoint.
	CreateEndpoint(ctx context.Context, req CreateEndpointRequest) (*model.Endpoint, error)
	// AddDefault registers a published pipeline under an endpoint and makes it the
	// default. Earlier versions stay registered.
	AddDefault(ctx context.Context, endpointName, pipelineID string) (*model.Endpoint, error)
}
