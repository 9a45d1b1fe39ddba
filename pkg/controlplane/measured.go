package controlplane

import (
	"context"
	"time"

	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// Operation names recorded by a measured client.
const (
	OpDefaultDatastore = "default datastore"
	OpEnvironment      = "environment"
	OpValidatePipeline = "validate pipeline"
	OpPublishPipeline  = "publish pipeline"
	OpFindEndpoint     = "find endpoint"
	OpCreateEndpoint   = "create endpoint"
	OpAddDefault       = "add default"
)

type measuredClient struct {
	next Client
	m    measure.Measure
}

// Measured wraps client so that the duration and outcome of every call is recorded
// in m.
func Measured(client Client, m measure.Measure) Client {
	return &measuredClient{next: client, m: m}
}

func (c *measuredClient) DefaultDatastore(ctx context.Context) (ds *model.Datastore, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpDefaultDatastore, start, err) }(time.Now())

	return c.next.DefaultDatastore(ctx)
}

func (c *measuredClient) Environment(ctx context.Context, name, version string) (env *model.Environment, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpEnvironment, start, err) }(time.Now())

	return c.next.Environment(ctx, name, version)
}

func (c *measuredClient) ValidatePipeline(ctx context.Context, def *model.Definition) (err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpValidatePipeline, start, err) }(time.Now())

	return c.next.ValidatePipeline(ctx, def)
}

func (c *measuredClient) PublishPipeline(ctx context.Context, req PublishRequest) (pp *model.PublishedPipeline, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpPublishPipeline, start, err) }(time.Now())

	return c.next.PublishPipeline(ctx, req)
}

func (c *measuredClient) FindEndpoint(ctx context.Context, name string) (ep *model.Endpoint, found bool, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpFindEndpoint, start, err) }(time.Now())

	return c.next.FindEndpoint(ctx, name)
}

func (c *measuredClient) CreateEndpoint(ctx context.Context, req CreateEndpointRequest) (ep *model.Endpoint, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpCreateEndpoint, start, err) }(time.Now())

	return c.next.CreateEndpoint(ctx, req)
}

func (c *measuredClient) AddDefault(ctx context.Context, endpointName, pipelineID string) (ep *model.Endpoint, err error) {
	defer func(start time.Time) { measure.Observe(c.m, OpAddDefault, start, err) }(time.Now())

	return c.next.AddDefault(ctx, endpointName, pipelineID)
}

var _ Client = (*measuredClient)(nil)
