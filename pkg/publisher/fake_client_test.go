package publisher_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// fakeClient is an in-memory control plane that records the calls it receives.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	datastore   *model.Datastore
	environment *model.Environment
	endpoints   map[string]*model.Endpoint
	published   []controlplane.PublishRequest

	datastoreErr error
	envErr       error
	validateErr  error
	publishErr   error
	findErr      error
	createErr    error
	addErr       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		datastore:   &model.Datastore{Name: "workspaceblobstore", Kind: model.AzureBlobDatastore, IsDefault: true},
		environment: &model.Environment{Name: "training-env", Version: "5"},
		endpoints:   make(map[string]*model.Endpoint),
	}
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// recorded returns the calls made so far. The two lookups run concurrently so their
// relative order is not meaningful.
func (f *fakeClient) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeClient) count(call string) int {
	n := 0
	for _, c := range f.recorded() {
		if c == call {
			n++
		}
	}

	return n
}

func (f *fakeClient) DefaultDatastore(context.Context) (*model.Datastore, error) {
	f.record("DefaultDatastore")
	if f.datastoreErr != nil {
		return nil, f.datastoreErr
	}

	return f.datastore, nil
}

func (f *fakeClient) Environment(_ context.Context, name, version string) (*model.Environment, error) {
	f.record("Environment")
	if f.envErr != nil {
		return nil, f.envErr
	}
	if f.environment == nil {
		return nil, nil
	}

	env := *f.environment
	env.Name = name
	if version != "" {
		env.Version = version
	}

	return &env, nil
}

func (f *fakeClient) ValidatePipeline(context.Context, *model.Definition) error {
	f.record("ValidatePipeline")
	return f.validateErr
}

func (f *fakeClient) PublishPipeline(_ context.Context, req controlplane.PublishRequest) (*model.PublishedPipeline, error) {
	f.record("PublishPipeline")
	if f.publishErr != nil {
		return nil, f.publishErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.published = append(f.published, req)
	version := fmt.Sprint(len(f.published))

	return &model.PublishedPipeline{
		ID:      "pipeline-" + version,
		Name:    req.Name,
		Version: version,
		Status:  "Active",
	}, nil
}

func (f *fakeClient) FindEndpoint(_ context.Context, name string) (*model.Endpoint, bool, error) {
	f.record("FindEndpoint")
	if f.findErr != nil {
		return nil, false, f.findErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ep, ok := f.endpoints[name]

	return ep, ok, nil
}

func (f *fakeClient) CreateEndpoint(_ context.Context, req controlplane.CreateEndpointRequest) (*model.Endpoint, error) {
	f.record("CreateEndpoint")
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ep := &model.Endpoint{
		ID:          "endpoint-" + req.Name,
		Name:        req.Name,
		Description: req.Description,
		Pipelines:   []model.EndpointPipeline{{PipelineID: req.PipelineID, IsDefault: true}},
	}
	ep.DefaultVersion = f.versionOf(req.PipelineID)
	ep.Pipelines[0].Version = ep.DefaultVersion
	f.endpoints[req.Name] = ep

	return ep, nil
}

func (f *fakeClient) AddDefault(_ context.Context, endpointName, pipelineID string) (*model.Endpoint, error) {
	f.record("AddDefault")
	if f.addErr != nil {
		return nil, f.addErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ep, ok := f.endpoints[endpointName]
	if !ok {
		return nil, controlplane.ErrNotFound
	}

	for i := range ep.Pipelines {
		ep.Pipelines[i].IsDefault = false
	}
	version := f.versionOf(pipelineID)
	ep.Pipelines = append(ep.Pipelines, model.EndpointPipeline{PipelineID: pipelineID, Version: version, IsDefault: true})
	ep.DefaultVersion = version

	return ep, nil
}

func (f *fakeClient) versionOf(pipelineID string) string {
	for i := range f.published {
		if fmt.Sprintf("pipeline-%d", i+1) == pipelineID {
			return fmt.Sprint(i + 1)
		}
	}

	return ""
}

var _ controlplane.Client = (*fakeClient)(nil)
