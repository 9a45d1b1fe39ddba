package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

type addPipelineRequest struct {
	PipelineID   string `json:"pipelineId"`
	SetAsDefault bool   `json:"setAsDefault"`
}

// FindEndpoint looks an endpoint up by name. Only a 404 means the endpoint does not
// exist; every other failure is returned as an error.
func (c *Client) FindEndpoint(ctx context.Context, name string) (*model.Endpoint, bool, error) {
	var endpoint model.Endpoint
	_, err := c.do(ctx, idempotent, http.MethodGet, "pipelineEndpoints/"+url.PathEscape(name), nil, &endpoint)
	if err != nil {
		if IsErrHavingStatus(err, http.StatusNotFound) {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "unable to look up endpoint %q", name)
	}

	return &endpoint, true, nil
}

// CreateEndpoint creates an endpoint. A 409 from a concurrently created endpoint of
// the same name is returned as is.
func (c *Client) CreateEndpoint(ctx context.Context, req controlplane.CreateEndpointRequest) (*model.Endpoint, error) {
	var endpoint model.Endpoint
	_, err := c.do(ctx, sendOnce, http.MethodPost, "pipelineEndpoints", req, &endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create endpoint %q", req.Name)
	}

	return &endpoint, nil
}

// AddDefault registers pipelineID under the endpoint and makes it the default.
func (c *Client) AddDefault(ctx context.Context, endpointName, pipelineID string) (*model.Endpoint, error) {
	var endpoint model.Endpoint
	u := "pipelineEndpoints/" + url.PathEscape(endpointName) + "/pipelines"
	_, err := c.do(ctx, sendOnce, http.MethodPost, u, addPipelineRequest{PipelineID: pipelineID, SetAsDefault: true}, &endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add pipeline %s to endpoint %q", pipelineID, endpointName)
	}

	return &endpoint, nil
}

var _ controlplane.Client = (*Client)(nil)
