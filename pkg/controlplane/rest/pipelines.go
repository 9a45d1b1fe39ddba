package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// ValidatePipeline asks the control plane to validate a definition without
// registering it.
func (c *Client) ValidatePipeline(ctx context.Context, def *model.Definition) error {
	_, err := c.do(ctx, idempotent, http.MethodPost, "pipelines:validate", def, nil)
	if err != nil {
		return errors.Wrapf(err, "pipeline %q rejected by control plane", def.Name)
	}

	return nil
}

// PublishPipeline registers a new pipeline version. Publishing the same name twice
// creates two versions.
func (c *Client) PublishPipeline(ctx context.Context, req controlplane.PublishRequest) (*model.PublishedPipeline, error) {
	var published model.PublishedPipeline
	_, err := c.do(ctx, sendOnce, http.MethodPost, "pipelines", req, &published)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to publish pipeline %q", req.Name)
	}

	return &published, nil
}
