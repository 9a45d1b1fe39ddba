package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

type environmentOptions struct {
	Version string `url:"version,omitempty"`
}

// Environment returns a registered environment. The control plane resolves an empty
// version to the latest registered one.
func (c *Client) Environment(ctx context.Context, name, version string) (*model.Environment, error) {
	u, err := addOptions("environments/"+url.PathEscape(name), &environmentOptions{Version: version})
	if err != nil {
		return nil, err
	}

	var env model.Environment
	_, err = c.do(ctx, idempotent, http.MethodGet, u, nil, &env)
	if err != nil {
		if IsErrHavingStatus(err, http.StatusNotFound) {
			return nil, errors.Wrapf(controlplane.ErrNotFound, "environment %q: %v", name, err)
		}

		return nil, errors.Wrapf(err, "unable to get environment %q", name)
	}

	return &env, nil
}
