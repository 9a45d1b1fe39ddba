package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

type datastoreListOptions struct {
	IsDefault bool `url:"isDefault"`
}

type datastoreList struct {
	Value []model.Datastore `json:"value"`
}

// DefaultDatastore returns the workspace's default datastore.
func (c *Client) DefaultDatastore(ctx context.Context) (*model.Datastore, error) {
	u, err := addOptions("datastores", &datastoreListOptions{IsDefault: true})
	if err != nil {
		return nil, err
	}

	var list datastoreList
	_, err = c.do(ctx, idempotent, http.MethodGet, u, nil, &list)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list datastores")
	}

	for i := range list.Value {
		if list.Value[i].IsDefault {
			return &list.Value[i], nil
		}
	}

	return nil, errors.Wrap(controlplane.ErrNotFound, "workspace has no default datastore")
}
