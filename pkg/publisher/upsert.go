package publisher

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// UpsertEndpoint points the named endpoint at published. An existing endpoint gets
// published added as its default version and keeps its earlier versions; a missing
// one is created with published as its only version and with description, which is
// never sent for an existing endpoint. It reports whether the endpoint was created.
//
// A failed lookup is returned as is: nothing is created when existence is unknown.
// When another run creates the endpoint between the lookup and the create, the
// control plane rejects the create and that error is returned.
func UpsertEndpoint(ctx context.Context, client controlplane.Client, logger *slog.Logger, name, description string, published *model.PublishedPipeline) (*model.Endpoint, bool, error) {
	if published == nil {
		return nil, false, errors.New("published pipeline must be set")
	}

	_, found, err := client.FindEndpoint(ctx, name)
	if err != nil {
		return nil, false, errors.Wrapf(err, "unable to check whether endpoint %q exists", name)
	}

	if found {
		logger.Info("endpoint already exists, adding pipeline as default",
			slog.String("endpoint", name), slog.String("pipeline_id", published.ID))

		endpoint, err := client.AddDefault(ctx, name, published.ID)
		if err != nil {
			return nil, false, err
		}

		return endpoint, false, nil
	}

	logger.Info("creating endpoint", slog.String("endpoint", name), slog.String("pipeline_id", published.ID))

	endpoint, err := client.CreateEndpoint(ctx, controlplane.CreateEndpointRequest{
		Name:        name,
		Description: description,
		PipelineID:  published.ID,
	})
	if err != nil {
		return nil, false, err
	}

	return endpoint, true, nil
}
