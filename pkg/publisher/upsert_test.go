package publisher_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
	"github.com/askiada/pipeline-publish/pkg/publisher"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestUpsertEndpointAbsent(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	published := &model.PublishedPipeline{ID: "pipeline-9"}

	ep, created, err := publisher.UpsertEndpoint(context.Background(), client, discardLogger, "ep", "desc", published)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "desc", ep.Description)
	assert.Equal(t, []string{"FindEndpoint", "CreateEndpoint"}, client.recorded())
}

func TestUpsertEndpointPresent(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.endpoints["ep"] = &model.Endpoint{Name: "ep"}

	ep, created, err := publisher.UpsertEndpoint(context.Background(), client, discardLogger, "ep", "desc", &model.PublishedPipeline{ID: "pipeline-9"})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Empty(t, ep.Description)
	assert.Equal(t, []string{"FindEndpoint", "AddDefault"}, client.recorded())

	def, ok := ep.DefaultPipeline()
	require.True(t, ok)
	assert.Equal(t, "pipeline-9", def.PipelineID)
}

func TestUpsertEndpointLookupError(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.findErr = assert.AnError

	ep, created, err := publisher.UpsertEndpoint(context.Background(), client, discardLogger, "ep", "desc", &model.PublishedPipeline{ID: "pipeline-9"})
	require.ErrorIs(t, err, assert.AnError)

	assert.Nil(t, ep)
	assert.False(t, created)
	assert.Equal(t, []string{"FindEndpoint"}, client.recorded())
}

func TestUpsertEndpointAddDefaultError(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.endpoints["ep"] = &model.Endpoint{Name: "ep"}
	client.addErr = assert.AnError

	_, created, err := publisher.UpsertEndpoint(context.Background(), client, discardLogger, "ep", "desc", &model.PublishedPipeline{ID: "pipeline-9"})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, created)
	assert.Equal(t, 0, client.count("CreateEndpoint"))
}

func TestUpsertEndpointNilPipeline(t *testing.T) {
	t.Parallel()

	client := newFakeClient()

	_, _, err := publisher.UpsertEndpoint(context.Background(), client, discardLogger, "ep", "desc", nil)
	require.Error(t, err)
	assert.Empty(t, client.recorded())
}
