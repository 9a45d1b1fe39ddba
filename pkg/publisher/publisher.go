package publisher

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/pipeline-publish/internal/snapshot"
	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/pipeline"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

type Option func(p *Publisher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// WithUploader packages the step's source directory and uploads it with u before
// publishing. Without an uploader the step carries no snapshot.
func WithUploader(u snapshot.Uploader) Option {
	return func(p *Publisher) {
		p.uploader = u
	}
}

// WithPipelineOptions registers options observing the pipeline as it is built.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(p *Publisher) {
		p.pipelineOpts = append(p.pipelineOpts, opts...)
	}
}

// WithDryRun stops a run once the pipeline has been validated by the control plane.
// Nothing is uploaded or published.
func WithDryRun(dryRun bool) Option {
	return func(p *Publisher) {
		p.dryRun = dryRun
	}
}

// Publisher publishes the training pipeline to one workspace.
type Publisher struct {
	client       controlplane.Client
	cfg          Config
	logger       *slog.Logger
	uploader     snapshot.Uploader
	pipelineOpts []model.PipelineOption
	dryRun       bool
}

// Result is the outcome of a run.
type Result struct {
	Definition      *model.Definition
	Pipeline        *model.PublishedPipeline
	Endpoint        *model.Endpoint
	EndpointCreated bool
	// SnapshotPath is the datastore path of the uploaded source snapshot.
	SnapshotPath string
}

// New creates a publisher.
func New(client controlplane.Client, cfg Config, opts ...Option) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("control plane client must be set")
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		client: client,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

type resolved struct {
	datastore   *model.Datastore
	environment *model.Environment
}

// resolve looks up the default datastore and the environment. The lookups are
// independent so they run concurrently.
func (p *Publisher) resolve(ctx context.Context) (*resolved, error) {
	res := &resolved{}
	grp, gCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		ds, err := p.client.DefaultDatastore(gCtx)
		if err != nil {
			return errors.Wrap(err, "unable to resolve default datastore")
		}
		if ds == nil {
			return errors.Wrap(controlplane.ErrNotFound, "control plane returned no default datastore")
		}
		res.datastore = ds

		return nil
	})

	grp.Go(func() error {
		env, err := p.client.Environment(gCtx, p.cfg.EnvironmentName, p.cfg.EnvironmentVersion)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve environment %q", p.cfg.EnvironmentName)
		}
		if env == nil {
			return errors.Wrapf(controlplane.ErrNotFound, "control plane returned no environment %q", p.cfg.EnvironmentName)
		}
		res.environment = env

		return nil
	})

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

// TrainingStep builds the training step: the script gets the data path argument
// followed by the location of the bound parameter, and always runs again on every
// submission.
func TrainingStep(cfg Config, param *model.PathParameter, env *model.Environment, snapshotID string) (model.Step, error) {
	mode, err := model.ParseBindingMode(cfg.BindingMode)
	if err != nil {
		return model.Step{}, err
	}

	input := model.ParameterInput(param, mode)

	var args []model.Argument
	if cfg.DataPathArgument != "" {
		args = append(args, model.Literal(cfg.DataPathArgument))
	}
	args = append(args, model.InputArg(input))

	return pipeline.NewScriptStep(cfg.StepName, cfg.ScriptName,
		pipeline.StepSource(cfg.SourceDirectory),
		pipeline.StepArguments(args...),
		pipeline.StepInputs(input),
		pipeline.StepRunConfig(model.RunConfig{Environment: env}),
		pipeline.StepComputeTarget(cfg.ComputeTarget),
		pipeline.StepSnapshot(snapshotID),
	), nil
}

func (p *Publisher) snapshot(ctx context.Context, datastore *model.Datastore) (string, string, error) {
	if p.uploader == nil {
		return "", "", nil
	}

	archive, err := snapshot.Create(p.cfg.SourceDirectory)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to package source directory")
	}

	if p.dryRun {
		p.logger.Info("dry run, not uploading source snapshot", slog.String("snapshot_id", archive.ID))
		return archive.ID, "", nil
	}

	blobPath, err := p.uploader.Upload(ctx, datastore, archive)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to upload source snapshot")
	}

	return archive.ID, blobPath, nil
}

// Build resolves the workspace assets and assembles the pipeline without validating
// it. The returned snapshot path is empty unless a snapshot was uploaded.
func (p *Publisher) Build(ctx context.Context) (*pipeline.Pipeline, string, error) {
	res, err := p.resolve(ctx)
	if err != nil {
		return nil, "", err
	}

	p.logger.Info("resolved workspace assets",
		slog.String("datastore", res.datastore.Name),
		slog.String("environment", res.environment.Name),
		slog.String("environment_version", res.environment.Version),
	)

	param, err := model.NewPathParameter(p.cfg.ParameterName, res.datastore, p.cfg.DefaultDataPath)
	if err != nil {
		return nil, "", errors.Wrap(err, "unable to create data path parameter")
	}

	snapshotID, snapshotPath, err := p.snapshot(ctx, res.datastore)
	if err != nil {
		return nil, "", err
	}

	step, err := TrainingStep(p.cfg, param, res.environment, snapshotID)
	if err != nil {
		return nil, "", err
	}

	pipe, err := pipeline.New(p.cfg.PipelineName,
		pipeline.PipelineDescription(p.cfg.PipelineDescription),
		pipeline.PipelineHooks(p.pipelineOpts...),
	)
	if err != nil {
		return nil, "", err
	}

	err = pipe.AddParameter(param)
	if err != nil {
		return nil, "", err
	}

	err = pipe.AddStep(step)
	if err != nil {
		return nil, "", err
	}

	return pipe, snapshotPath, nil
}

// Run builds, validates and publishes the pipeline, then upserts the endpoint.
//
// Validation always happens before publishing and a failure stops the run. If the
// endpoint cannot be updated after a successful publish, the published pipeline is
// left orphaned and the error names it.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	pipe, snapshotPath, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}

	def, err := pipe.Definition()
	if err != nil {
		return nil, err
	}

	err = p.client.ValidatePipeline(ctx, def)
	if err != nil {
		return nil, errors.Wrap(err, "control plane validation failed")
	}

	res := &Result{Definition: def, SnapshotPath: snapshotPath}

	if p.dryRun {
		p.logger.Info("dry run, pipeline validated but not published", slog.String("pipeline", def.Name))
		return res, p.finish(pipe)
	}

	published, err := p.client.PublishPipeline(ctx, controlplane.PublishRequest{
		Name:        p.cfg.PipelineName,
		Description: p.cfg.PipelineDescription,
		Definition:  def,
	})
	if err != nil {
		return nil, err
	}
	res.Pipeline = published

	p.logger.Info("published pipeline",
		slog.String("pipeline", published.Name),
		slog.String("pipeline_id", published.ID),
		slog.String("version", published.Version),
	)

	endpoint, created, err := UpsertEndpoint(ctx, p.client, p.logger, p.cfg.EndpointName, p.cfg.EndpointDescription, published)
	if err != nil {
		return res, errors.Wrapf(err, "pipeline %s was published but endpoint %q was not updated", published.ID, p.cfg.EndpointName)
	}
	res.Endpoint = endpoint
	res.EndpointCreated = created

	p.logger.Info("endpoint updated",
		slog.String("endpoint", endpoint.Name),
		slog.String("default_version", endpoint.DefaultVersion),
		slog.Bool("created", created),
	)

	return res, p.finish(pipe)
}

func (p *Publisher) finish(pipe *pipeline.Pipeline) error {
	err := pipe.Finish()
	if err != nil {
		return errors.Wrap(err, "unable to finish pipeline options")
	}

	return nil
}
