package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/askiada/pipeline-publish/internal/config"
	"github.com/askiada/pipeline-publish/internal/snapshot"
	"github.com/askiada/pipeline-publish/pkg/controlplane"
	"github.com/askiada/pipeline-publish/pkg/controlplane/rest"
	"github.com/askiada/pipeline-publish/pkg/pipeline/drawer"
	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
	"github.com/askiada/pipeline-publish/pkg/publisher"
)

const envPrefix = "PIPELINE_PUBLISH_"

var WorkspaceConfigFlag = cli.StringFlag{
	Name:   "workspace-config",
	Usage:  "Path to the workspace config file. Searched for from the working directory up when empty",
	EnvVar: envPrefix + "WORKSPACE_CONFIG",
}

var ConfigFlag = cli.StringFlag{
	Name:   "config",
	Usage:  "Path to a YAML file overriding the pipeline and endpoint settings",
	EnvVar: envPrefix + "CONFIG",
}

var APIEndpointFlag = cli.StringFlag{
	Name:   "api-endpoint",
	Usage:  "Base URL of the control plane, overrides the workspace config",
	EnvVar: envPrefix + "API_ENDPOINT",
}

var TokenFlag = cli.StringFlag{
	Name:   "token",
	Usage:  "Bearer token for the control plane. The default Azure credential chain is used when empty",
	EnvVar: envPrefix + "TOKEN",
}

var MaxAttemptsFlag = cli.IntFlag{
	Name:   "max-attempts",
	Value:  3,
	Usage:  "Attempts for a control plane request failing with a retryable error",
	EnvVar: envPrefix + "MAX_ATTEMPTS",
}

var LogLevelFlag = cli.StringFlag{
	Name:   "log-level",
	Value:  "info",
	Usage:  "Log level: debug, info, warn or error",
	EnvVar: envPrefix + "LOG_LEVEL",
}

var LogFormatFlag = cli.StringFlag{
	Name:   "log-format",
	Value:  "text",
	Usage:  "Log format: text or json",
	EnvVar: envPrefix + "LOG_FORMAT",
}

var DryRunFlag = cli.BoolFlag{
	Name:   "dry-run",
	Usage:  "Validate the pipeline with the control plane but do not publish it",
	EnvVar: envPrefix + "DRY_RUN",
}

var GraphOutFlag = cli.StringFlag{
	Name:   "graph-out",
	Usage:  "Write the pipeline graph and control plane call timings to this DOT file",
	EnvVar: envPrefix + "GRAPH_OUT",
}

var NoSnapshotFlag = cli.BoolFlag{
	Name:   "no-snapshot",
	Usage:  "Do not upload the source directory snapshot",
	EnvVar: envPrefix + "NO_SNAPSHOT",
}

// publishFlags are accepted by the publish command and by the default action.
var publishFlags = []cli.Flag{DryRunFlag, GraphOutFlag, NoSnapshotFlag}

const publishDescription = `Resolves the default datastore and the training environment, builds the
training step with a training_data_path parameter defaulting to
<default datastore>/training_data/, validates the pipeline, publishes it and
makes it the default pipeline of the training endpoint. The endpoint is
created when it does not exist.

Every run publishes a new pipeline version.`

const validateDescription = `Builds the pipeline exactly as publish would, has the control plane
validate it and prints the definition as YAML. Nothing is uploaded or
published.`

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pipeline-publish"
	app.Usage = "Publish the training pipeline and update its endpoint"
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		WorkspaceConfigFlag,
		ConfigFlag,
		APIEndpointFlag,
		TokenFlag,
		MaxAttemptsFlag,
		LogLevelFlag,
		LogFormatFlag,
	}
	app.Flags = append(app.Flags, publishFlags...)
	app.Commands = []cli.Command{
		{
			Name:        "publish",
			Usage:       "Publish the pipeline and update the endpoint",
			Description: publishDescription,
			Flags:       publishFlags,
			Action:      publishAction,
		},
		{
			Name:        "validate",
			Usage:       "Validate the pipeline and print its definition",
			Description: validateDescription,
			Action:      validateAction,
		},
	}
	app.Action = publishAction

	return app
}

// env is what every command needs: a logger, a control plane client and the publish
// configuration.
type env struct {
	logger *slog.Logger
	client controlplane.Client
	tokens rest.TokenSource
	cfg    publisher.Config
}

func setup(c *cli.Context) (*env, error) {
	logger, err := newLogger(c.App.ErrWriter, c.GlobalString(LogLevelFlag.Name), c.GlobalString(LogFormatFlag.Name))
	if err != nil {
		return nil, err
	}

	wsPath := c.GlobalString(WorkspaceConfigFlag.Name)
	if wsPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "unable to get working directory")
		}
		wsPath, err = config.FindWorkspace(wd)
		if err != nil {
			return nil, err
		}
	}

	ws, err := config.LoadWorkspace(wsPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadPublish(c.GlobalString(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	var tokens rest.TokenSource
	if token := c.GlobalString(TokenFlag.Name); token != "" {
		tokens = rest.StaticToken(token)
	} else {
		tokens, err = rest.NewDefaultCredentialTokenSource()
		if err != nil {
			return nil, err
		}
	}

	endpoint := ws.Endpoint
	if override := c.GlobalString(APIEndpointFlag.Name); override != "" {
		endpoint = override
	}

	logger.Debug("using workspace",
		slog.String("config", wsPath),
		slog.String("workspace", ws.WorkspaceName),
		slog.String("resource_group", ws.ResourceGroup),
	)

	client := rest.NewClient(logger, rest.Config{
		Endpoint: endpoint,
		Workspace: rest.Workspace{
			SubscriptionID: ws.SubscriptionID,
			ResourceGroup:  ws.ResourceGroup,
			Name:           ws.WorkspaceName,
		},
		Tokens:      tokens,
		UserAgent:   "pipeline-publish/" + c.App.Version,
		MaxAttempts: c.GlobalInt(MaxAttemptsFlag.Name),
	})

	return &env{logger: logger, client: client, tokens: tokens, cfg: cfg}, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// storageCredential returns the credential the snapshot uploader authenticates with.
// A static control plane token cannot be used for storage, so only the connection
// string is left in that case.
func storageCredential(tokens rest.TokenSource) (azcore.TokenCredential, bool) {
	if cts, ok := tokens.(*rest.CredentialTokenSource); ok {
		return cts.Credential, true
	}

	return nil, os.Getenv(snapshot.ConnectionStringEnv) != ""
}

// publishBool reads a publish flag given either to the publish command or to the
// app, for the default action.
func publishBool(c *cli.Context, name string) bool {
	return c.Bool(name) || c.GlobalBool(name)
}

func publishString(c *cli.Context, name string) string {
	if v := c.String(name); v != "" {
		return v
	}

	return c.GlobalString(name)
}

func publishAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	dryRun := publishBool(c, DryRunFlag.Name)
	opts := []publisher.Option{
		publisher.WithLogger(e.logger),
		publisher.WithDryRun(dryRun),
	}

	client := e.client
	if graphOut := publishString(c, GraphOutFlag.Name); graphOut != "" {
		m := measure.NewDefaultMeasure()
		client = controlplane.Measured(client, m)
		// The measure must finish first so the drawing carries the total time.
		opts = append(opts, publisher.WithPipelineOptions(
			measure.PipelineMeasure(m),
			drawer.PipelineDrawer(drawer.NewDOTDrawer(graphOut), m),
		))
	}

	if !publishBool(c, NoSnapshotFlag.Name) {
		cred, ok := storageCredential(e.tokens)
		if ok {
			opts = append(opts, publisher.WithUploader(snapshot.NewAzureBlobUploader(e.logger, cred)))
		} else {
			e.logger.Warn("no storage credential available, skipping source snapshot",
				slog.String("hint", "set "+snapshot.ConnectionStringEnv+" or drop --token"))
		}
	}

	pub, err := publisher.New(client, e.cfg, opts...)
	if err != nil {
		return err
	}

	res, err := pub.Run(ctx)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(c.App.Writer, "pipeline %s is valid, not published\n", res.Definition.Name)
		return nil
	}

	verb := "updated"
	if res.EndpointCreated {
		verb = "created"
	}
	fmt.Fprintf(c.App.Writer, "published %s version %s (%s)\n", res.Pipeline.Name, res.Pipeline.Version, res.Pipeline.ID)
	fmt.Fprintf(c.App.Writer, "%s endpoint %s, default version %s\n", verb, res.Endpoint.Name, res.Endpoint.DefaultVersion)
	if res.Endpoint.URL != "" {
		fmt.Fprintf(c.App.Writer, "submit runs to %s\n", res.Endpoint.URL)
	}

	return nil
}

func validateAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pub, err := publisher.New(e.client, e.cfg,
		publisher.WithLogger(e.logger),
		publisher.WithDryRun(true),
	)
	if err != nil {
		return err
	}

	res, err := pub.Run(ctx)
	if err != nil {
		return err
	}

	return writeDefinition(c.App.Writer, res.Definition)
}

func writeDefinition(w io.Writer, def *model.Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(def); err != nil {
		return errors.Wrap(err, "unable to encode definition")
	}

	return enc.Close()
}
