package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/internal/store"
	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// Pipeline is a graph of script steps and the path parameters they consume.
type Pipeline struct {
	name                  string
	description           string
	continueOnStepFailure bool
	hooks                 []model.PipelineOption

	params     []*model.PathParameter
	paramIndex map[string]*model.PathParameter

	store *store.OrderedStore[string, *model.Step]
	graph graph.Graph[string, *model.Step]
}

func stepHash(s *model.Step) string {
	return s.Name
}

// New creates a new pipeline.
func New(name string, opts ...PipelineOption) (*Pipeline, error) {
	if name == "" {
		return nil, ErrPipelineNameMustBeSet
	}

	stepStore := store.NewOrderedStore[string, *model.Step]()
	pipe := &Pipeline{
		name:       name,
		paramIndex: make(map[string]*model.PathParameter),
		store:      stepStore,
		graph:      graph.NewWithStore(stepHash, stepStore, graph.Directed(), graph.PreventCycles()),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	for _, hook := range pipe.hooks {
		err := hook.New(name)
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// AddParameter declares a path parameter.
func (p *Pipeline) AddParameter(param *model.PathParameter) error {
	if param == nil {
		return ErrParameterMustBeSet
	}

	if _, ok := p.paramIndex[param.Name]; ok {
		return errors.Wrapf(ErrDuplicateParameter, "parameter %q", param.Name)
	}

	declared := *param
	p.params = append(p.params, &declared)
	p.paramIndex[param.Name] = &declared

	for _, hook := range p.hooks {
		err := hook.PrepareParameter(&declared)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare parameter function")
		}
	}

	return nil
}

// AddStep adds a step. Its input bindings are only checked by Validate, so steps can
// be added in any order.
func (p *Pipeline) AddStep(step model.Step) error {
	if step.Name == "" {
		return ErrStepNameMustBeSet
	}

	added := step
	err := p.graph.AddVertex(&added)
	if err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return errors.Wrapf(ErrDuplicateStep, "step %q", step.Name)
		}

		return errors.Wrapf(err, "unable to add step %q", step.Name)
	}

	for _, hook := range p.hooks {
		err := hook.PrepareStep(&added)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare step function")
		}
	}

	return nil
}

// Parameters returns the declared parameters in declaration order.
func (p *Pipeline) Parameters() []model.PathParameter {
	params := make([]model.PathParameter, len(p.params))
	for i, param := range p.params {
		params[i] = *param
	}

	return params
}

// Steps returns the steps in the order they were added.
func (p *Pipeline) Steps() ([]model.Step, error) {
	names, err := p.store.ListVertices()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list steps")
	}

	return p.stepsByName(names)
}

func (p *Pipeline) stepsByName(names []string) ([]model.Step, error) {
	steps := make([]model.Step, len(names))
	for i, name := range names {
		step, err := p.graph.Vertex(name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get step %q", name)
		}
		steps[i] = *step
	}

	return steps, nil
}

// Definition validates the pipeline and returns its wire form, with steps in
// topological order. Independent steps keep the order they were added in.
func (p *Pipeline) Definition() (*model.Definition, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}

	order, err := graph.StableTopologicalSort(p.graph, func(a, b string) bool {
		return p.store.Position(a) < p.store.Position(b)
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort steps")
	}

	steps, err := p.stepsByName(order)
	if err != nil {
		return nil, err
	}

	return &model.Definition{
		Name:                  p.name,
		Description:           p.description,
		Parameters:            p.Parameters(),
		Steps:                 steps,
		ContinueOnStepFailure: p.continueOnStepFailure,
	}, nil
}

// Finish runs the finish hook of every pipeline option.
func (p *Pipeline) Finish() error {
	for _, hook := range p.hooks {
		err := hook.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
