package pipeline

import (
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// Validate checks the referential integrity of the pipeline: every input is bound to
// a declared parameter or to a declared output of an existing step, every input
// argument names one of the step's inputs, and the step dependencies are acyclic.
// All problems are reported together in a *ValidationError.
func (p *Pipeline) Validate() error {
	steps, err := p.Steps()
	if err != nil {
		return err
	}

	var issues []string
	addIssue := func(format string, args ...interface{}) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if len(steps) == 0 {
		addIssue("pipeline has no steps")
	}

	byName := make(map[string]*model.Step, len(steps))
	for i := range steps {
		byName[steps[i].Name] = &steps[i]
	}

	for i := range steps {
		step := &steps[i]

		if step.ScriptName == "" {
			addIssue("step %q: script name must be set", step.Name)
		}
		if step.ComputeTarget == "" {
			addIssue("step %q: compute target must be set", step.Name)
		}
		if step.RunConfig.Environment == nil {
			addIssue("step %q: run configuration has no environment", step.Name)
		}

		seen := make(map[string]struct{}, len(step.Inputs))
		for _, in := range step.Inputs {
			if _, ok := seen[in.Name]; ok {
				addIssue("step %q: input %q is declared twice", step.Name, in.Name)
			}
			seen[in.Name] = struct{}{}

			p.validateInput(step, in, byName, addIssue)
		}

		for _, arg := range step.Arguments {
			if !arg.IsInput() {
				continue
			}
			if _, ok := step.Input(arg.Input); !ok {
				addIssue("step %q: argument references undeclared input %q", step.Name, arg.Input)
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Pipeline: p.name, Issues: issues}
	}

	return nil
}

func (p *Pipeline) validateInput(step *model.Step, in model.InputBinding, byName map[string]*model.Step, addIssue func(string, ...interface{})) {
	switch {
	case in.Parameter != "" && in.FromStep != "":
		addIssue("step %q: input %q is bound to both a parameter and a step output", step.Name, in.Name)
	case in.Parameter != "":
		if _, ok := p.paramIndex[in.Parameter]; !ok {
			addIssue("step %q: input %q references undeclared parameter %q", step.Name, in.Name, in.Parameter)
		}
	case in.FromStep != "":
		producer, ok := byName[in.FromStep]
		if !ok {
			addIssue("step %q: input %q references unknown step %q", step.Name, in.Name, in.FromStep)
			return
		}
		if !producer.HasOutput(in.Output) {
			addIssue("step %q: input %q references undeclared output %q of step %q", step.Name, in.Name, in.Output, in.FromStep)
			return
		}

		err := p.graph.AddEdge(in.FromStep, step.Name)
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			addIssue("step %q: input %q from step %q creates a cycle", step.Name, in.Name, in.FromStep)
		default:
			addIssue("step %q: unable to link step %q: %v", step.Name, in.FromStep, err)
		}
	default:
		addIssue("step %q: input %q is not bound", step.Name, in.Name)
	}
}
