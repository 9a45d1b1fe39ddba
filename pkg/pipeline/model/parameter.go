package model

import "github.com/pkg/errors"

var (
	ErrParameterNameMustBeSet = errors.New("parameter name must be set")
	ErrDatastoreMustBeSet     = errors.New("datastore must be set")
)

// PathParameter is a named indirection over a storage location. The default value is
// used unless a submission overrides it; the control plane resolves it at submission
// time, never at definition time.
type PathParameter struct {
	Name    string   `json:"name" yaml:"name"`
	Default DataPath `json:"defaultValue" yaml:"default_value"`
}

// NewPathParameter creates a path parameter defaulting to path on the given datastore.
func NewPathParameter(name string, datastore *Datastore, path string) (*PathParameter, error) {
	if name == "" {
		return nil, ErrParameterNameMustBeSet
	}
	if datastore == nil {
		return nil, ErrDatastoreMustBeSet
	}

	return &PathParameter{
		Name: name,
		Default: DataPath{
			Datastore:       datastore.Name,
			PathOnDatastore: path,
		},
	}, nil
}

// DefaultValue returns the data path the parameter resolves to when not overridden.
func (p *PathParameter) DefaultValue() DataPath {
	return p.Default
}

// BindingMode is how an input is made available on the compute target.
type BindingMode string

const (
	DownloadBinding BindingMode = "download"
	MountBinding    BindingMode = "mount"
	DirectBinding   BindingMode = "direct"
)

// ParseBindingMode parses a binding mode. An empty string yields DownloadBinding.
func ParseBindingMode(s string) (BindingMode, error) {
	switch BindingMode(s) {
	case "":
		return DownloadBinding, nil
	case DownloadBinding, MountBinding, DirectBinding:
		return BindingMode(s), nil
	default:
		return "", errors.Errorf("unknown binding mode %q", s)
	}
}

// InputBinding is a named input of a step. It is bound either to a pipeline
// parameter or to an output of another step.
type InputBinding struct {
	Name      string      `json:"name" yaml:"name"`
	Parameter string      `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	FromStep  string      `json:"fromStep,omitempty" yaml:"from_step,omitempty"`
	Output    string      `json:"output,omitempty" yaml:"output,omitempty"`
	Mode      BindingMode `json:"mode" yaml:"mode"`
}

// ParameterInput binds a path parameter to a step input of the same name.
func ParameterInput(param *PathParameter, mode BindingMode) InputBinding {
	return InputBinding{
		Name:      param.Name,
		Parameter: param.Name,
		Mode:      mode,
	}
}

// StepOutputInput binds the output of another step.
func StepOutputInput(name, fromStep, output string, mode BindingMode) InputBinding {
	return InputBinding{
		Name:     name,
		FromStep: fromStep,
		Output:   output,
		Mode:     mode,
	}
}

// OutputBinding is an intermediate output produced by a step.
type OutputBinding struct {
	Name      string `json:"name" yaml:"name"`
	Datastore string `json:"datastore,omitempty" yaml:"datastore,omitempty"`
}

// Argument is a script argument. Exactly one of Literal or Input is set.
type Argument struct {
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Input   string `json:"input,omitempty" yaml:"input,omitempty"`
}

// Literal returns a plain string argument.
func Literal(s string) Argument {
	return Argument{Literal: s}
}

// InputArg returns an argument replaced by the location of the named input at run time.
func InputArg(input InputBinding) Argument {
	return Argument{Input: input.Name}
}

// IsInput reports whether the argument references a step input.
func (a Argument) IsInput() bool {
	return a.Input != ""
}
