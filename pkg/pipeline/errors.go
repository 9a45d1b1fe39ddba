package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrPipelineNameMustBeSet = errors.New("pipeline name must be set")
	ErrParameterMustBeSet    = errors.New("parameter must be set")
	ErrStepNameMustBeSet     = errors.New("step name must be set")
	ErrDuplicateStep         = errors.New("step already exists")
	ErrDuplicateParameter    = errors.New("parameter already exists")
)

// ValidationError lists every referential integrity problem found in a pipeline.
type ValidationError struct {
	Pipeline string
	Issues   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline %q has %d validation error(s):\n  %s",
		e.Pipeline, len(e.Issues), strings.Join(e.Issues, "\n  "))
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
