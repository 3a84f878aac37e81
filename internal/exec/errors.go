package exec

import (
	"errors"
	"fmt"

	"github.com/san-kum/gridlab/internal/plan"
)

// Runtime evaluation errors.
var (
	// ErrNonFinite indicates a stencil evaluation produced NaN or Inf.
	ErrNonFinite = errors.New("exec: evaluation produced a non-finite value")

	// ErrBufferMismatch indicates the initial buffer does not fit the plan's
	// domain or stencil radius.
	ErrBufferMismatch = errors.New("exec: initial buffer does not match plan")
)

// EvaluationError identifies the chunk whose evaluation failed. The run's
// output buffers are discarded; partial state is never returned.
type EvaluationError struct {
	Region  plan.Region
	Step    int
	Wrapped error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("chunk %v step %d: %v", e.Region, e.Step, e.Wrapped)
}

func (e *EvaluationError) Unwrap() error { return e.Wrapped }
