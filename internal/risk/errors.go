package risk

import (
	"errors"
	"fmt"
)

// Failure classes. The first three are reported by the validator before the
// calculation runs; the calculation itself only ever returns
// ErrMissingArgument or ErrArithmeticDegenerate.
var (
	ErrMissingArgument              = errors.New("missing argument")
	ErrOutOfRangeArgument           = errors.New("argument out of range")
	ErrInconsistentLegConfiguration = errors.New("inconsistent order legs")
	ErrArithmeticDegenerate         = errors.New("degenerate arithmetic")
)

// CalcError reports the calculation step that failed and the offending value.
type CalcError struct {
	Op    string
	Value float64
	Err   error
}

func (e *CalcError) Error() string {
	return fmt.Sprintf("risk %s: %v (value %g)", e.Op, e.Err, e.Value)
}

func (e *CalcError) Unwrap() error {
	return e.Err
}

func degenerate(op string, value float64) error {
	return &CalcError{Op: op, Value: value, Err: ErrArithmeticDegenerate}
}
