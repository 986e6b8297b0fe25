package command

import "github.com/liamcoop/rulepipeline/rules"

// Void is the value type of commands that produce no value
type Void = struct{}

// ExecutionResult is the only shape a command returns. Success implies no
// errors; failure implies at least one error and a zero Value.
type ExecutionResult[T any] struct {
	Success bool                     `json:"success"`
	Errors  []rules.ValidationResult `json:"errors,omitempty"`
	Value   T                        `json:"value,omitempty"`

	// Code is set when the failure came from a Fault
	Code FaultCode `json:"code,omitempty"`
}

// Succeeded creates a successful result carrying value
func Succeeded[T any](value T) *ExecutionResult[T] {
	return &ExecutionResult[T]{Success: true, Value: value}
}

// Failed creates a failed result. errs must not be empty.
func Failed[T any](errs ...rules.ValidationResult) *ExecutionResult[T] {
	out := make([]rules.ValidationResult, len(errs))
	copy(out, errs)
	return &ExecutionResult[T]{Success: false, Errors: out}
}

// fromFault converts a fault into a single-error failed result
func fromFault[T any](f *Fault) *ExecutionResult[T] {
	res := Failed[T](rules.NewValidationResult(f.Message))
	res.Code = f.Code
	return res
}

// FirstError returns the first error message, or "" on success
func (r *ExecutionResult[T]) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].ErrorMessage
}
