package command

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/liamcoop/rulepipeline/rules"
)

var (
	// ErrCannotContinue is returned by Continue when validation failed
	ErrCannotContinue = errors.New("command: cannot continue after failed validation")

	// ErrAlreadyContinued is returned by Continue on its second call
	ErrAlreadyContinued = errors.New("command: continuation already invoked")
)

// ValidationResult is the outcome of validating a command without executing
// it. Continue completes the command when validation passed.
type ValidationResult[T any] struct {
	Errors []rules.ValidationResult

	continuation func(ctx context.Context) (*ExecutionResult[T], error)
	continued    atomic.Bool
}

func newValidationResult[T any](errs []rules.ValidationResult, continuation func(context.Context) (*ExecutionResult[T], error)) *ValidationResult[T] {
	return &ValidationResult[T]{Errors: errs, continuation: continuation}
}

// CanContinue reports whether validation produced no errors
func (v *ValidationResult[T]) CanContinue() bool {
	return len(v.Errors) == 0
}

// Continue executes the validated command. It fails with ErrCannotContinue
// when validation produced errors.
func (v *ValidationResult[T]) Continue(ctx context.Context) (*ExecutionResult[T], error) {
	if !v.CanContinue() {
		return nil, ErrCannotContinue
	}
	if !v.continued.CompareAndSwap(false, true) {
		return nil, ErrAlreadyContinued
	}
	return v.continuation(ctx)
}
