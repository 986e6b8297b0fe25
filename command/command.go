package command

import (
	"context"
	"fmt"

	"github.com/liamcoop/rulepipeline/internal/logger"
	"github.com/liamcoop/rulepipeline/rules"
)

// Command is a business operation that validates and then executes
type Command[T any] interface {
	Execute(ctx context.Context) (*ExecutionResult[T], error)
}

// SupportsValidation is implemented by commands that can validate without
// executing
type SupportsValidation[T any] interface {
	Validate(ctx context.Context) (*ValidationResult[T], error)
}

// Handler holds a command's application logic. It may also implement
// Initializer and either Validator or RuleProvider; the Pipeline uses
// whichever it finds.
type Handler[T any] interface {
	Execute(ctx context.Context, ec *ExecutionContext[T]) (T, error)
}

// Initializer runs before validation
type Initializer[T any] interface {
	Initialize(ctx context.Context, ec *ExecutionContext[T]) error
}

// Validator returns validation results directly
type Validator[T any] interface {
	Validate(ctx context.Context, ec *ExecutionContext[T]) ([]rules.ValidationResult, error)
}

// RuleProvider supplies the rules the Pipeline validates
type RuleProvider[T any] interface {
	GetRules(ctx context.Context, ec *ExecutionContext[T]) ([]rules.Rule, error)
}

// Pipeline drives a Handler through initialization, validation and
// execution. A Pipeline holds no per-invocation state and may be executed
// more than once; each call gets its own ExecutionContext.
type Pipeline[T any] struct {
	handler    Handler[T]
	name       string
	entityName string
}

var (
	_ Command[Void]            = (*Pipeline[Void])(nil)
	_ SupportsValidation[Void] = (*Pipeline[Void])(nil)
)

// New creates a Pipeline around handler
func New[T any](handler Handler[T], opts ...Option) *Pipeline[T] {
	o := buildOptions(opts)
	return &Pipeline[T]{
		handler:    handler,
		name:       o.name,
		entityName: o.entityName,
	}
}

// Name identifies the command in logs
func (p *Pipeline[T]) Name() string { return p.name }

// Execute runs the whole pipeline. Validation failures and faults are
// reported in the result; any other error is returned.
func (p *Pipeline[T]) Execute(ctx context.Context) (*ExecutionResult[T], error) {
	ec := NewExecutionContext[T]()
	errs, err := p.validate(ctx, ec)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return Failed[T](errs...), nil
	}
	return p.complete(ctx, ec)
}

// Validate runs initialization and validation only. The returned result can
// complete the command with the same ExecutionContext.
func (p *Pipeline[T]) Validate(ctx context.Context) (*ValidationResult[T], error) {
	ec := NewExecutionContext[T]()
	errs, err := p.validate(ctx, ec)
	if err != nil {
		return nil, err
	}
	return newValidationResult(errs, func(ctx context.Context) (*ExecutionResult[T], error) {
		return p.complete(ctx, ec)
	}), nil
}

func (p *Pipeline[T]) validate(ctx context.Context, ec *ExecutionContext[T]) ([]rules.ValidationResult, error) {
	log := logger.With("command", p.name, "invocation", ec.ID())

	if initializer, ok := p.handler.(Initializer[T]); ok {
		if err := initializer.Initialize(ctx, ec); err != nil {
			logger.UnexpectedErrors.Add(1)
			log.Error("command initialization failed", "error", err)
			return nil, fmt.Errorf("%s: initialize: %w", p.name, err)
		}
	}

	var (
		errs []rules.ValidationResult
		err  error
	)
	switch h := p.handler.(type) {
	case Validator[T]:
		errs, err = h.Validate(ctx, ec)
	case RuleProvider[T]:
		var rs []rules.Rule
		rs, err = h.GetRules(ctx, ec)
		if err == nil {
			errs, err = rules.Validate(ctx, p.entityName, rs...)
		}
	}
	if err != nil {
		logger.UnexpectedErrors.Add(1)
		log.Error("command validation failed unexpectedly", "error", err)
		return nil, fmt.Errorf("%s: validate: %w", p.name, err)
	}

	if len(errs) > 0 {
		logger.ValidationFailures.Add(1)
		log.Debug("command rejected by validation", "errors", len(errs), "first", errs[0].ErrorMessage)
	}
	return errs, nil
}

// complete executes the handler and composes the result. It is the only
// place a Fault is converted.
func (p *Pipeline[T]) complete(ctx context.Context, ec *ExecutionContext[T]) (*ExecutionResult[T], error) {
	log := logger.With("command", p.name, "invocation", ec.ID())
	logger.CommandsExecuted.Add(1)

	value, err := p.handler.Execute(ctx, ec)
	if err != nil {
		if f, ok := AsFault(err); ok {
			logger.FaultsConverted.Add(1)
			log.Debug("command raised fault", "code", f.Code, "message", f.Message)
			return fromFault[T](f), nil
		}
		logger.UnexpectedErrors.Add(1)
		log.Error("command execution failed", "error", err)
		return nil, fmt.Errorf("%s: execute: %w", p.name, err)
	}

	log.Debug("command completed")
	return Succeeded(value), nil
}
