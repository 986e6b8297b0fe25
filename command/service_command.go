package command

import (
	"context"

	"github.com/liamcoop/rulepipeline/rules"
)

// ServiceCommand assembles a command from functions instead of a new
// Handler type. Every field is optional: a missing hook does nothing, and
// OnValidate takes precedence over OnGetRules.
type ServiceCommand[T any] struct {
	OnInitialize func(ctx context.Context, ec *ExecutionContext[T]) error
	OnValidate   func(ctx context.Context, ec *ExecutionContext[T]) ([]rules.ValidationResult, error)
	OnGetRules   func(ctx context.Context, ec *ExecutionContext[T]) ([]rules.Rule, error)
	OnExecute    func(ctx context.Context, ec *ExecutionContext[T]) (T, error)

	entityName string
}

// NewServiceCommand creates a Pipeline around sc
func NewServiceCommand[T any](sc ServiceCommand[T], opts ...Option) *Pipeline[T] {
	o := buildOptions(opts)
	sc.entityName = o.entityName
	return &Pipeline[T]{
		handler:    &sc,
		name:       o.name,
		entityName: o.entityName,
	}
}

func (sc *ServiceCommand[T]) Initialize(ctx context.Context, ec *ExecutionContext[T]) error {
	if sc.OnInitialize == nil {
		return nil
	}
	return sc.OnInitialize(ctx, ec)
}

func (sc *ServiceCommand[T]) Validate(ctx context.Context, ec *ExecutionContext[T]) ([]rules.ValidationResult, error) {
	switch {
	case sc.OnValidate != nil:
		return sc.OnValidate(ctx, ec)
	case sc.OnGetRules != nil:
		rs, err := sc.OnGetRules(ctx, ec)
		if err != nil {
			return nil, err
		}
		return rules.Validate(ctx, sc.entityName, rs...)
	}
	return nil, nil
}

func (sc *ServiceCommand[T]) Execute(ctx context.Context, ec *ExecutionContext[T]) (T, error) {
	if sc.OnExecute == nil {
		var zero T
		return zero, nil
	}
	return sc.OnExecute(ctx, ec)
}
