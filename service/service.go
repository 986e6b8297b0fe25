package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/liamcoop/rulepipeline/command"
	"github.com/liamcoop/rulepipeline/rules"
)

// Hooks supply extra rules per operation. They run after the default rules
// and may stash state in the ExecutionContext for the execute stage.
// PrepareInsert and PrepareUpdate run in the initialize stage, before any
// rule, and may fill in fields on the entity the command owns.
type Hooks[T Entity[K], K comparable] struct {
	PrepareInsert func(ctx context.Context, entity T) error
	PrepareUpdate func(ctx context.Context, entity T) error

	GetByID func(ctx context.Context, id K, ec *command.ExecutionContext[T]) ([]rules.Rule, error)
	Insert  func(ctx context.Context, entity T, ec *command.ExecutionContext[T]) ([]rules.Rule, error)
	Update  func(ctx context.Context, entity T, ec *command.ExecutionContext[T]) ([]rules.Rule, error)
	Delete  func(ctx context.Context, id K, ec *command.ExecutionContext[command.Void]) ([]rules.Rule, error)
}

// Config configures a Service
type Config[T Entity[K], K comparable] struct {
	// EntityName is used in messages and as the default member name
	EntityName string

	// Validate enables struct-tag validation on insert and update
	Validate *validator.Validate

	Hooks Hooks[T, K]
}

// Service builds CRUD commands over a DataProxy. It holds no per-command
// state; every method returns a new command.
type Service[T Entity[K], K comparable] struct {
	proxy      DataProxy[T, K]
	entityName string
	validate   *validator.Validate
	hooks      Hooks[T, K]
}

// New creates a Service around proxy
func New[T Entity[K], K comparable](proxy DataProxy[T, K], cfg Config[T, K]) *Service[T, K] {
	name := cfg.EntityName
	if name == "" {
		name = "entity"
	}
	return &Service[T, K]{
		proxy:      proxy,
		entityName: name,
		validate:   cfg.Validate,
		hooks:      cfg.Hooks,
	}
}

// Proxy returns the underlying data proxy
func (s *Service[T, K]) Proxy() DataProxy[T, K] { return s.proxy }

func (s *Service[T, K]) EntityName() string { return s.entityName }

func (s *Service[T, K]) opts(op string) []command.Option {
	return []command.Option{
		command.WithName(s.entityName + "." + op),
		command.WithEntityName(s.entityName),
	}
}

// GetAllCommand lists every entity
func (s *Service[T, K]) GetAllCommand() *command.Pipeline[[]T] {
	return command.NewServiceCommand(command.ServiceCommand[[]T]{
		OnExecute: func(ctx context.Context, _ *command.ExecutionContext[[]T]) ([]T, error) {
			return s.proxy.GetAll(ctx)
		},
	}, s.opts("getAll")...)
}

// GetByIDCommand loads one entity. A missing entity is a NotFound fault.
func (s *Service[T, K]) GetByIDCommand(id K) *command.Pipeline[T] {
	return command.NewServiceCommand(command.ServiceCommand[T]{
		OnGetRules: func(ctx context.Context, ec *command.ExecutionContext[T]) ([]rules.Rule, error) {
			rs := []rules.Rule{rules.Required("ID", id)}
			return s.withHook(rs, s.hooks.GetByID != nil, func() ([]rules.Rule, error) {
				return s.hooks.GetByID(ctx, id, ec)
			})
		},
		OnExecute: func(ctx context.Context, _ *command.ExecutionContext[T]) (T, error) {
			entity, err := s.proxy.GetByID(ctx, id)
			return entity, s.translate(err, id)
		},
	}, s.opts("getByID")...)
}

// InsertCommand validates and stores a new entity
func (s *Service[T, K]) InsertCommand(entity T) *command.Pipeline[T] {
	return command.NewServiceCommand(command.ServiceCommand[T]{
		OnInitialize: s.prepare(entity, s.hooks.PrepareInsert),
		OnGetRules: func(ctx context.Context, ec *command.ExecutionContext[T]) ([]rules.Rule, error) {
			if isNil(entity) {
				return []rules.Rule{rules.Invalid(fmt.Sprintf("%s is required", s.entityName))}, nil
			}
			var rs []rules.Rule
			if s.validate != nil {
				rs = append(rs, rules.Struct(s.validate, entity))
			}
			return s.withHook(rs, s.hooks.Insert != nil, func() ([]rules.Rule, error) {
				return s.hooks.Insert(ctx, entity, ec)
			})
		},
		OnExecute: func(ctx context.Context, _ *command.ExecutionContext[T]) (T, error) {
			return s.proxy.Insert(ctx, entity)
		},
	}, s.opts("insert")...)
}

// UpdateCommand validates and replaces an existing entity. Struct
// validation only runs once the ID is known to be present.
func (s *Service[T, K]) UpdateCommand(entity T) *command.Pipeline[T] {
	return command.NewServiceCommand(command.ServiceCommand[T]{
		OnInitialize: s.prepare(entity, s.hooks.PrepareUpdate),
		OnGetRules: func(ctx context.Context, ec *command.ExecutionContext[T]) ([]rules.Rule, error) {
			if isNil(entity) {
				return []rules.Rule{rules.Invalid(fmt.Sprintf("%s is required", s.entityName))}, nil
			}
			idRule := rules.Required("ID", entity.GetID())
			if s.validate != nil {
				idRule.IfValidThenValidate(rules.Struct(s.validate, entity))
			}
			return s.withHook([]rules.Rule{idRule}, s.hooks.Update != nil, func() ([]rules.Rule, error) {
				return s.hooks.Update(ctx, entity, ec)
			})
		},
		OnExecute: func(ctx context.Context, _ *command.ExecutionContext[T]) (T, error) {
			updated, err := s.proxy.Update(ctx, entity)
			return updated, s.translate(err, entity.GetID())
		},
	}, s.opts("update")...)
}

// DeleteCommand removes an entity
func (s *Service[T, K]) DeleteCommand(id K) *command.Pipeline[command.Void] {
	return command.NewServiceCommand(command.ServiceCommand[command.Void]{
		OnGetRules: func(ctx context.Context, ec *command.ExecutionContext[command.Void]) ([]rules.Rule, error) {
			rs := []rules.Rule{rules.Required("ID", id)}
			return s.withHook(rs, s.hooks.Delete != nil, func() ([]rules.Rule, error) {
				return s.hooks.Delete(ctx, id, ec)
			})
		},
		OnExecute: func(ctx context.Context, _ *command.ExecutionContext[command.Void]) (command.Void, error) {
			return command.Void{}, s.translate(s.proxy.Delete(ctx, id), id)
		},
	}, s.opts("delete")...)
}

func (s *Service[T, K]) withHook(rs []rules.Rule, present bool, hook func() ([]rules.Rule, error)) ([]rules.Rule, error) {
	if !present {
		return rs, nil
	}
	extra, err := hook()
	if err != nil {
		return nil, err
	}
	return append(rs, extra...), nil
}

func (s *Service[T, K]) prepare(entity T, hook func(context.Context, T) error) func(context.Context, *command.ExecutionContext[T]) error {
	if hook == nil {
		return nil
	}
	return func(ctx context.Context, _ *command.ExecutionContext[T]) error {
		if isNil(entity) {
			return nil
		}
		return hook(ctx, entity)
	}
}

func (s *Service[T, K]) translate(err error, id K) error {
	return NotFoundFault(err, s.entityName, id)
}

// NotFoundFault turns a proxy miss into a NotFound fault naming the entity.
// Other errors, faults included, pass through unchanged.
func NotFoundFault(err error, entityName string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return command.NotFound("%s %v not found", entityName, id).Wrap(err)
	}
	return err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
