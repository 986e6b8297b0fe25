package command

import "github.com/google/uuid"

// ExecutionContext carries state from one stage of a single command
// invocation to the next, typically an entity loaded while gathering rules
// and modified during Execute. A fresh context is created per invocation and
// never shared.
type ExecutionContext[T any] struct {
	id        string
	entity    T
	hasEntity bool
	data      map[string]any
}

// NewExecutionContext creates an empty context with a new invocation id
func NewExecutionContext[T any]() *ExecutionContext[T] {
	return &ExecutionContext[T]{
		id:   uuid.NewString(),
		data: make(map[string]any),
	}
}

// ID identifies the invocation in logs
func (ec *ExecutionContext[T]) ID() string { return ec.id }

// Entity returns the current entity and whether one was set
func (ec *ExecutionContext[T]) Entity() (T, bool) {
	return ec.entity, ec.hasEntity
}

func (ec *ExecutionContext[T]) SetEntity(entity T) {
	ec.entity = entity
	ec.hasEntity = true
}

func (ec *ExecutionContext[T]) Get(key string) (any, bool) {
	v, ok := ec.data[key]
	return v, ok
}

func (ec *ExecutionContext[T]) Set(key string, value any) {
	ec.data[key] = value
}

// Lookup returns the value stored under key when it has type V
func Lookup[V, T any](ec *ExecutionContext[T], key string) (V, bool) {
	raw, ok := ec.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}
