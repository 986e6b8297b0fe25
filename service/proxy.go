package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a DataProxy when the entity does not exist
var ErrNotFound = errors.New("entity not found")

// Entity is anything a Service can manage
type Entity[K comparable] interface {
	GetID() K
	SetID(id K)
}

// Versioned entities get optimistic concurrency checks on update
type Versioned interface {
	GetVersion() int64
	SetVersion(v int64)
}

// Preserver entities keep fields owned by the store, such as a creation
// time, across updates. Preserve copies them from the stored entity.
type Preserver[T any] interface {
	Preserve(stored T)
}

// DataProxy is the data-access boundary of a Service. Implementations must
// be safe for concurrent use; commands running in parallel share one proxy.
type DataProxy[T Entity[K], K comparable] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id K) (T, error)
	Insert(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id K) error
}
