package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/liamcoop/rulepipeline/command"
)

// MemoryProxy implements DataProxy using an in-memory map. Entities are
// cloned on the way in and out so callers never share stored state.
type MemoryProxy[T Entity[K], K comparable] struct {
	entities map[K]T
	order    []K
	nextID   func() K
	clone    func(T) T
	mu       sync.RWMutex
}

// NewMemoryProxy creates an empty proxy. nextID assigns ids on insert;
// clone copies an entity.
func NewMemoryProxy[T Entity[K], K comparable](nextID func() K, clone func(T) T) *MemoryProxy[T, K] {
	return &MemoryProxy[T, K]{
		entities: make(map[K]T),
		nextID:   nextID,
		clone:    clone,
	}
}

// GetAll returns every entity in insertion order
func (p *MemoryProxy[T, K]) GetAll(_ context.Context) ([]T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]T, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.clone(p.entities[id]))
	}
	return out, nil
}

func (p *MemoryProxy[T, K]) GetByID(_ context.Context, id K) (T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entity, exists := p.entities[id]
	if !exists {
		var zero T
		return zero, fmt.Errorf("id %v: %w", id, ErrNotFound)
	}
	return p.clone(entity), nil
}

// Insert assigns a new id and stores a copy of entity
func (p *MemoryProxy[T, K]) Insert(_ context.Context, entity T) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := p.clone(entity)
	stored.SetID(p.nextID())
	if v, ok := any(stored).(Versioned); ok {
		v.SetVersion(1)
	}

	id := stored.GetID()
	if _, exists := p.entities[id]; exists {
		var zero T
		return zero, command.Conflict("entity with ID %v already exists", id)
	}

	p.entities[id] = stored
	p.order = append(p.order, id)
	return p.clone(stored), nil
}

// Update replaces the stored entity. Versioned entities must carry the
// stored version; the version is then incremented. Preserver entities get
// their store-owned fields back from the stored copy.
func (p *MemoryProxy[T, K]) Update(_ context.Context, entity T) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	id := entity.GetID()
	existing, exists := p.entities[id]
	if !exists {
		return zero, fmt.Errorf("id %v: %w", id, ErrNotFound)
	}

	stored := p.clone(entity)
	if v, ok := any(stored).(Versioned); ok {
		current := any(existing).(Versioned).GetVersion()
		if v.GetVersion() != current {
			return zero, command.Concurrency("entity %v was modified (version %d, expected %d)", id, v.GetVersion(), current)
		}
		v.SetVersion(current + 1)
	}
	if pr, ok := any(stored).(Preserver[T]); ok {
		pr.Preserve(existing)
	}

	p.entities[id] = stored
	return p.clone(stored), nil
}

func (p *MemoryProxy[T, K]) Delete(_ context.Context, id K) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entities[id]; !exists {
		return fmt.Errorf("id %v: %w", id, ErrNotFound)
	}

	delete(p.entities, id)
	for i, k := range p.order {
		if k == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}
