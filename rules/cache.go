package rules

import (
	"sync"
	"time"

	"github.com/google/cel-go/cel"
)

// ProgramCache memoises compiled CEL programs by expression source.
// Implementations can be swapped for shared or bounded caches.
type ProgramCache interface {
	// Get returns the cached program, false on a miss or expired entry
	Get(expression string) (cel.Program, bool)

	// Set stores a compiled program
	Set(expression string, prog cel.Program)

	// Invalidate drops every entry
	Invalidate()

	// Len returns the number of entries, expired ones included
	Len() int
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached programs
	// Set to 0 for no expiration (manual invalidation only)
	TTL time.Duration
}

// DefaultCacheConfig keeps programs until the cache is invalidated
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}

type cachedProgram struct {
	prog     cel.Program
	cachedAt time.Time
}

// InMemoryProgramCache is a map-backed ProgramCache, safe for concurrent use
type InMemoryProgramCache struct {
	entries map[string]cachedProgram
	config  CacheConfig
	now     func() time.Time
	mu      sync.RWMutex
}

// NewInMemoryProgramCache creates an empty cache
func NewInMemoryProgramCache(config CacheConfig) *InMemoryProgramCache {
	return &InMemoryProgramCache{
		entries: make(map[string]cachedProgram),
		config:  config,
		now:     time.Now,
	}
}

func (c *InMemoryProgramCache) Get(expression string) (cel.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[expression]
	if !ok {
		return nil, false
	}
	if c.config.TTL > 0 && c.now().Sub(entry.cachedAt) > c.config.TTL {
		return nil, false
	}
	return entry.prog, true
}

func (c *InMemoryProgramCache) Set(expression string, prog cel.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[expression] = cachedProgram{prog: prog, cachedAt: c.now()}
}

func (c *InMemoryProgramCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cachedProgram)
}

func (c *InMemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
