// Package handler holds the task handler registry and the built-in
// task implementations.
package handler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/target/tasker/internal/core"
)

// Registry maps task-type names to their handlers. Registration happens
// at startup; Resolve is safe for concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]core.Handler
}

var _ core.HandlerResolver = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]core.Handler)}
}

// Register binds a handler to a task-type name. Registering the same name
// twice is a programming error and returns an error rather than silently
// replacing the first handler.
func (r *Registry) Register(name string, h core.Handler) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler for %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(name string, h core.Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Resolve looks up the handler for a task-type name.
func (r *Registry) Resolve(name string) (core.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered task-type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
