package action

import (
	"fmt"
	"sync"
)

// Registry maps action keys to handlers. It is safe for concurrent use;
// handlers are normally registered once at startup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Key]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler)}
}

// Register binds h to key, replacing any previous handler. Unknown or
// undeclared keys are rejected.
func (r *Registry) Register(key Key, h Handler) error {
	if !key.Known() {
		return fmt.Errorf("action: cannot register handler for undeclared key %q", key)
	}
	if h == nil {
		return fmt.Errorf("action: nil handler for %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(key Key, h Handler) {
	if err := r.Register(key, h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler for key.
func (r *Registry) Lookup(key Key) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	return h, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
