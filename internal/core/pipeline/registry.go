package pipeline

import (
	"context"
	"fmt"
)

// =============================================================================
// Handlers
// =============================================================================

// Handler is the single piece of orchestration logic bound to one
// request type. It receives the request, the active unit of work, and
// the caller's context; it returns the success value or a typed error.
type Handler interface {
	Handle(ctx context.Context, req Request, uow UnitOfWork) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request, uow UnitOfWork) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, req Request, uow UnitOfWork) (any, error) {
	return f(ctx, req, uow)
}

// =============================================================================
// Registry
// =============================================================================

// Registration binds one request type to its handler. New produces a
// fresh request value for payload decoding at the transport edge.
type Registration struct {
	Name    string
	Kind    Kind
	New     func() Request
	Handler Handler
}

// Registry is the immutable request-name→handler mapping. It is
// populated once at startup; after the first dispatch it is read-only,
// so concurrent lookups need no locking. Configuration mistakes
// (duplicate or incomplete registrations) surface as errors from Add,
// at startup rather than at request time.
type Registry struct {
	regs  map[string]Registration
	names []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]Registration)}
}

// Add registers a request type. Registering the same name twice, or an
// incomplete registration, is a configuration error.
func (r *Registry) Add(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("registry: registration has no name")
	}
	if reg.Kind != Command && reg.Kind != Query {
		return fmt.Errorf("registry: %s: kind must be command or query", reg.Name)
	}
	if reg.New == nil {
		return fmt.Errorf("registry: %s: New constructor is required", reg.Name)
	}
	if reg.Handler == nil {
		return fmt.Errorf("registry: %s: handler is required", reg.Name)
	}
	if _, exists := r.regs[reg.Name]; exists {
		return fmt.Errorf("registry: %s: handler already registered", reg.Name)
	}
	r.regs[reg.Name] = reg
	r.names = append(r.names, reg.Name)
	return nil
}

// Lookup resolves a registration by request name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	reg, ok := r.regs[name]
	return reg, ok
}

// Names returns the registered request names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	return len(r.regs)
}
