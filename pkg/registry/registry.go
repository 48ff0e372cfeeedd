// Package registry maps widget types to form factories. Hosts build one
// Registry at startup, register the widget types they support, and ask it
// for a form whenever a widget control is opened.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-widgetform/pkg/form"
)

// ErrUnknownType is returned by Build when no factory matches and no fallback
// is configured.
var ErrUnknownType = errors.New("registry: unknown widget type")

// Factory builds a form for one widget type.
type Factory func(params form.Params) (*form.Form, error)

// Generic builds a form with the generic behavior.
func Generic(params form.Params) (*form.Form, error) {
	return form.New(params)
}

// WithStrategy returns a factory that installs strategy before building. Nil
// members of the params' own strategy are filled from it.
func WithStrategy(strategy form.Strategy) Factory {
	return func(params form.Params) (*form.Form, error) {
		if params.Strategy.Sanitize == nil {
			params.Strategy.Sanitize = strategy.Sanitize
		}
		if params.Strategy.TemplateID == nil {
			params.Strategy.TemplateID = strategy.TemplateID
		}
		if params.Strategy.LinkPropertyElements == nil {
			params.Strategy.LinkPropertyElements = strategy.LinkPropertyElements
		}
		return form.New(params)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback sets the factory used for unregistered widget types.
func WithFallback(factory Factory) Option {
	return func(r *Registry) {
		r.fallback = factory
	}
}

// Registry stores factories by widget type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

// New creates an empty registry.
func New(options ...Option) *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds a factory for widgetType. Duplicate types return an error.
func (r *Registry) Register(widgetType string, factory Factory) error {
	widgetType = strings.TrimSpace(widgetType)
	if widgetType == "" {
		return errors.New("registry: widget type is required")
	}
	if factory == nil {
		return fmt.Errorf("registry: factory for %q is required", widgetType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[widgetType]; exists {
		return fmt.Errorf("registry: widget type %q already registered", widgetType)
	}
	r.factories[widgetType] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(widgetType string, factory Factory) {
	if err := r.Register(widgetType, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered for widgetType.
func (r *Registry) Lookup(widgetType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[strings.TrimSpace(widgetType)]
	return factory, ok
}

// Has reports whether widgetType is registered.
func (r *Registry) Has(widgetType string) bool {
	_, ok := r.Lookup(widgetType)
	return ok
}

// List returns the registered widget types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs a form for widgetType, using the fallback factory for
// unregistered types.
func (r *Registry) Build(widgetType string, params form.Params) (*form.Form, error) {
	factory, ok := r.Lookup(widgetType)
	if !ok {
		r.mu.RLock()
		factory = r.fallback
		r.mu.RUnlock()
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, widgetType)
	}
	f, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("registry: build %q: %w", widgetType, err)
	}
	return f, nil
}
