package template

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when a provider has no template for an id.
var ErrTemplateNotFound = errors.New("template: not found")

// Func renders a resolved template with data.
type Func func(data any) (string, error)

// Provider resolves template ids. Lookup of an unknown id must fail with an
// error wrapping ErrTemplateNotFound.
type Provider interface {
	Template(id string) (Func, error)
}

// TemplateRenderer is the engine contract shared by template backends.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// MapProvider is an in-memory Provider, convenient for hosts that assemble
// templates in code and for tests.
type MapProvider struct {
	mu        sync.RWMutex
	templates map[string]Func
}

// NewMapProvider returns a provider seeded with templates.
func NewMapProvider(templates map[string]Func) *MapProvider {
	p := &MapProvider{templates: make(map[string]Func, len(templates))}
	for id, fn := range templates {
		p.Set(id, fn)
	}
	return p
}

// Set registers or replaces a template.
func (p *MapProvider) Set(id string, fn Func) {
	id = strings.TrimSpace(id)
	if id == "" || fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates[id] = fn
}

// Template implements Provider.
func (p *MapProvider) Template(id string) (Func, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn, ok := p.templates[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return fn, nil
}

// IDs returns the registered ids in lexical order.
func (p *MapProvider) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.templates))
	for id := range p.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Static returns a Func that ignores its data.
func Static(markup string) Func {
	return func(any) (string, error) {
		return markup, nil
	}
}

// Chain consults providers in order and returns the first hit.
type Chain []Provider

// Template implements Provider.
func (c Chain) Template(id string) (Func, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		fn, err := p.Template(id)
		if err == nil {
			return fn, nil
		}
		if !errors.Is(err, ErrTemplateNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}
