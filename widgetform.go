// Package widgetform wires the widget form pieces together: configuration
// loaded from a directory, the factory registry, the bundled templates and
// optional theme selection.
package widgetform

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/goliatone/go-widgetform/pkg/config"
	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/registry"
	"github.com/goliatone/go-widgetform/pkg/render"
	"github.com/goliatone/go-widgetform/pkg/render/template"
	"github.com/goliatone/go-widgetform/pkg/templates"
)

// Form aliases form.Form for callers of the root package.
type Form = form.Form

// Params aliases form.Params.
type Params = form.Params

// Config aliases form.Config.
type Config = form.Config

// Instance aliases instance.Instance.
type Instance = instance.Instance

// ErrUnknownWidget is returned when the store has no configuration for the
// requested widget type.
var ErrUnknownWidget = errors.New("widgetform: unknown widget type")

// Option customises a Builder.
type Option func(*Builder)

// WithRegistry replaces the default registry (generic factory as fallback).
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Builder) {
		if reg != nil {
			b.registry = reg
		}
	}
}

// WithTemplates places provider ahead of the bundled templates.
func WithTemplates(provider template.Provider) Option {
	return func(b *Builder) {
		if provider != nil {
			b.templates = append(b.templates, provider)
		}
	}
}

// WithThemeSelector resolves the named theme/variant for every form built.
// Empty names select the selector's defaults.
func WithThemeSelector(selector render.ThemeSelector, name, variant string) Option {
	return func(b *Builder) {
		b.selector = selector
		b.themeName = name
		b.themeVariant = variant
	}
}

// WithTheme picks the theme/variant resolved through the configured
// selector. Load installs the store's themes as the selector.
func WithTheme(name, variant string) Option {
	return func(b *Builder) {
		b.themeName = name
		b.themeVariant = variant
	}
}

// WithLogger sets the logger handed to forms that do not carry their own.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder creates forms for the widget types of a configuration store.
type Builder struct {
	store        *config.Store
	registry     *registry.Registry
	templates    template.Chain
	selector     render.ThemeSelector
	themeName    string
	themeVariant string
	logger       *slog.Logger
}

// NewBuilder returns a builder over store. The bundled templates are always
// consulted last.
func NewBuilder(store *config.Store, options ...Option) (*Builder, error) {
	if store == nil {
		return nil, fmt.Errorf("widgetform: config store is required")
	}
	b := &Builder{
		store:    store,
		registry: registry.New(registry.WithFallback(registry.Generic)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	bundled, err := templates.Provider()
	if err != nil {
		return nil, fmt.Errorf("widgetform: bundled templates: %w", err)
	}
	b.templates = append(b.templates, bundled)
	return b, nil
}

// Load reads a configuration directory and returns a builder over it.
func Load(fsys fs.FS, options ...Option) (*Builder, error) {
	store, err := config.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	if store.Empty() {
		return nil, fmt.Errorf("widgetform: no widget configuration found")
	}
	selector, err := store.ThemeSelector()
	if err != nil {
		return nil, err
	}
	if selector != nil {
		options = append([]Option{func(b *Builder) { b.selector = selector }}, options...)
	}
	return NewBuilder(store, options...)
}

// Store returns the configuration store.
func (b *Builder) Store() *config.Store {
	return b.store
}

// Registry returns the factory registry.
func (b *Builder) Registry() *registry.Registry {
	return b.registry
}

// Types lists the configured widget types.
func (b *Builder) Types() []string {
	return b.store.Types()
}

// Build constructs the form for widgetType. Params supply the model (or
// control) and container; config, schema, templates, theme and logger are
// filled from the builder when params leave them unset.
func (b *Builder) Build(widgetType string, params form.Params) (*form.Form, error) {
	widget, ok := b.store.Widget(widgetType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, widgetType)
	}
	if params.Config.DefaultInstance == nil && params.Config.Schema == "" {
		params.Config = widget.Config
	}
	if params.Schema == nil {
		params.Schema = widget.Schema
	}
	if params.Templates == nil {
		params.Templates = b.templates
	}
	if params.Logger == nil && b.logger != nil {
		params.Logger = b.logger.With("widget_type", widgetType)
	}
	if params.Theme == nil && b.selector != nil {
		resolved, err := render.ResolveTheme(b.selector, b.themeName, b.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("widgetform: widget %q: %w", widgetType, err)
		}
		params.Theme = &resolved
	}
	return b.registry.Build(widgetType, params)
}
