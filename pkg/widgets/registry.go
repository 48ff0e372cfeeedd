// Package widgets resolves which form control renders a widget field.
package widgets

import (
	"sort"
	"strings"
	"sync"
)

// Built-in control identifiers. Apart from textarea and select they double as
// <input type> values in the bundled form template.
const (
	ControlText     = "text"
	ControlTextarea = "textarea"
	ControlNumber   = "number"
	ControlCheckbox = "checkbox"
	ControlSelect   = "select"
	ControlURL      = "url"
	ControlEmail    = "email"
)

// Candidate is the view of a field that matchers decide on. Type follows JSON
// Schema names ("string", "boolean", "integer", "number", "array").
type Candidate struct {
	Name    string
	Type    string
	Format  string
	HasEnum bool
	// Hint is an explicit control request and always wins.
	Hint string
}

// FromValue builds a candidate from a default-instance value when no schema
// describes the field.
func FromValue(name string, value any) Candidate {
	c := Candidate{Name: name, Type: "string"}
	switch value.(type) {
	case bool:
		c.Type = "boolean"
	case int, int32, int64:
		c.Type = "integer"
	case float32, float64:
		c.Type = "number"
	case []any, []string:
		c.Type = "array"
	case map[string]any:
		c.Type = "object"
	}
	return c
}

// Matcher decides whether a control should render the candidate.
type Matcher func(c Candidate) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects controls for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry holding the built-in matchers.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided control name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the control for c. Explicit hints are honoured before
// matcher evaluation.
func (r *Registry) Resolve(c Candidate) (string, bool) {
	if hint := strings.TrimSpace(c.Hint); hint != "" {
		return hint, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	if len(rules) == 0 {
		return "", false
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(c) {
			return entry.name, true
		}
	}
	return "", false
}

// ResolveOr returns the resolved control, or fallback.
func (r *Registry) ResolveOr(c Candidate, fallback string) string {
	if control, ok := r.Resolve(c); ok {
		return control
	}
	return fallback
}

func (r *Registry) registerBuiltins() {
	r.Register(ControlCheckbox, 90, func(c Candidate) bool {
		return c.Type == "boolean"
	})

	r.Register(ControlSelect, 80, func(c Candidate) bool {
		return c.Type == "array" || c.HasEnum
	})

	r.Register(ControlNumber, 70, func(c Candidate) bool {
		return c.Type == "integer" || c.Type == "number"
	})

	r.Register(ControlURL, 60, func(c Candidate) bool {
		format := normalizedFormat(c)
		return format == "uri" || format == "url"
	})

	r.Register(ControlEmail, 60, func(c Candidate) bool {
		return normalizedFormat(c) == "email"
	})

	r.Register(ControlTextarea, 50, func(c Candidate) bool {
		switch normalizedFormat(c) {
		case "textarea", "html", "markdown":
			return true
		}
		return false
	})
}

func normalizedFormat(c Candidate) string {
	if c.Type != "" && c.Type != "string" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.Format))
}
