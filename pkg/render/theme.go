package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Template keys a theme manifest can override.
const (
	ThemeFormTemplateKey          = "widgets.form"
	ThemeNotificationsTemplateKey = "widgets.notifications"
)

// ThemeSelector is the subset of go-theme's selector the forms rely on.
type ThemeSelector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

// ManifestSelector is a ThemeSelector over an in-memory set of manifests.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

// NewManifestSelector indexes manifests by name. The first manifest is the
// default theme unless WithDefault overrides it.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		name := strings.TrimSpace(manifest.Name)
		if name == "" {
			return nil, errors.New("render: theme manifest name is required")
		}
		if _, exists := s.manifests[name]; exists {
			return nil, fmt.Errorf("render: theme %q already registered", name)
		}
		s.manifests[name] = manifest
		if s.defaultTheme == "" {
			s.defaultTheme = name
		}
	}
	return s, nil
}

// WithDefault sets the theme and variant used when Select receives blanks.
func (s *ManifestSelector) WithDefault(name, variant string) *ManifestSelector {
	s.defaultTheme = name
	s.defaultVariant = variant
	return s
}

// Select implements ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = s.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Theme is the resolved view of a go-theme selection: template overrides,
// design tokens and the CSS custom properties derived from them.
type Theme struct {
	Name      string            `json:"name"`
	Variant   string            `json:"variant"`
	Templates map[string]string `json:"templates,omitempty"`
	Tokens    map[string]string `json:"tokens,omitempty"`
	CSSVars   map[string]string `json:"css_vars,omitempty"`
}

// ResolveTheme selects a theme and flattens the manifest with its variant
// overrides. Variant entries win over base manifest entries.
func ResolveTheme(selector ThemeSelector, name, variant string) (Theme, error) {
	if selector == nil {
		return Theme{}, errors.New("render: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return Theme{}, fmt.Errorf("render: select theme %q/%q: %w", name, variant, err)
	}
	return ThemeFromSelection(selection), nil
}

// ThemeFromSelection converts a go-theme selection.
func ThemeFromSelection(selection *theme.Selection) Theme {
	if selection == nil {
		return Theme{}
	}
	out := Theme{
		Name:    selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return out
	}
	if out.Name == "" {
		out.Name = manifest.Name
	}
	out.Templates = mergeStringMaps(manifest.Templates)
	out.Tokens = mergeStringMaps(manifest.Tokens)
	if v, ok := manifest.Variants[out.Variant]; ok {
		out.Templates = mergeStringMaps(out.Templates, v.Templates)
		out.Tokens = mergeStringMaps(out.Tokens, v.Tokens)
	}
	if len(out.Tokens) > 0 {
		out.CSSVars = make(map[string]string, len(out.Tokens))
		for key, value := range out.Tokens {
			out.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
		}
	}
	return out
}

// Template returns the override for key, if any.
func (t Theme) Template(key string) (string, bool) {
	value, ok := t.Templates[key]
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// CSSVarsStyle renders the CSS variables as an inline style declaration with
// deterministic ordering.
func (t Theme) CSSVarsStyle() string {
	if len(t.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.CSSVars))
	for key := range t.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+t.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

func mergeStringMaps(maps ...map[string]string) map[string]string {
	var out map[string]string
	for _, m := range maps {
		for key, value := range m {
			if out == nil {
				out = make(map[string]string)
			}
			out[key] = value
		}
	}
	return out
}
