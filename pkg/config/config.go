// Package config loads widget form configuration from a filesystem. Each
// JSON or YAML file declares one or more widget types with their form
// configuration, and optionally theme manifests. Widget schemas referenced by
// a configuration are loaded from the same filesystem, relative to the file
// that references them. Files below a directory named "schemas" are schema
// documents and are not read as configuration.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/render"
	"github.com/goliatone/go-widgetform/pkg/schema"
)

// SchemaDir is skipped while walking for configuration files.
const SchemaDir = "schemas"

// Widget is the loaded configuration of one widget type.
type Widget struct {
	Type   string
	Source string
	Config form.Config
	Schema *schema.Schema
}

// Store holds every widget type and theme found by LoadFS.
type Store struct {
	widgets map[string]Widget
	themes  []*theme.Manifest
}

// LoadFS walks fsys and parses JSON/YAML configuration files. When fsys is nil
// or holds no configuration files, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{widgets: make(map[string]Widget)}
	if fsys == nil {
		return store, nil
	}

	seenThemes := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if name != "." && entry.Name() == SchemaDir {
				return fs.SkipDir
			}
			return nil
		}
		if !isConfigFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", name, err)
		}
		doc, err := parseDocument(data, name)
		if err != nil {
			return err
		}

		for rawType, raw := range doc.Widgets {
			widgetType := strings.TrimSpace(rawType)
			if widgetType == "" {
				return fmt.Errorf("config: file %s defines an empty widget type", name)
			}
			if existing, exists := store.widgets[widgetType]; exists {
				return fmt.Errorf("config: duplicate widget type %q (files %s and %s)", widgetType, existing.Source, name)
			}
			widget, err := normaliseWidget(fsys, raw, doc.L10n, widgetType, name)
			if err != nil {
				return err
			}
			store.widgets[widgetType] = widget
		}

		for _, raw := range doc.Themes {
			manifest, err := raw.manifest()
			if err != nil {
				return fmt.Errorf("config: file %s: %w", name, err)
			}
			if previous, exists := seenThemes[manifest.Name]; exists {
				return fmt.Errorf("config: duplicate theme %q (files %s and %s)", manifest.Name, previous, name)
			}
			seenThemes[manifest.Name] = name
			store.themes = append(store.themes, manifest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Widget returns the configuration for widgetType.
func (s *Store) Widget(widgetType string) (Widget, bool) {
	if s == nil {
		return Widget{}, false
	}
	w, ok := s.widgets[widgetType]
	return w, ok
}

// Types lists the configured widget types, sorted.
func (s *Store) Types() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.widgets))
	for widgetType := range s.widgets {
		out = append(out, widgetType)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds any widget types.
func (s *Store) Empty() bool {
	return s == nil || len(s.widgets) == 0
}

// Themes returns the theme manifests in load order.
func (s *Store) Themes() []*theme.Manifest {
	if s == nil {
		return nil
	}
	return append([]*theme.Manifest(nil), s.themes...)
}

// ThemeSelector returns a selector over the loaded manifests, or nil when no
// theme was declared.
func (s *Store) ThemeSelector() (*render.ManifestSelector, error) {
	if s == nil || len(s.themes) == 0 {
		return nil, nil
	}
	return render.NewManifestSelector(s.themes...)
}

type documentFile struct {
	L10n    map[string]string      `json:"l10n" yaml:"l10n"`
	Widgets map[string]form.Config `json:"widgets" yaml:"widgets"`
	Themes  []themeFile            `json:"themes" yaml:"themes"`
}

type assetsFile struct {
	Prefix string            `json:"prefix" yaml:"prefix"`
	Files  map[string]string `json:"files" yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
	Assets    assetsFile        `json:"assets" yaml:"assets"`
}

type themeFile struct {
	Name      string                 `json:"name" yaml:"name"`
	Version   string                 `json:"version" yaml:"version"`
	Tokens    map[string]string      `json:"tokens" yaml:"tokens"`
	Templates map[string]string      `json:"templates" yaml:"templates"`
	Assets    assetsFile             `json:"assets" yaml:"assets"`
	Variants  map[string]variantFile `json:"variants" yaml:"variants"`
}

func (t themeFile) manifest() (*theme.Manifest, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return nil, fmt.Errorf("theme name is required")
	}
	m := &theme.Manifest{
		Name:      name,
		Version:   t.Version,
		Tokens:    t.Tokens,
		Templates: t.Templates,
		Assets:    theme.Assets{Prefix: t.Assets.Prefix, Files: t.Assets.Files},
	}
	if len(t.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(t.Variants))
		for key, v := range t.Variants {
			m.Variants[key] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return m, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

func normaliseWidget(fsys fs.FS, raw form.Config, shared map[string]string, widgetType, source string) (Widget, error) {
	widget := Widget{Type: widgetType, Source: source, Config: raw}

	if len(shared) > 0 {
		l10n := make(map[string]string, len(shared)+len(raw.L10n))
		for key, value := range shared {
			l10n[key] = value
		}
		for key, value := range raw.L10n {
			l10n[key] = value
		}
		widget.Config.L10n = l10n
	}

	if raw.DefaultInstance != nil {
		normalized, err := instance.Normalize(raw.DefaultInstance)
		if err != nil {
			return Widget{}, fmt.Errorf("config: widget %q (file %s) default_instance: %w", widgetType, source, err)
		}
		widget.Config.DefaultInstance = normalized
	}

	if ref := strings.TrimSpace(raw.Schema); ref != "" {
		schemaPath := path.Clean(path.Join(path.Dir(source), ref))
		s, err := schema.Load(fsys, schemaPath)
		if err != nil {
			return Widget{}, fmt.Errorf("config: widget %q (file %s): %w", widgetType, source, err)
		}
		widget.Schema = s
	} else if raw.DefaultInstance == nil {
		return Widget{}, fmt.Errorf("config: widget %q (file %s) needs default_instance or schema", widgetType, source)
	}
	return widget, nil
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
