// Package schema describes widget instances with JSON Schema. A Schema is
// parsed with kin-openapi and supplies the default instance, the plain-text
// fields, field descriptors for generic templates, and instance validation.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/widgets"
)

// Extension keys recognised on property schemas.
const (
	ExtensionPlainText = "x-plain-text"
	ExtensionControl   = "x-control"
	ExtensionOrder     = "x-order"
)

// Schema is a parsed widget schema.
type Schema struct {
	doc  Document
	root *openapi3.Schema
}

// Parse builds a Schema from a document.
func Parse(doc Document) (*Schema, error) {
	payload, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	root := &openapi3.Schema{}
	if err := json.Unmarshal(payload, root); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", doc.Location(), err)
	}
	if err := root.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("schema: invalid schema %s: %w", doc.Location(), err)
	}
	if !root.Type.Is(openapi3.TypeObject) && len(root.Properties) == 0 {
		return nil, fmt.Errorf("schema: %s must describe an object", doc.Location())
	}
	return &Schema{doc: doc, root: root}, nil
}

// ParseBytes parses an in-memory document labelled name.
func ParseBytes(name string, raw []byte) (*Schema, error) {
	doc, err := NewDocument(SourceFromBytes(name), raw)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// Load reads and parses name from fsys.
func Load(fsys fs.FS, name string) (*Schema, error) {
	if fsys == nil {
		return nil, errors.New("schema: filesystem is required")
	}
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	doc, err := NewDocument(SourceFromFS(name), raw)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// LoadFile reads and parses a schema from disk.
func LoadFile(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), raw)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// Document returns the source document.
func (s *Schema) Document() Document {
	return s.doc
}

// OpenAPI exposes the underlying kin-openapi schema.
func (s *Schema) OpenAPI() *openapi3.Schema {
	return s.root
}

// Title returns the schema title, if any.
func (s *Schema) Title() string {
	return strings.TrimSpace(s.root.Title)
}

// DefaultInstance collects the defaults declared on top-level properties.
func (s *Schema) DefaultInstance() instance.Instance {
	out := instance.Instance{}
	for name, ref := range s.root.Properties {
		if ref == nil || ref.Value == nil || ref.Value.Default == nil {
			continue
		}
		out[name] = ref.Value.Default
	}
	return out.Clone()
}

// PlainTextFields lists properties flagged with x-plain-text, sorted.
func (s *Schema) PlainTextFields() []string {
	var out []string
	for name, ref := range s.root.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		if flag, ok := ref.Value.Extensions[ExtensionPlainText].(bool); ok && flag {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Fields returns descriptors for the top-level properties, ordered by
// x-order and then by name.
func (s *Schema) Fields() []Field {
	return s.FieldsWith(widgets.Default())
}

// FieldsWith is Fields resolving controls through controls.
func (s *Schema) FieldsWith(controls *widgets.Registry) []Field {
	required := make(map[string]bool, len(s.root.Required))
	for _, name := range s.root.Required {
		required[name] = true
	}

	type ordered struct {
		field Field
		order float64
		set   bool
	}
	entries := make([]ordered, 0, len(s.root.Properties))
	for name, ref := range s.root.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		field := describe(name, prop, controls)
		field.Required = required[name]
		entry := ordered{field: field}
		if order, ok := toFloat(prop.Extensions[ExtensionOrder]); ok {
			entry.order, entry.set = order, true
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.set != b.set {
			return a.set
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.field.Name < b.field.Name
	})

	out := make([]Field, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.field)
	}
	return out
}

// Validate checks inst against the schema and returns every issue found.
// A nil result means the instance is valid.
func (s *Schema) Validate(inst instance.Instance) []Issue {
	normalized, err := instance.Normalize(inst)
	if err != nil {
		return []Issue{{Message: fmt.Sprintf("instance is not serializable: %v", err)}}
	}
	if normalized == nil {
		normalized = instance.Instance{}
	}
	err = s.root.VisitJSON(map[string]any(normalized), openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return collectIssues(err, nil)
}

// Issue is a single validation failure.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

func collectIssues(err error, dest []Issue) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			dest = collectIssues(item, dest)
		}
		return dest
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		issue := Issue{Message: schemaErr.Reason}
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			issue.Field = pointer[0]
		}
		if issue.Message == "" {
			issue.Message = schemaErr.Error()
		}
		return append(dest, issue)
	}
	return append(dest, Issue{Message: err.Error()})
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Humanize turns a field name into a label: snake and kebab case become
// words and the first letter is upper-cased.
func Humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	label := strings.Join(words, " ")
	if label == "" {
		return name
	}
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
