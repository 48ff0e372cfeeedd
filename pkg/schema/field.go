package schema

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/widgets"
)

// Controls produced by field inference.
const (
	ControlText     = widgets.ControlText
	ControlTextarea = widgets.ControlTextarea
	ControlNumber   = widgets.ControlNumber
	ControlCheckbox = widgets.ControlCheckbox
	ControlSelect   = widgets.ControlSelect
	ControlURL      = widgets.ControlURL
	ControlEmail    = widgets.ControlEmail
)

// Field describes one instance field for generic form templates.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Control     string   `json:"control"`
	Multiple    bool     `json:"multiple,omitempty"`
	Required    bool     `json:"required,omitempty"`
	PlainText   bool     `json:"plain_text,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
}

// Option is a choice of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func describe(name string, prop *openapi3.Schema, controls *widgets.Registry) Field {
	field := Field{
		Name:        name,
		Label:       strings.TrimSpace(prop.Title),
		Description: strings.TrimSpace(prop.Description),
		Min:         prop.Min,
		Max:         prop.Max,
	}
	if field.Label == "" {
		field.Label = Humanize(name)
	}
	if flag, ok := prop.Extensions[ExtensionPlainText].(bool); ok {
		field.PlainText = flag
	}

	enum := prop.Enum
	if prop.Type.Is(openapi3.TypeArray) {
		field.Multiple = true
		if prop.Items != nil && prop.Items.Value != nil {
			enum = prop.Items.Value.Enum
		}
	}
	candidate := widgets.Candidate{
		Name:    name,
		Type:    schemaType(prop),
		Format:  prop.Format,
		HasEnum: len(enum) > 0,
	}
	if hint, ok := prop.Extensions[ExtensionControl].(string); ok {
		candidate.Hint = hint
	}
	field.Control = controls.ResolveOr(candidate, ControlText)

	for _, value := range enum {
		label := fmt.Sprint(value)
		field.Options = append(field.Options, Option{Value: label, Label: label})
	}
	return field
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil || len(*prop.Type) == 0 {
		return ""
	}
	return (*prop.Type)[0]
}

// FieldsFromInstance infers descriptors from the value types of a default
// instance when no schema is available. Fields are sorted by name.
func FieldsFromInstance(inst instance.Instance) []Field {
	return FieldsFromInstanceWith(inst, widgets.Default())
}

// FieldsFromInstanceWith is FieldsFromInstance resolving controls through
// controls.
func FieldsFromInstanceWith(inst instance.Instance, controls *widgets.Registry) []Field {
	keys := inst.Keys()
	out := make([]Field, 0, len(keys))
	for _, name := range keys {
		candidate := widgets.FromValue(name, inst[name])
		field := Field{
			Name:     name,
			Label:    Humanize(name),
			Control:  controls.ResolveOr(candidate, ControlText),
			Multiple: candidate.Type == "array",
		}
		out = append(out, field)
	}
	return out
}
