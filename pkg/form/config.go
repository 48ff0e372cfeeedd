package form

import (
	"strings"

	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/render"
)

// Defaults applied by Config.Normalize.
const (
	DefaultFormTemplateID          = "widget-form-default"
	DefaultNotificationsTemplateID = "widget-form-notifications"
	DefaultNotificationsSelector   = ".widget-form-notifications-container"
	DefaultFieldAttribute          = "data-field"
)

// DefaultPlainTextFields are checked for markup when a config leaves
// PlainTextFields unset.
var DefaultPlainTextFields = []string{"title"}

// Config is the per-widget-type form configuration supplied by the host.
type Config struct {
	FormTemplateID          string            `json:"form_template_id,omitempty" yaml:"form_template_id,omitempty"`
	NotificationsTemplateID string            `json:"notifications_template_id,omitempty" yaml:"notifications_template_id,omitempty"`
	L10n                    map[string]string `json:"l10n,omitempty" yaml:"l10n,omitempty"`
	DefaultInstance         instance.Instance `json:"default_instance" yaml:"default_instance"`

	// PlainTextFields are trimmed and checked for markup by the default
	// sanitize. Nil means DefaultPlainTextFields; an empty slice disables
	// the check.
	PlainTextFields       []string `json:"plain_text_fields,omitempty" yaml:"plain_text_fields,omitempty"`
	NotificationsSelector string   `json:"notifications_selector,omitempty" yaml:"notifications_selector,omitempty"`
	FieldAttribute        string   `json:"field_attribute,omitempty" yaml:"field_attribute,omitempty"`
	AltNotice             bool     `json:"alt_notice,omitempty" yaml:"alt_notice,omitempty"`
	// Schema is a path to the widget's JSON Schema, resolved by pkg/config.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Normalize fills unset identifiers with their defaults. The default instance
// is cloned so later edits to the source map cannot reach the form.
func (c Config) Normalize() Config {
	out := c
	out.FormTemplateID = firstNonEmpty(c.FormTemplateID, DefaultFormTemplateID)
	out.NotificationsTemplateID = firstNonEmpty(c.NotificationsTemplateID, DefaultNotificationsTemplateID)
	out.NotificationsSelector = firstNonEmpty(c.NotificationsSelector, DefaultNotificationsSelector)
	out.FieldAttribute = firstNonEmpty(c.FieldAttribute, DefaultFieldAttribute)
	if c.PlainTextFields == nil {
		out.PlainTextFields = append([]string(nil), DefaultPlainTextFields...)
	} else {
		out.PlainTextFields = append([]string{}, c.PlainTextFields...)
	}
	out.DefaultInstance = c.DefaultInstance.Clone()
	if len(c.L10n) > 0 {
		out.L10n = make(map[string]string, len(c.L10n))
		for key, value := range c.L10n {
			out.L10n[key] = value
		}
	}
	return out
}

// WithTheme returns a copy of c whose template ids are replaced by the
// theme's overrides, when it has any.
func (c Config) WithTheme(theme render.Theme) Config {
	out := c
	if id, ok := theme.Template(render.ThemeFormTemplateKey); ok {
		out.FormTemplateID = id
	}
	if id, ok := theme.Template(render.ThemeNotificationsTemplateKey); ok {
		out.NotificationsTemplateID = id
	}
	return out
}

// Message returns the localized string for key, or fallback.
func (c Config) Message(key, fallback string) string {
	if msg, ok := c.L10n[key]; ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
