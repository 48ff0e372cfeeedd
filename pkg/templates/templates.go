// Package templates bundles the default widget form templates: a generic form
// rendering one labelled control per field, and the notifications partial.
package templates

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-widgetform/pkg/render/template"
	"github.com/goliatone/go-widgetform/pkg/render/template/gotemplate"
)

// Template ids served by the bundled files.
const (
	FormTemplateID          = "widget-form-default"
	NotificationsTemplateID = "widget-form-notifications"
)

//go:embed files/*.tpl
var embedded embed.FS

// FS returns the bundled template files.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewEngine returns a pongo2 engine serving the bundled templates. Files under
// a WithBaseDir directory take precedence over the bundled ones.
func NewEngine(options ...gotemplate.Option) (*gotemplate.Engine, error) {
	opts := append([]gotemplate.Option{gotemplate.WithFS(FS())}, options...)
	return gotemplate.New(opts...)
}

// Provider returns a provider over the bundled templates.
func Provider() (template.Provider, error) {
	return NewEngine()
}
