package widgetform

import (
	"io/fs"

	"github.com/goliatone/go-widgetform/pkg/templates"
)

// EmbeddedTemplates exposes the bundled form and notifications templates so
// callers can copy or extend them without importing pkg/templates directly.
func EmbeddedTemplates() fs.FS {
	return templates.FS()
}
