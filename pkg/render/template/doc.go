// Package template defines the template seam forms render through. A
// Provider resolves a template id to a Func; the gotemplate sub-package
// backs it with pongo2.
package template
