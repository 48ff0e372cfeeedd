// Package propsync links one field of a widget instance to a standalone
// scalar value so a single form control can edit it.
//
// Edits to the scalar are routed through the host's SetState, which
// revalidates the whole instance. Changes to the root instance reach the
// scalar only when the field's value actually differs, which stops the
// scalar -> root -> scalar echo.
package propsync

import (
	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/observable"
)

// Host is the form side of a synchronizer.
type Host interface {
	// GetValue returns the model merged over the default instance.
	GetValue() instance.Instance
	// DefaultInstance returns the immutable default instance.
	DefaultInstance() instance.Instance
	// SetState validates and commits a partial instance.
	SetState(partial instance.Instance) bool
}

// Synchronizer is the live binding for one field.
type Synchronizer struct {
	field    string
	host     Host
	root     *observable.Value[instance.Instance]
	value    *observable.Value[any]
	rootSub  *observable.Subscription
	propSub  *observable.Subscription
	elements []*dom.Binding

	// pushing is set while a root change is copied into the scalar.
	pushing bool
}

// New creates a synchronizer for field. The scalar starts at the host's
// merged value for the field.
func New(host Host, root *observable.Value[instance.Instance], field string) *Synchronizer {
	s := &Synchronizer{
		field: field,
		host:  host,
		root:  root,
		value: observable.New[any](host.GetValue()[field]),
	}
	s.propSub = s.value.Bind(s.onPropertyChange)
	s.rootSub = s.root.Bind(s.onRootChange)
	return s
}

// Field returns the bound field name.
func (s *Synchronizer) Field() string {
	return s.field
}

// Value returns the scalar value.
func (s *Synchronizer) Value() *observable.Value[any] {
	return s.value
}

// Attach binds a form control to the scalar value in both directions. Several
// controls may share one field (radio groups); attaching the same control
// twice is a no-op.
func (s *Synchronizer) Attach(el *dom.Element) {
	for _, existing := range s.elements {
		if existing.Element().Same(el) {
			return
		}
	}
	s.elements = append(s.elements, dom.Sync(el, s.value))
}

// Elements returns the attached controls.
func (s *Synchronizer) Elements() []*dom.Element {
	out := make([]*dom.Element, 0, len(s.elements))
	for _, b := range s.elements {
		out = append(out, b.Element())
	}
	return out
}

// Destroy unsyncs the control, unbinds from the root value and clears every
// callback on the scalar value.
func (s *Synchronizer) Destroy() {
	for _, b := range s.elements {
		b.Unsync()
	}
	s.elements = nil
	if s.rootSub != nil {
		s.root.Unbind(s.rootSub)
		s.rootSub = nil
	}
	s.value.UnbindAll()
	s.propSub = nil
}

func (s *Synchronizer) onPropertyChange(next, _ any) {
	if s.pushing {
		return
	}
	// Skip stale dispatches superseded by a nested set.
	if !instance.ValueEqual(next, s.value.Get()) {
		return
	}
	s.host.SetState(instance.Instance{s.field: next})
}

func (s *Synchronizer) onRootChange(next, prev instance.Instance) {
	defaults := s.host.DefaultInstance()
	nextValue := instance.Merge(defaults, next)[s.field]
	prevValue := instance.Merge(defaults, prev)[s.field]
	if instance.ValueEqual(nextValue, prevValue) {
		return
	}
	s.pushing = true
	defer func() { s.pushing = false }()
	s.value.Set(nextValue)
}
