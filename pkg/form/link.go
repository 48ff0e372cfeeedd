package form

import (
	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/propsync"
)

// LinkPropertyElements binds the rendered controls to the instance, using the
// strategy's override when one is set.
func (f *Form) LinkPropertyElements() error {
	if f.strategy.LinkPropertyElements != nil {
		return f.strategy.LinkPropertyElements(f)
	}
	return f.LinkGenericElements()
}

// LinkGenericElements binds every form control carrying the field attribute.
// Markers naming fields absent from the default instance are ignored, as are
// marked elements that are not form controls.
func (f *Form) LinkGenericElements() error {
	attr := f.config.FieldAttribute
	for _, el := range f.container.QueryAll("[" + attr + "]") {
		field, _ := el.Attr(attr)
		if !f.defaults.Has(field) || !el.IsFormControl() {
			continue
		}
		f.Bind(field, el)
	}
	return nil
}

// Bind attaches el to the synchronizer for field, creating it on first use.
// There is at most one synchronizer per field per render.
func (f *Form) Bind(field string, el *dom.Element) *propsync.Synchronizer {
	sync, ok := f.syncs[field]
	if !ok {
		sync = propsync.New(f, f.model, field)
		f.syncs[field] = sync
		f.syncOrder = append(f.syncOrder, field)
	}
	if el != nil {
		sync.Attach(el)
	}
	return sync
}

// Synchronizer returns the live synchronizer for field.
func (f *Form) Synchronizer(field string) (*propsync.Synchronizer, bool) {
	sync, ok := f.syncs[field]
	return sync, ok
}

// LinkedFields lists the bound fields in link order.
func (f *Form) LinkedFields() []string {
	return append([]string(nil), f.syncOrder...)
}

// UnlinkPropertyElements destroys every synchronizer of the current render.
func (f *Form) UnlinkPropertyElements() {
	for _, field := range f.syncOrder {
		f.syncs[field].Destroy()
	}
	f.syncs = make(map[string]*propsync.Synchronizer)
	f.syncOrder = nil
}
