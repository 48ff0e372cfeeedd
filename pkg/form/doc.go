// Package form binds a widget instance to an editable HTML form.
//
// A Form owns the notification collection and the property synchronizers
// that connect rendered controls to fields of the instance. It borrows the
// model value and the container element from its host. Every edit flows
// through SetState, which merges the edit into the current instance, runs the
// sanitize strategy and commits only accepted instances. Rejections never
// error; they surface as notifications painted into the notifications area
// and announced once.
//
// Lifecycle:
//
//	f, err := form.New(form.Params{Model: model, Container: el, Config: cfg, Templates: provider})
//	if err != nil { ... }
//	if err := f.Render(); err != nil { ... }
//	...
//	f.Flush() // end of turn: coalesced notification repaint
//	f.Destruct()
package form
