package form

import (
	"fmt"

	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/schema"
	"github.com/goliatone/go-widgetform/pkg/widgets"
)

// TemplateID returns the id of the form template, honoring the strategy.
func (f *Form) TemplateID() string {
	if f.strategy.TemplateID != nil {
		if id := f.strategy.TemplateID(f); id != "" {
			return id
		}
	}
	return f.config.FormTemplateID
}

// Fields returns the descriptors exposed to the form template: the schema's
// fields when a schema is set, otherwise fields inferred from the default
// instance. Controls resolve through Params.Controls when set.
func (f *Form) Fields() []schema.Field {
	controls := f.controls
	if controls == nil {
		controls = widgets.Default()
	}
	if f.schema != nil {
		return f.schema.FieldsWith(controls)
	}
	return schema.FieldsFromInstanceWith(f.defaults, controls)
}

// TemplateData is the view handed to the form template.
func (f *Form) TemplateData() map[string]any {
	data := map[string]any{
		"id":         f.id,
		"config":     f.config,
		"l10n":       f.config.L10n,
		"value":      f.GetValue(),
		"fields":     f.Fields(),
		"field_attr": f.config.FieldAttribute,
	}
	if f.theme != nil {
		data["theme"] = f.theme
		data["theme_style"] = f.theme.CSSVarsStyle()
	}
	return data
}

// Render expands the form template into the container, links the property
// elements and paints the notifications. Rendering an already rendered form
// unlinks the previous bindings first. A missing template is returned as an
// error wrapping template.ErrTemplateNotFound and leaves the form untouched.
func (f *Form) Render() error {
	formTemplate, err := f.templates.Template(f.TemplateID())
	if err != nil {
		return fmt.Errorf("form: form template: %w", err)
	}
	noticesTemplate, err := f.templates.Template(f.config.NotificationsTemplateID)
	if err != nil {
		return fmt.Errorf("form: notifications template: %w", err)
	}

	markup, err := formTemplate(f.TemplateData())
	if err != nil {
		return fmt.Errorf("form: render %s: %w", f.TemplateID(), err)
	}

	if f.state == StateRendered {
		f.UnlinkPropertyElements()
		f.detachNotificationListeners()
		f.state = StateIdle
	}

	if err := f.container.SetInnerHTML(markup); err != nil {
		return fmt.Errorf("form: parse markup: %w", err)
	}
	f.area = f.container.Query(f.config.NotificationsSelector)
	if f.area == nil {
		f.logger.Warn("template has no notifications container", "selector", f.config.NotificationsSelector)
	}

	if err := f.LinkPropertyElements(); err != nil {
		f.UnlinkPropertyElements()
		return fmt.Errorf("form: link property elements: %w", err)
	}

	f.listeners = append(f.listeners,
		f.notifications.OnAdd(func(*notifications.Notification) { f.scheduleRepaint() }),
		f.notifications.OnRemove(func(*notifications.Notification) { f.scheduleRepaint() }),
	)
	f.noticesTemplate = noticesTemplate
	f.state = StateRendered
	f.dirty = false
	return f.paint()
}

// Destruct unlinks every binding, detaches the notification listeners and
// empties the container. The form may be rendered again afterwards.
func (f *Form) Destruct() {
	f.UnlinkPropertyElements()
	f.detachNotificationListeners()
	f.container.Empty()
	f.area = nil
	f.dirty = false
	f.state = StateDestructed
}

func (f *Form) detachNotificationListeners() {
	for _, l := range f.listeners {
		f.notifications.Off(l)
	}
	f.listeners = nil
}
