package form

import (
	"fmt"

	"github.com/goliatone/go-widgetform/pkg/notifications"
)

// RenderNotificationsToContainer schedules a repaint of the notifications
// area. Repeated calls within one turn coalesce into a single paint.
func (f *Form) RenderNotificationsToContainer() {
	f.scheduleRepaint()
}

// Paints reports how many times the notifications area has been painted.
func (f *Form) Paints() int {
	return f.paints
}

func (f *Form) scheduleRepaint() {
	f.dirty = true
	if f.scheduled {
		return
	}
	f.scheduled = true
	f.scheduler.Schedule(f.flushRepaint)
}

func (f *Form) flushRepaint() {
	f.scheduled = false
	if !f.dirty || f.state != StateRendered {
		return
	}
	f.dirty = false
	if err := f.paint(); err != nil {
		f.logger.Error("paint notifications", "error", err)
	}
}

// paint renders the notifications area, toggles the container state classes
// and announces notifications not yet spoken.
func (f *Form) paint() error {
	list := f.notifications.All()
	hasError := false
	for _, n := range list {
		if n.IsError() {
			hasError = true
			break
		}
	}

	var paintErr error
	if f.area != nil && f.noticesTemplate != nil {
		markup, err := f.noticesTemplate(map[string]any{
			"notifications": list,
			"altNotice":     f.config.AltNotice,
		})
		if err != nil {
			paintErr = fmt.Errorf("form: render notifications: %w", err)
		} else if err := f.area.SetInnerHTML(markup); err != nil {
			paintErr = fmt.Errorf("form: parse notifications: %w", err)
		}
		f.area.SetHidden(len(list) == 0)
	}
	f.container.ToggleClass("has-notifications", len(list) > 0)
	f.container.ToggleClass("has-error", hasError)

	for _, n := range list {
		if n.Spoken || n.Message == "" {
			continue
		}
		f.announcer.Speak(n.Message, n.Severity.Politeness())
		n.Spoken = true
	}
	f.paints++
	return paintErr
}

// InjectServerNotifications replaces every server-origin notification with
// list. Client notifications are left alone.
func (f *Form) InjectServerNotifications(list ...*notifications.Notification) {
	f.ClearServerNotifications()
	for _, n := range list {
		if n == nil || n.Code == "" {
			continue
		}
		n.Origin = notifications.OriginServer
		n.ViaSanitize = false
		f.notifications.Add(n.Code, n)
	}
}

// ClearServerNotifications removes every server-origin notification.
func (f *Form) ClearServerNotifications() int {
	return f.notifications.RemoveWhere(func(n *notifications.Notification) bool {
		return n.Origin == notifications.OriginServer
	})
}

// HasErrors reports whether an error-severity notification is live,
// optionally restricted to the given origins.
func (f *Form) HasErrors(origins ...notifications.Origin) bool {
	return len(f.errorNotifications(origins)) > 0
}

// BlockingNotifications returns the live error-severity notifications; a save
// must not complete while any exist.
func (f *Form) BlockingNotifications() []*notifications.Notification {
	return f.errorNotifications(nil)
}

func (f *Form) errorNotifications(origins []notifications.Origin) []*notifications.Notification {
	return f.notifications.Filter(func(n *notifications.Notification) bool {
		if !n.IsError() {
			return false
		}
		if len(origins) == 0 {
			return true
		}
		for _, origin := range origins {
			if n.Origin == origin {
				return true
			}
		}
		return false
	})
}
