package form

import (
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/notifications"
)

// SanitizeResult is the outcome of a sanitize call: either Accepted or
// Rejected.
type SanitizeResult interface {
	sanitizeResult()
}

// Accepted carries the sanitized instance to commit.
type Accepted struct {
	Instance instance.Instance
}

// Rejected blocks the commit and records Notification.
type Rejected struct {
	Notification *notifications.Notification
}

func (Accepted) sanitizeResult() {}
func (Rejected) sanitizeResult() {}

// Accept wraps inst in an Accepted result.
func Accept(inst instance.Instance) SanitizeResult {
	return Accepted{Instance: inst}
}

// Reject wraps n in a Rejected result.
func Reject(n *notifications.Notification) SanitizeResult {
	return Rejected{Notification: n}
}

// RejectError converts err into an invalidValue error notification.
func RejectError(err error) SanitizeResult {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return Rejected{Notification: notifications.New(CodeInvalidValue, message, notifications.SeverityError)}
}
