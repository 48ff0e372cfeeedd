// Package notifications tracks coded validation messages for a form. A
// Collection holds at most one live Notification per code, preserves
// insertion order, and emits add/remove events synchronously.
package notifications

import "strings"

// Severity classifies a notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Origin records which side produced a notification.
type Origin string

const (
	OriginClient Origin = "client"
	OriginServer Origin = "server"
)

// Politeness returns the live-region politeness used to announce notifications
// of this severity.
func (s Severity) Politeness() string {
	if s == SeverityError {
		return "assertive"
	}
	return "polite"
}

// Notification is a coded, severity-tagged message.
type Notification struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Severity Severity       `json:"type"`
	Origin   Origin         `json:"origin"`
	Field    string         `json:"field,omitempty"`
	Data     map[string]any `json:"data,omitempty"`

	// ViaSanitize marks notifications returned by a sanitize call; the next
	// validation pass removes them before recording its own outcome.
	ViaSanitize bool `json:"-"`
	// Spoken is set once the notification has been announced.
	Spoken bool `json:"-"`
}

// New builds a client-origin notification.
func New(code, message string, severity Severity) *Notification {
	return &Notification{
		Code:     strings.TrimSpace(code),
		Message:  message,
		Severity: severity,
		Origin:   OriginClient,
	}
}

// NewServer builds a server-origin notification.
func NewServer(code, message string, severity Severity) *Notification {
	n := New(code, message, severity)
	n.Origin = OriginServer
	return n
}

// IsError reports whether the notification carries error severity.
func (n *Notification) IsError() bool {
	return n != nil && n.Severity == SeverityError
}
