// Package announce delivers accessibility announcements for form
// notifications. Announcers are fire-and-forget.
package announce

import (
	"context"
	"log/slog"
	"strings"
)

// Politeness levels understood by live regions.
const (
	Polite    = "polite"
	Assertive = "assertive"
)

// Announcer speaks a message to assistive technology.
type Announcer interface {
	Speak(message, politeness string)
}

// Func adapts a function to Announcer.
type Func func(message, politeness string)

// Speak calls f.
func (f Func) Speak(message, politeness string) {
	f(message, politeness)
}

// Nop discards announcements.
type Nop struct{}

// Speak does nothing.
func (Nop) Speak(string, string) {}

// Logger writes announcements to a structured logger, which is what headless
// hosts (CLIs, tests) use in place of a screen reader.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns an announcer backed by logger.
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{log: logger}
}

// Speak logs the message at info level.
func (l *Logger) Speak(message, politeness string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	l.log.LogAttrs(context.Background(), slog.LevelInfo, "announce",
		slog.String("message", message),
		slog.String("politeness", politeness),
	)
}

// Announcement is one recorded Speak call.
type Announcement struct {
	Message    string
	Politeness string
}

// Recorder keeps every announcement in order.
type Recorder struct {
	Announcements []Announcement
}

// Speak records the call.
func (r *Recorder) Speak(message, politeness string) {
	r.Announcements = append(r.Announcements, Announcement{Message: message, Politeness: politeness})
}

// Messages returns the recorded messages.
func (r *Recorder) Messages() []string {
	out := make([]string, 0, len(r.Announcements))
	for _, a := range r.Announcements {
		out = append(out, a.Message)
	}
	return out
}
