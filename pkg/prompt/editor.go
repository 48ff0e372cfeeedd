// Package prompt edits a rendered widget form from the terminal. Each bound
// field is prompted for, the answer is written into its control and a change
// event dispatched, so edits travel the same path as user input would.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/logging"
	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/schema"
)

// Option customises an Editor.
type Option func(*Editor)

// WithDriver replaces the survey driver.
func WithDriver(driver Driver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFields restricts prompting to the named fields, in that order.
func WithFields(fields ...string) Option {
	return func(e *Editor) {
		e.fields = append([]string(nil), fields...)
	}
}

// Editor drives a form through its bound controls.
type Editor struct {
	driver Driver
	logger *slog.Logger
	fields []string
}

// New returns an editor using survey unless WithDriver is given.
func New(options ...Option) *Editor {
	e := &Editor{
		driver: NewSurveyDriver(),
		logger: logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Report summarises one editing session.
type Report struct {
	Changed       []string
	Notifications []*notifications.Notification
}

// Edit prompts every bound field of f and prints the notifications left once
// all edits have been applied.
func (e *Editor) Edit(ctx context.Context, f *form.Form) (Report, error) {
	var report Report
	if f == nil || f.State() != form.StateRendered {
		return report, ErrNotRendered
	}

	fields := e.fields
	if len(fields) == 0 {
		fields = f.LinkedFields()
	}
	described := describeFields(f)

	for _, name := range fields {
		sync, ok := f.Synchronizer(name)
		if !ok {
			e.logger.Debug("prompt: field not bound", "field", name)
			continue
		}
		elements := sync.Elements()
		if len(elements) == 0 {
			continue
		}
		changed, err := e.promptField(ctx, f, name, described[name], elements)
		if err != nil {
			return report, fmt.Errorf("prompt: field %q: %w", name, err)
		}
		if changed != nil {
			changed.Dispatch(dom.EventChange)
			f.Flush()
			report.Changed = append(report.Changed, name)
			e.logger.Debug("prompt: field edited", "field", name)
		}
	}

	f.Flush()
	report.Notifications = f.Notifications().All()
	for _, n := range report.Notifications {
		if err := e.driver.Info(ctx, FormatNotification(n)); err != nil {
			return report, err
		}
	}
	return report, nil
}

// FormatNotification renders a notification as one terminal line.
func FormatNotification(n *notifications.Notification) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("[%s] %s: %s", n.Severity, n.Code, n.Message)
}

// promptField asks for one field and returns the element whose state was
// changed, or nil when the answer matches what is displayed.
func (e *Editor) promptField(ctx context.Context, f *form.Form, name string, field schema.Field, elements []*dom.Element) (*dom.Element, error) {
	el := elements[0]
	help := field.Description
	message := fieldLabel(name, field)
	if el.InputType() != "radio" {
		message = label(f, el, message)
	}

	switch el.InputType() {
	case "radio":
		options := make([]string, len(elements))
		current := -1
		for i, radio := range elements {
			options[i] = radioLabel(f, radio)
			if radio.Checked() {
				current = i
			}
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: current, Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(elements) || idx == current {
			return nil, nil
		}
		elements[idx].SetChecked(true)
		return elements[idx], nil

	case "checkbox":
		current := el.Checked()
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return nil, err
		}
		if answer == current {
			return nil, nil
		}
		el.SetChecked(answer)
		return el, nil

	case "select":
		options := el.Options()
		labels, current := optionLabels(options)
		idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: firstIndex(current), Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) || options[idx].Value == el.Value() {
			return nil, nil
		}
		el.SetValue(options[idx].Value)
		return el, nil

	case "select-multiple":
		options := el.Options()
		labels, current := optionLabels(options)
		picked, err := e.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: current, Help: help})
		if err != nil {
			return nil, err
		}
		if equalInts(picked, current) {
			return nil, nil
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(options) {
				values = append(values, options[idx].Value)
			}
		}
		el.SetSelectedValues(values)
		return el, nil

	case "textarea":
		answer, err := e.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: el.Value(), Help: help})
		if err != nil {
			return nil, err
		}
		return setText(el, answer), nil

	default:
		cfg := InputConfig{Message: message, Default: el.Value(), Help: help}
		if kind := el.InputType(); kind == "number" || kind == "range" {
			cfg.Validator = validateNumber
		}
		answer, err := e.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return setText(el, answer), nil
	}
}

func setText(el *dom.Element, value string) *dom.Element {
	if el.Value() == value {
		return nil
	}
	el.SetValue(value)
	return el
}

func validateNumber(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func describeFields(f *form.Form) map[string]schema.Field {
	out := make(map[string]schema.Field)
	for _, field := range f.Fields() {
		out[field.Name] = field
	}
	return out
}

func fieldLabel(name string, field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return schema.Humanize(name)
}

// label returns the text of the rendered <label for=...> of el, or fallback.
func label(f *form.Form, el *dom.Element, fallback string) string {
	if id := el.ID(); id != "" {
		if l := f.Container().Query(`label[for="` + id + `"]`); l != nil {
			if text := strings.TrimSpace(l.Text()); text != "" {
				return text
			}
		}
	}
	return fallback
}

func radioLabel(f *form.Form, radio *dom.Element) string {
	return label(f, radio, radio.AttrOr("value", "on"))
}

func optionLabels(options []dom.Option) ([]string, []int) {
	labels := make([]string, len(options))
	var selected []int
	for i, opt := range options {
		labels[i] = opt.Label
		if labels[i] == "" {
			labels[i] = opt.Value
		}
		if opt.Selected {
			selected = append(selected, i)
		}
	}
	return labels, selected
}

func firstIndex(indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	return indices[0]
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
