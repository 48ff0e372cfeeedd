package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/render/template"
)

// Template ids used by the fixture provider.
const (
	FormTemplateID          = "widget-form-test"
	NotificationsTemplateID = "widget-form-notifications-test"
)

// NotificationsMarkup renders notification lists the same way the embedded
// pongo2 partial does, without needing a template engine.
func NotificationsMarkup(data any) (string, error) {
	view, ok := data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("testsupport: unexpected notifications data %T", data)
	}
	list, _ := view["notifications"].([]*notifications.Notification)
	alt, _ := view["altNotice"].(bool)

	var b strings.Builder
	b.WriteString(`<ul class="notifications">`)
	for _, n := range list {
		class := "notice notice-" + string(n.Severity)
		if alt {
			class += " notice-alt"
		}
		fmt.Fprintf(&b, `<li class="%s" data-code="%s">%s</li>`,
			class, html.EscapeString(n.Code), html.EscapeString(n.Message))
	}
	b.WriteString(`</ul>`)
	return b.String(), nil
}

// Provider returns a template provider serving formMarkup under
// FormTemplateID and NotificationsMarkup under NotificationsTemplateID.
func Provider(formMarkup string) *template.MapProvider {
	return template.NewMapProvider(map[string]template.Func{
		FormTemplateID:          template.Static(formMarkup),
		NotificationsTemplateID: NotificationsMarkup,
	})
}

// NewContainer returns an empty detached container element.
func NewContainer() *dom.Element {
	return dom.NewDocument().CreateElement("div")
}

// Type simulates a user editing a control: the value is written and a change
// event dispatched.
func Type(el *dom.Element, value string) {
	el.SetValue(value)
	el.Dispatch(dom.EventChange)
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
