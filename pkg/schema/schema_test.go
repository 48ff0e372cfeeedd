package schema_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/schema"
	"github.com/goliatone/go-widgetform/pkg/widgets"
)

func TestLoad_JSON(t *testing.T) {
	s, err := schema.Load(os.DirFS("testdata"), "text.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Document().Format() != schema.FormatJSON {
		t.Fatalf("expected json format, got %s", s.Document().Format())
	}
	if s.Title() != "Text widget" {
		t.Fatalf("unexpected title %q", s.Title())
	}

	want := instance.Instance{"title": "", "text": "", "filter": false, "visual": true}
	if diff := cmp.Diff(want, s.DefaultInstance()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title"}, s.PlainTextFields()); diff != "" {
		t.Fatalf("plain text fields mismatch (-want +got):\n%s", diff)
	}

	var names, controls []string
	for _, field := range s.Fields() {
		names = append(names, field.Name)
		controls = append(controls, field.Control)
	}
	if diff := cmp.Diff([]string{"title", "text", "filter", "visual"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"text", "textarea", "checkbox", "checkbox"}, controls); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	if first := s.Fields()[0]; !first.Required || !first.PlainText || first.Label != "Title" {
		t.Fatalf("unexpected title descriptor %+v", first)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	s, err := schema.LoadFile("testdata/rss.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Document().Format() != schema.FormatYAML {
		t.Fatalf("expected yaml format, got %s", s.Document().Format())
	}

	defaults := s.DefaultInstance()
	if defaults["items"] != float64(10) || defaults["order"] != "date" {
		t.Fatalf("unexpected defaults %v", defaults)
	}

	byName := map[string]schema.Field{}
	for _, field := range s.Fields() {
		byName[field.Name] = field
	}
	if got := byName["url"].Control; got != schema.ControlURL {
		t.Fatalf("url control = %q", got)
	}
	if got := byName["show_date"].Label; got != "Show date" {
		t.Fatalf("show_date label = %q", got)
	}
	order := byName["order"]
	if order.Control != schema.ControlSelect || len(order.Options) != 2 {
		t.Fatalf("unexpected order descriptor %+v", order)
	}
	items := byName["items"]
	if items.Control != schema.ControlNumber || items.Min == nil || *items.Min != 1 {
		t.Fatalf("unexpected items descriptor %+v", items)
	}
}

func TestValidate(t *testing.T) {
	s, err := schema.LoadFile("testdata/rss.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if issues := s.Validate(instance.Instance{"title": "News", "items": 5, "order": "title"}); issues != nil {
		t.Fatalf("expected valid instance, got %v", issues)
	}

	issues := s.Validate(instance.Instance{"items": 50, "order": "random"})
	fields := map[string]bool{}
	for _, issue := range issues {
		fields[issue.Field] = true
		if issue.Message == "" {
			t.Fatalf("issue without message: %+v", issue)
		}
	}
	if !fields["items"] || !fields["order"] {
		t.Fatalf("expected items and order issues, got %v", issues)
	}
}

func TestParseBytes_Errors(t *testing.T) {
	if _, err := schema.ParseBytes("empty.json", []byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := schema.ParseBytes("scalar.json", []byte(`{"type":"string"}`)); err == nil {
		t.Fatalf("expected non-object schema error")
	}
	if _, err := schema.ParseBytes("broken.yaml", []byte("type: [object")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestFieldsFromInstance(t *testing.T) {
	fields := schema.FieldsFromInstance(instance.Instance{
		"title":  "",
		"count":  3,
		"hidden": false,
		"tags":   []any{"a"},
	})
	var got []string
	for _, field := range fields {
		got = append(got, field.Name+":"+field.Control)
	}
	want := []string{"count:number", "hidden:checkbox", "tags:select", "title:text"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"title":      "Title",
		"show_date":  "Show date",
		"feed-url":   "Feed url",
		"":           "",
		"__private_": "Private",
	}
	for in, want := range cases {
		if got := schema.Humanize(in); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldsWith_CustomControls(t *testing.T) {
	s, err := schema.ParseBytes("colors.json", []byte(`{
		"type": "object",
		"properties": {
			"accent": {"type": "string", "format": "color", "default": "#fff"},
			"notes": {"type": "string", "x-control": "textarea", "default": ""}
		}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	controls := widgets.NewRegistry()
	controls.Register("color", 100, func(c widgets.Candidate) bool { return c.Format == "color" })

	var got []string
	for _, field := range s.FieldsWith(controls) {
		got = append(got, field.Name+":"+field.Control)
	}
	want := []string{"accent:color", "notes:textarea"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if got := s.Fields()[0].Control; got != schema.ControlText {
		t.Fatalf("expected default registry to render text, got %q", got)
	}
}
