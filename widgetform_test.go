package widgetform

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/registry"
	"github.com/goliatone/go-widgetform/pkg/render/template"
	"github.com/goliatone/go-widgetform/pkg/testsupport"
)

const textConfig = `
widgets:
  text:
    default_instance:
      title: ""
      text: ""
themes:
  - name: admin
    tokens:
      accent: "#2271b1"
`

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"widget-form-default.tpl", "widget-form-notifications.tpl"} {
		if _, err := fs.ReadFile(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
	}
}

func TestLoadAndBuild(t *testing.T) {
	b, err := Load(fstest.MapFS{"widgets.yaml": {Data: []byte(textConfig)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Types(); len(got) != 1 || got[0] != "text" {
		t.Fatalf("unexpected types %v", got)
	}

	model := observable.New(instance.Instance{"title": "Hi"})
	container := testsupport.NewContainer()
	f, err := b.Build("text", form.Params{Model: model, Container: container})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := f.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	root := container.Query(".widget-form")
	if root == nil {
		t.Fatalf("expected form root in %s", container.InnerHTML())
	}
	if style := root.AttrOr("style", ""); !strings.Contains(style, "--accent: #2271b1") {
		t.Fatalf("expected theme css vars, got %q", style)
	}
	if got := f.GetValue()["text"]; got != "" {
		t.Fatalf("expected default text, got %#v", got)
	}
	if input := container.Query(`input[data-field="title"]`); input == nil || input.Value() != "Hi" {
		t.Fatalf("expected title input bound to model")
	}
}

func TestBuild_UnknownWidget(t *testing.T) {
	b, err := Load(fstest.MapFS{"widgets.yaml": {Data: []byte(textConfig)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = b.Build("missing", form.Params{})
	if !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected ErrUnknownWidget, got %v", err)
	}
}

func TestBuild_CustomRegistryAndTemplates(t *testing.T) {
	reg := registry.New()
	var built int
	reg.MustRegister("text", func(params form.Params) (*form.Form, error) {
		built++
		return form.New(params)
	})
	custom := template.NewMapProvider(map[string]template.Func{
		form.DefaultFormTemplateID: template.Static(`<input data-field="title"><div class="widget-form-notifications-container"></div>`),
	})

	b, err := Load(
		fstest.MapFS{"widgets.yaml": {Data: []byte(textConfig)}},
		WithRegistry(reg),
		WithTemplates(custom),
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	container := testsupport.NewContainer()
	f, err := b.Build("text", form.Params{Model: observable.New(instance.Instance{}), Container: container})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built != 1 {
		t.Fatalf("expected registered factory to run once, got %d", built)
	}
	if err := f.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if container.Query(".widget-form") != nil {
		t.Fatalf("expected custom template to win over bundled one")
	}
	if container.Query(`input[data-field="title"]`) == nil {
		t.Fatalf("expected custom markup")
	}
}

func TestLoad_Empty(t *testing.T) {
	if _, err := Load(fstest.MapFS{}); err == nil {
		t.Fatalf("expected error for empty configuration")
	}
}
