package registry_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/registry"
	"github.com/goliatone/go-widgetform/pkg/testsupport"
)

func params() form.Params {
	return form.Params{
		Model:     observable.New(instance.Instance{}),
		Container: testsupport.NewContainer(),
		Config:    form.Config{DefaultInstance: instance.Instance{"title": ""}},
		Templates: testsupport.Provider(""),
	}
}

func TestRegistry_RegisterAndList(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("text", registry.Generic)
	reg.MustRegister("rss", registry.Generic)

	if err := reg.Register("text", registry.Generic); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(" ", registry.Generic); err == nil {
		t.Fatalf("expected empty type error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}

	if diff := cmp.Diff([]string{"rss", "text"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("rss") || reg.Has("calendar") {
		t.Fatalf("unexpected Has results")
	}
}

func TestRegistry_BuildUnknownType(t *testing.T) {
	reg := registry.New()
	if _, err := reg.Build("calendar", params()); !errors.Is(err, registry.ErrUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}

	withFallback := registry.New(registry.WithFallback(registry.Generic))
	f, err := withFallback.Build("calendar", params())
	if err != nil {
		t.Fatalf("build with fallback: %v", err)
	}
	if f == nil {
		t.Fatalf("expected form")
	}
}

func TestRegistry_BuildPropagatesConstructionErrors(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("text", registry.Generic)

	p := params()
	p.Model = nil
	if _, err := reg.Build("text", p); !errors.Is(err, form.ErrMissingModel) {
		t.Fatalf("expected missing model, got %v", err)
	}
}

func TestWithStrategy(t *testing.T) {
	upper := func(f *form.Form, next, prev instance.Instance) form.SanitizeResult {
		return form.Accept(instance.Instance{"title": "FIXED"})
	}
	reg := registry.New()
	reg.MustRegister("shout", registry.WithStrategy(form.Strategy{Sanitize: upper}))

	f, err := reg.Build("shout", params())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f.SetState(instance.Instance{"title": "quiet"})
	if got := f.GetValue()["title"]; got != "FIXED" {
		t.Fatalf("expected strategy sanitize applied, got %v", got)
	}
}
