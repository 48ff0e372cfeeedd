package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-widgetform/pkg/render"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#123456",
			"--space": "4px",
		},
		Templates: map[string]string{
			render.ThemeFormTemplateKey: "acme-form",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Templates: map[string]string{
					render.ThemeNotificationsTemplateKey: "acme-dark-notices",
				},
			},
		},
	}
}

func TestResolveTheme_MergesVariant(t *testing.T) {
	selector, err := render.NewManifestSelector(acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	resolved, err := render.ResolveTheme(selector, "acme", "dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := render.Theme{
		Name:    "acme",
		Variant: "dark",
		Templates: map[string]string{
			render.ThemeFormTemplateKey:          "acme-form",
			render.ThemeNotificationsTemplateKey: "acme-dark-notices",
		},
		Tokens: map[string]string{
			"brand":   "#654321",
			"--space": "4px",
		},
		CSSVars: map[string]string{
			"--brand": "#654321",
			"--space": "4px",
		},
	}
	if diff := cmp.Diff(want, resolved); diff != "" {
		t.Fatalf("theme mismatch (-want +got):\n%s", diff)
	}
	if got := resolved.CSSVarsStyle(); got != "--brand: #654321; --space: 4px" {
		t.Fatalf("unexpected style %q", got)
	}
	if id, ok := resolved.Template(render.ThemeFormTemplateKey); !ok || id != "acme-form" {
		t.Fatalf("expected form override, got %q %v", id, ok)
	}
}

func TestResolveTheme_Defaults(t *testing.T) {
	selector, err := render.NewManifestSelector(acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	resolved, err := render.ResolveTheme(selector, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Name != "acme" || resolved.Variant != "" {
		t.Fatalf("unexpected selection %s/%s", resolved.Name, resolved.Variant)
	}
	if _, ok := resolved.Template(render.ThemeNotificationsTemplateKey); ok {
		t.Fatalf("base manifest has no notifications override")
	}
}

func TestResolveTheme_Errors(t *testing.T) {
	if _, err := render.ResolveTheme(nil, "acme", ""); err == nil {
		t.Fatalf("expected error for nil selector")
	}

	selector, _ := render.NewManifestSelector(acmeManifest())
	if _, err := render.ResolveTheme(selector, "missing", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	if _, err := render.ResolveTheme(selector, "acme", "sepia"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}

	failing := stubSelector{err: errors.New("boom")}
	if _, err := render.ResolveTheme(failing, "acme", ""); err == nil {
		t.Fatalf("expected selector error to propagate")
	}

	if _, err := render.NewManifestSelector(acmeManifest(), acmeManifest()); err == nil {
		t.Fatalf("expected duplicate manifest error")
	}
}

type stubSelector struct {
	err error
}

func (s stubSelector) Select(string, string, ...theme.QueryOption) (*theme.Selection, error) {
	return nil, s.err
}
