package widgets

import "testing"

func TestResolve_ExplicitHintWins(t *testing.T) {
	reg := NewRegistry()
	c := Candidate{Name: "visible", Type: "boolean", Hint: "toggle"}

	if got, ok := reg.Resolve(c); !ok || got != "toggle" {
		t.Fatalf("expected explicit hint to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		c      Candidate
		expect string
	}{
		{name: "boolean checkbox", c: Candidate{Type: "boolean"}, expect: ControlCheckbox},
		{name: "array select", c: Candidate{Type: "array"}, expect: ControlSelect},
		{name: "string enum select", c: Candidate{Type: "string", HasEnum: true}, expect: ControlSelect},
		{name: "integer number", c: Candidate{Type: "integer"}, expect: ControlNumber},
		{name: "number enum prefers select", c: Candidate{Type: "number", HasEnum: true}, expect: ControlSelect},
		{name: "uri format", c: Candidate{Type: "string", Format: "uri"}, expect: ControlURL},
		{name: "email format", c: Candidate{Type: "string", Format: "Email"}, expect: ControlEmail},
		{name: "textarea format", c: Candidate{Type: "string", Format: "textarea"}, expect: ControlTextarea},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.c)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestResolve_PlainStringFallsThrough(t *testing.T) {
	reg := NewRegistry()
	if got, ok := reg.Resolve(Candidate{Type: "string"}); ok {
		t.Fatalf("expected no match, got %q", got)
	}
	if got := reg.ResolveOr(Candidate{Type: "string"}, ControlText); got != ControlText {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestRegister_PriorityAndOrder(t *testing.T) {
	reg := &Registry{}
	reg.Register("first", 10, func(Candidate) bool { return true })
	reg.Register("second", 10, func(Candidate) bool { return true })
	if got, _ := reg.Resolve(Candidate{}); got != "first" {
		t.Fatalf("expected registration order tie-break, got %q", got)
	}

	reg.Register("colour", 20, func(c Candidate) bool { return c.Format == "color" })
	if got, _ := reg.Resolve(Candidate{Format: "color"}); got != "colour" {
		t.Fatalf("expected higher priority matcher, got %q", got)
	}
	if got, _ := reg.Resolve(Candidate{}); got != "first" {
		t.Fatalf("expected fallback to lower priority, got %q", got)
	}
}

func TestRegister_IgnoresInvalid(t *testing.T) {
	reg := &Registry{}
	reg.Register("", 10, func(Candidate) bool { return true })
	reg.Register("nil", 10, nil)
	var nilReg *Registry
	nilReg.Register("x", 1, func(Candidate) bool { return true })

	if _, ok := reg.Resolve(Candidate{}); ok {
		t.Fatalf("expected empty registry to resolve nothing")
	}
	if _, ok := nilReg.Resolve(Candidate{}); ok {
		t.Fatalf("expected nil registry to resolve nothing")
	}
}

func TestFromValue(t *testing.T) {
	cases := map[string]struct {
		value any
		want  string
	}{
		"bool":   {value: true, want: "boolean"},
		"float":  {value: float64(2), want: "number"},
		"int":    {value: 3, want: "integer"},
		"list":   {value: []any{"a"}, want: "array"},
		"string": {value: "x", want: "string"},
		"nil":    {value: nil, want: "string"},
	}
	for name, tc := range cases {
		if got := FromValue(name, tc.value).Type; got != tc.want {
			t.Fatalf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
