package propsync_test

import (
	"testing"

	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/propsync"
)

// stubHost commits every partial straight into the model after an optional
// rejection check.
type stubHost struct {
	model    *observable.Value[instance.Instance]
	defaults instance.Instance
	reject   func(instance.Instance) bool
	calls    []instance.Instance
}

func (h *stubHost) GetValue() instance.Instance {
	return instance.Merge(h.defaults, h.model.Get())
}

func (h *stubHost) DefaultInstance() instance.Instance {
	return h.defaults
}

func (h *stubHost) SetState(partial instance.Instance) bool {
	h.calls = append(h.calls, partial)
	candidate := instance.Merge(h.model.Get(), partial)
	if h.reject != nil && h.reject(candidate) {
		return false
	}
	h.model.Set(candidate)
	return true
}

func newHost(initial instance.Instance) *stubHost {
	return &stubHost{
		model:    observable.New(initial),
		defaults: instance.Instance{"hello": "", "other": "x"},
	}
}

func TestSynchronizer_InitialValueUsesDefaults(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	s := propsync.New(host, host.model, "other")
	if got := s.Value().Get(); got != "x" {
		t.Fatalf("initial scalar = %v, want default x", got)
	}
}

func TestSynchronizer_ScalarChangeGoesThroughSetState(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	s := propsync.New(host, host.model, "hello")

	s.Value().Set("computer")

	if len(host.calls) != 1 {
		t.Fatalf("SetState calls = %d, want 1", len(host.calls))
	}
	if got := host.model.Get()["hello"]; got != "computer" {
		t.Fatalf("model hello = %v", got)
	}
}

func TestSynchronizer_NoFeedbackLoop(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	s := propsync.New(host, host.model, "hello")

	rootChanges := 0
	host.model.Bind(func(_, _ instance.Instance) { rootChanges++ })

	s.Value().Set("world")

	if rootChanges != 0 || len(host.calls) != 0 {
		t.Fatalf("unchanged scalar caused root changes=%d setState=%d", rootChanges, len(host.calls))
	}
}

func TestSynchronizer_RootChangeOnlyPushesDifferences(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world", "count": float64(1)})
	s := propsync.New(host, host.model, "hello")

	scalarChanges := 0
	s.Value().Bind(func(_, _ any) { scalarChanges++ })

	host.model.Set(instance.Instance{"hello": "world", "count": float64(2)})
	if scalarChanges != 0 {
		t.Fatalf("unrelated field change reached scalar")
	}

	host.model.Set(instance.Instance{"hello": "robot", "count": float64(2)})
	if got := s.Value().Get(); got != "robot" || scalarChanges != 1 {
		t.Fatalf("scalar = %v changes = %d", got, scalarChanges)
	}
	if len(host.calls) != 0 {
		t.Fatalf("root-originated change must not call SetState, got %d", len(host.calls))
	}
}

func TestSynchronizer_RejectedEditStaysLocal(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	host.reject = func(candidate instance.Instance) bool { return candidate["hello"] == "bad" }
	s := propsync.New(host, host.model, "hello")

	s.Value().Set("bad")

	if got := host.model.Get()["hello"]; got != "world" {
		t.Fatalf("rejected edit committed: %v", got)
	}
	if got := s.Value().Get(); got != "bad" {
		t.Fatalf("scalar should keep the local edit, got %v", got)
	}
}

func TestSynchronizer_DestroyIsTotal(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	root := dom.MustParse(`<input data-field="hello">`)
	input := root.Query("input")

	for i := 0; i < 25; i++ {
		s := propsync.New(host, host.model, "hello")
		s.Attach(input)
		if input.Value() != "world" {
			t.Fatalf("attach did not render value, got %q", input.Value())
		}
		s.Destroy()
	}

	if host.model.Subscribers() != 0 {
		t.Fatalf("root subscribers leaked: %d", host.model.Subscribers())
	}
	if input.ListenerCount("") != 0 {
		t.Fatalf("element listeners leaked: %d", input.ListenerCount(""))
	}

	input.SetValue("after")
	input.Dispatch(dom.EventChange)
	if host.model.Get()["hello"] != "world" || len(host.calls) != 0 {
		t.Fatalf("destroyed synchronizer still mutates the model")
	}
}

func TestSynchronizer_AttachedElementRoundTrip(t *testing.T) {
	host := newHost(instance.Instance{"hello": "world"})
	root := dom.MustParse(`<input data-field="hello">`)
	input := root.Query("input")
	s := propsync.New(host, host.model, "hello")
	s.Attach(input)

	input.SetValue("computer")
	input.Dispatch(dom.EventChange)
	if got := host.model.Get()["hello"]; got != "computer" {
		t.Fatalf("model hello = %v", got)
	}
	if input.Value() != "computer" {
		t.Fatalf("input changed unexpectedly: %q", input.Value())
	}

	host.model.Set(instance.Instance{"hello": "robot"})
	if input.Value() != "robot" {
		t.Fatalf("input = %q, want robot", input.Value())
	}
}
