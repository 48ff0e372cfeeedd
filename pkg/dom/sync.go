package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-widgetform/pkg/observable"
)

// Binding keeps a form control and an observable value in step: change and
// input events push the control's value into the observable, and observable
// changes are written back to the control when they differ from what it
// displays.
type Binding struct {
	el        *Element
	value     *observable.Value[any]
	listeners []*EventListener
	sub       *observable.Subscription
}

// Sync binds el to value and writes the current value into the control.
func Sync(el *Element, value *observable.Value[any]) *Binding {
	b := &Binding{el: el, value: value}
	b.refresh()

	onEvent := func(*Event) {
		next, ok := ReadValue(b.el, b.value.Get())
		if !ok {
			return
		}
		b.value.Set(next)
	}
	b.listeners = append(b.listeners,
		el.AddEventListener(EventChange, onEvent),
		el.AddEventListener(EventInput, onEvent),
	)
	b.sub = value.Bind(func(_, _ any) {
		// Always render the latest value; nested sets may have superseded
		// the one this callback was dispatched with.
		b.refresh()
	})
	return b
}

// Element returns the bound control.
func (b *Binding) Element() *Element {
	return b.el
}

// Unsync removes the event listeners and the value subscription.
func (b *Binding) Unsync() {
	if b == nil {
		return
	}
	for _, l := range b.listeners {
		b.el.RemoveEventListener(l)
	}
	b.listeners = nil
	if b.sub != nil {
		b.value.Unbind(b.sub)
		b.sub = nil
	}
}

func (b *Binding) refresh() {
	WriteValue(b.el, b.value.Get())
}

// ReadValue extracts the control's value, coerced towards the type of
// current where the control kind allows it. Unchecked radios report ok=false
// since they carry no value for the group.
func ReadValue(el *Element, current any) (any, bool) {
	switch el.InputType() {
	case "checkbox":
		if _, isBool := current.(bool); !isBool && current != nil {
			if el.Checked() {
				return el.AttrOr("value", "on"), true
			}
			return "", true
		}
		return el.Checked(), true
	case "radio":
		if !el.Checked() {
			return nil, false
		}
		return el.AttrOr("value", "on"), true
	case "number", "range":
		raw := strings.TrimSpace(el.Value())
		if raw == "" {
			return "", true
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, true
		}
		return raw, true
	case "select-multiple":
		selected := el.SelectedValues()
		out := make([]any, 0, len(selected))
		for _, v := range selected {
			out = append(out, v)
		}
		return out, true
	default:
		return el.Value(), true
	}
}

// WriteValue renders value into the control, touching it only when the
// displayed state differs.
func WriteValue(el *Element, value any) {
	switch el.InputType() {
	case "checkbox":
		checked := truthy(value)
		if s, ok := value.(string); ok {
			checked = s != "" && s == el.AttrOr("value", "on")
		}
		if el.Checked() != checked {
			el.SetChecked(checked)
		}
	case "radio":
		checked := FormatValue(value) == el.AttrOr("value", "on")
		if el.Checked() != checked {
			el.SetChecked(checked)
		}
	case "select-multiple":
		want := toStrings(value)
		if !sameStrings(el.SelectedValues(), want) {
			el.SetSelectedValues(want)
		}
	default:
		formatted := FormatValue(value)
		if el.Value() != formatted {
			el.SetValue(formatted)
		}
	}
}

// FormatValue renders a scalar for display in a text-like control.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, FormatValue(item))
		}
		return out
	default:
		return []string{FormatValue(v)}
	}
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
