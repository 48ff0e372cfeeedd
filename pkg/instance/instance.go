// Package instance defines the widget instance record shared by the form
// controller, property synchronizers and the save pipeline. An Instance maps
// field names to JSON-compatible values (string, float64, bool, []any,
// map[string]any).
package instance

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Instance is the complete state of one widget.
type Instance map[string]any

// Merge returns a new Instance holding base overlaid with each overlay in
// order. Nil arguments are skipped; the inputs are never mutated.
func Merge(base Instance, overlays ...Instance) Instance {
	size := len(base)
	for _, overlay := range overlays {
		size += len(overlay)
	}
	out := make(Instance, size)
	for key, value := range base {
		out[key] = value
	}
	for _, overlay := range overlays {
		for key, value := range overlay {
			out[key] = value
		}
	}
	return out
}

// Clone returns a deep copy of the instance. Nested maps and slices are copied
// so callers can mutate the result freely.
func (i Instance) Clone() Instance {
	if i == nil {
		return nil
	}
	out := make(Instance, len(i))
	for key, value := range i {
		out[key] = cloneValue(value)
	}
	return out
}

// Has reports whether the field is present.
func (i Instance) Has(field string) bool {
	_, ok := i[field]
	return ok
}

// String returns the field value when it holds a string.
func (i Instance) String(field string) (string, bool) {
	value, ok := i[field].(string)
	return value, ok
}

// Lookup returns the value at a dotted path such as "feed.url". Only nested
// maps are walked.
func (i Instance) Lookup(path string) (any, bool) {
	var current any = map[string]any(i)
	for _, key := range strings.Split(path, ".") {
		var next any
		var ok bool
		switch node := current.(type) {
		case map[string]any:
			next, ok = node[key]
		case Instance:
			next, ok = node[key]
		}
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Keys returns the field names in lexical order.
func (i Instance) Keys() []string {
	keys := make([]string, 0, len(i))
	for key := range i {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep equality between two instances. A nil and an empty
// instance are equal.
func Equal(a, b Instance) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return cmp.Equal(map[string]any(a), map[string]any(b))
}

// ValueEqual reports deep equality between two field values.
func ValueEqual(a, b any) bool {
	return cmp.Equal(a, b)
}

// Normalize round-trips the instance through JSON so numbers become float64
// and typed slices/maps become []any/map[string]any. Values that cannot be
// encoded are returned untouched along with the error.
func Normalize(i Instance) (Instance, error) {
	if i == nil {
		return nil, nil
	}
	raw, err := json.Marshal(i)
	if err != nil {
		return i, err
	}
	out := Instance{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return i, err
	}
	return out, nil
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case Instance:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
