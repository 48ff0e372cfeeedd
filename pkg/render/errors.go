// Package render holds rendering helpers shared by forms: theme resolution
// and mapping of server error payloads onto instance fields.
package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-widgetform/pkg/instance"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages keyed by dotted instance field paths.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := append(append(make([]string, 0, len(existing)+len(extras)), existing...), extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload assigns REST error params to the fields of inst. A key may
// be a plain name ("title"), a bracketed param ("instance[feed][url]") or a
// dotted path ("instance.feed.url"); a leading "instance" or "params" wrapper
// is ignored. The longest prefix naming a field of inst wins, so "tags[0]"
// lands on tags. Keys that name no field become form-level messages.
func MapErrorPayload(inst instance.Instance, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		if field := resolveField(inst, key); field != "" {
			mapping.Fields[field] = append(mapping.Fields[field], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveField(inst instance.Instance, key string) string {
	segments := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
	for len(segments) > 1 && isWrapper(segments[0]) {
		segments = segments[1:]
	}
	for end := len(segments); end > 0; end-- {
		path := strings.Join(segments[:end], ".")
		if _, ok := inst.Lookup(path); ok {
			return path
		}
	}
	return ""
}

func isWrapper(segment string) bool {
	switch strings.ToLower(strings.TrimSpace(segment)) {
	case "instance", "params":
		return true
	}
	return false
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
