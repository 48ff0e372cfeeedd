package form

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/notifications"
)

var markupPolicy = bluemonday.StrictPolicy()

// DefaultSanitize applies the generic rules shared by every widget type:
//
//   - the default instance is merged under next;
//   - plain-text fields holding markup raise a markup<Field>Invalid warning,
//     which is removed again once the field is clean;
//   - plain-text fields are trimmed;
//   - when the form has a schema, the result must validate against it.
//
// Markup warnings are not rejections: the instance is still accepted.
func (f *Form) DefaultSanitize(next, _ instance.Instance) SanitizeResult {
	out := instance.Merge(f.defaults, next)

	for _, field := range f.config.PlainTextFields {
		raw, ok := out[field].(string)
		if !ok {
			continue
		}
		code := MarkupCode(field)
		if ContainsMarkup(raw) {
			msg := f.markupMessage(field)
			// A live identical warning is kept so it is not announced again.
			if live := f.notifications.Get(code); live == nil || live.Message != msg || live.Severity != notifications.SeverityWarning {
				n := notifications.New(code, msg, notifications.SeverityWarning)
				n.Field = field
				f.notifications.Add(code, n)
			}
		} else {
			f.notifications.Remove(code)
		}
		out[field] = strings.TrimSpace(raw)
	}

	if f.schema != nil {
		if issues := f.schema.Validate(out); len(issues) > 0 {
			issue := issues[0]
			n := notifications.New(CodeInvalidValue, issue.String(), notifications.SeverityError)
			n.Field = issue.Field
			if len(issues) > 1 {
				n.Data = map[string]any{"issues": issues}
			}
			return Reject(n)
		}
	}
	return Accept(out)
}

// ContainsMarkup reports whether value holds HTML tags. Entities and stray
// angle brackets in plain text do not count.
func ContainsMarkup(value string) bool {
	if !strings.ContainsAny(value, "<>") {
		return false
	}
	stripped := markupPolicy.Sanitize(value)
	return html.UnescapeString(stripped) != html.UnescapeString(value)
}

// MarkupCode returns the warning code used for markup in field, e.g.
// markupTitleInvalid for title.
func MarkupCode(field string) string {
	return "markup" + upperFirst(camel(field)) + "Invalid"
}

func (f *Form) markupMessage(field string) string {
	fallback := fmt.Sprintf("Tags will be stripped from the %s.", strings.ReplaceAll(field, "_", " "))
	if msg := f.config.Message(field+"_tags_invalid", ""); msg != "" {
		return msg
	}
	return f.config.Message("title_tags_invalid", fallback)
}

func camel(field string) string {
	parts := strings.FieldsFunc(field, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i := 1; i < len(parts); i++ {
		parts[i] = upperFirst(parts[i])
	}
	return strings.Join(parts, "")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
