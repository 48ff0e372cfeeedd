package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsFormControl reports whether the element is an input, textarea or select.
func (e *Element) IsFormControl() bool {
	switch e.node.Data {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// InputType returns the lower-case input type ("text" when unset). Textareas
// report "textarea"; selects report "select" or "select-multiple".
func (e *Element) InputType() string {
	switch e.node.Data {
	case "textarea":
		return "textarea"
	case "select":
		if e.HasAttr("multiple") {
			return "select-multiple"
		}
		return "select"
	}
	kind := strings.ToLower(strings.TrimSpace(e.AttrOr("type", "")))
	if kind == "" {
		return "text"
	}
	return kind
}

// Value returns the current control value.
func (e *Element) Value() string {
	switch e.node.Data {
	case "textarea":
		return e.Text()
	case "select":
		selected := e.SelectedValues()
		if len(selected) > 0 {
			return selected[0]
		}
		if opts := e.options(); len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	}
	return e.AttrOr("value", "")
}

// SetValue updates the control value. For selects the matching option
// becomes the only selected one.
func (e *Element) SetValue(value string) {
	switch e.node.Data {
	case "textarea":
		e.SetText(value)
	case "select":
		e.SetSelectedValues([]string{value})
	default:
		e.SetAttr("value", value)
	}
}

// Checked reports the checked state of checkboxes and radios.
func (e *Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked toggles the checked state. Checking a radio unchecks the other
// radios sharing its name inside the same form root.
func (e *Element) SetChecked(checked bool) {
	if !checked {
		e.RemoveAttr("checked")
		return
	}
	e.SetAttr("checked", "")
	if e.InputType() != "radio" {
		return
	}
	name, ok := e.Attr("name")
	if !ok || name == "" {
		return
	}
	root := e.node
	for root.Parent != nil {
		root = root.Parent
	}
	scope := e.wrap(root)
	for _, other := range scope.QueryAll(`input[type=radio][name="` + name + `"]`) {
		if other.node != e.node {
			other.RemoveAttr("checked")
		}
	}
}

// SelectedValues returns the values of selected options.
func (e *Element) SelectedValues() []string {
	var out []string
	for _, opt := range e.options() {
		if hasAttr(opt, "selected") {
			out = append(out, optionValue(opt))
		}
	}
	return out
}

// SetSelectedValues selects exactly the options whose values are listed.
func (e *Element) SetSelectedValues(values []string) {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	for _, opt := range e.options() {
		el := e.wrap(opt)
		if _, ok := want[optionValue(opt)]; ok {
			el.SetAttr("selected", "")
		} else {
			el.RemoveAttr("selected")
		}
	}
}

// Option is one choice of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Options lists the choices of a select control in document order.
func (e *Element) Options() []Option {
	nodes := e.options()
	out := make([]Option, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Option{
			Value:    optionValue(n),
			Label:    strings.TrimSpace((&Element{node: n}).Text()),
			Selected: hasAttr(n, "selected"),
		})
	}
	return out
}

func (e *Element) options() []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(e.node)
	return out
}

func optionValue(n *html.Node) string {
	el := &Element{node: n}
	if value, ok := el.Attr("value"); ok {
		return value
	}
	return strings.TrimSpace(el.Text())
}

func hasAttr(n *html.Node, name string) bool {
	return (&Element{node: n}).HasAttr(name)
}
