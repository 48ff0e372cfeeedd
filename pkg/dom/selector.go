package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// The selector engine covers what form templates need: comma groups,
// descendant combinators, tag/universal, #id, .class, [attr] and
// [attr=value] with optional quotes.

type attrMatcher struct {
	name     string
	value    string
	hasValue bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatcher
}

type selectorGroup []compound

func parseSelector(raw string) ([]selectorGroup, error) {
	var groups []selectorGroup
	for _, part := range splitOutsideBrackets(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var group selectorGroup
		for _, token := range fieldsOutsideBrackets(part) {
			c, err := parseCompound(token)
			if err != nil {
				return nil, err
			}
			group = append(group, c)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func parseCompound(token string) (compound, error) {
	var c compound
	i := 0
	readIdent := func() string {
		start := i
		for i < len(token) && !strings.ContainsRune("#.[", rune(token[i])) {
			i++
		}
		return token[start:i]
	}

	if i < len(token) && !strings.ContainsRune("#.[", rune(token[i])) {
		tag := readIdent()
		if tag != "*" {
			c.tag = strings.ToLower(tag)
		}
	}
	for i < len(token) {
		switch token[i] {
		case '#':
			i++
			c.id = readIdent()
		case '.':
			i++
			c.classes = append(c.classes, readIdent())
		case '[':
			end := strings.IndexByte(token[i:], ']')
			if end < 0 {
				return compound{}, fmt.Errorf("dom: unterminated attribute selector in %q", token)
			}
			body := token[i+1 : i+end]
			i += end + 1
			name, value, hasValue := strings.Cut(body, "=")
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			c.attrs = append(c.attrs, attrMatcher{
				name:     strings.TrimSpace(name),
				value:    value,
				hasValue: hasValue,
			})
		default:
			return compound{}, fmt.Errorf("dom: unexpected %q in selector %q", token[i], token)
		}
	}
	return c, nil
}

func (c compound) matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	el := &Element{node: n}
	if c.id != "" && el.ID() != c.id {
		return false
	}
	for _, class := range c.classes {
		if !el.HasClass(class) {
			return false
		}
	}
	for _, attr := range c.attrs {
		value, ok := el.Attr(attr.name)
		if !ok {
			return false
		}
		if attr.hasValue && value != attr.value {
			return false
		}
	}
	return true
}

// matches checks n against the group, resolving descendant combinators on
// ancestors below scope (scope itself is excluded; nil means unbounded).
func (g selectorGroup) matches(n *html.Node, scope *html.Node) bool {
	if len(g) == 0 || !g[len(g)-1].matches(n) {
		return false
	}
	idx := len(g) - 2
	for p := n.Parent; idx >= 0 && p != nil && p != scope; p = p.Parent {
		if g[idx].matches(p) {
			idx--
		}
	}
	return idx < 0
}

func splitOutsideBrackets(s string, sep rune) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func fieldsOutsideBrackets(s string) []string {
	var out []string
	for _, part := range splitOutsideBrackets(strings.Join(strings.Fields(s), " "), ' ') {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
