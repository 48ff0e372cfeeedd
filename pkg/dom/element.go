package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotFound is returned when a selector matches nothing.
var ErrNotFound = errors.New("dom: element not found")

// ErrAmbiguous is returned when a selector expected to match one element
// matches several.
var ErrAmbiguous = errors.New("dom: selector matched more than one element")

// Document owns the event listeners of every element created from it.
type Document struct {
	listeners map[*html.Node]map[string][]*EventListener
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{listeners: make(map[*html.Node]map[string][]*EventListener)}
}

// Element wraps an html element node.
type Element struct {
	doc  *Document
	node *html.Node
}

// Parse builds a detached <div> root holding the parsed markup.
func Parse(markup string) (*Element, error) {
	root := NewDocument().CreateElement("div")
	if err := root.SetInnerHTML(markup); err != nil {
		return nil, err
	}
	return root, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(markup string) *Element {
	el, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return el
}

// CreateElement returns a detached element owned by the document.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return &Element{
		doc: d,
		node: &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		},
	}
}

func (e *Element) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: e.doc, node: n}
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Same reports whether both wrappers point at the same node.
func (e *Element) Same(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Parent returns the parent element, or nil at the root.
func (e *Element) Parent() *Element {
	if p := e.node.Parent; p != nil && p.Type == html.ElementNode {
		return e.wrap(p)
	}
	return nil
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.wrap(c))
		}
	}
	return out
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when absent.
func (e *Element) AttrOr(name, fallback string) string {
	if value, ok := e.Attr(name); ok {
		return value
	}
	return fallback
}

// HasAttr reports attribute presence.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr adds or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for idx, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			e.node.Attr[idx].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	out := e.node.Attr[:0]
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			continue
		}
		out = append(out, attr)
	}
	e.node.Attr = out
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.AttrOr("id", "")
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, class := range e.Classes() {
		if class == name {
			return true
		}
	}
	return false
}

// ToggleClass adds the class when on is true and removes it otherwise.
func (e *Element) ToggleClass(name string, on bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	classes := e.Classes()
	out := classes[:0]
	present := false
	for _, class := range classes {
		if class == name {
			present = true
			if !on {
				continue
			}
		}
		out = append(out, class)
	}
	if on && !present {
		out = append(out, name)
	}
	if len(out) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// Hidden reports whether the hidden attribute is set.
func (e *Element) Hidden() bool {
	return e.HasAttr("hidden")
}

// SetHidden toggles the hidden attribute.
func (e *Element) SetHidden(hidden bool) {
	if hidden {
		e.SetAttr("hidden", "")
		return
	}
	e.RemoveAttr("hidden")
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.removeChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// InnerHTML renders the children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders the element itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}

// SetInnerHTML replaces the children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     e.node.Data,
		DataAtom: e.node.DataAtom,
	})
	if err != nil {
		return fmt.Errorf("dom: parse markup: %w", err)
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Empty removes every child. Listeners on removed elements stay registered
// until removed through their handles.
func (e *Element) Empty() {
	e.removeChildren()
}

// AppendChild attaches child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// PrependChild attaches child as the first child of e.
func (e *Element) PrependChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	if e.node.FirstChild == nil {
		e.node.AppendChild(child.node)
		return
	}
	e.node.InsertBefore(child.node, e.node.FirstChild)
}

func (e *Element) removeChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// Query returns the first descendant matching selector, or nil.
func (e *Element) Query(selector string) *Element {
	matches := e.QueryAll(selector)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// QueryOne returns the single descendant matching selector. It fails when
// the selector matches nothing or more than one element.
func (e *Element) QueryOne(selector string) (*Element, error) {
	matches := e.QueryAll(selector)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q (%d matches)", ErrAmbiguous, selector, len(matches))
	}
}

// QueryAll returns the descendants matching selector in document order.
func (e *Element) QueryAll(selector string) []*Element {
	groups, err := parseSelector(selector)
	if err != nil || len(groups) == 0 {
		return nil
	}
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			for _, group := range groups {
				if group.matches(c, e.node) {
					out = append(out, e.wrap(c))
					break
				}
			}
			walk(c)
		}
	}
	walk(e.node)
	return out
}

// Matches reports whether the element itself matches selector.
func (e *Element) Matches(selector string) bool {
	groups, err := parseSelector(selector)
	if err != nil {
		return false
	}
	for _, group := range groups {
		if group.matches(e.node, nil) {
			return true
		}
	}
	return false
}
