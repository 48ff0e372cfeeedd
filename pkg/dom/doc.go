// Package dom is the element tree forms render into. Markup is parsed with
// golang.org/x/net/html; elements carry form-control state (value, checked,
// selected options), class and hidden toggles, and synchronous event
// listeners that hosts and tests trigger with Dispatch.
//
// Listeners are owned by the Document and survive removal of their element
// from the tree, mirroring browser semantics where a detached node keeps its
// handlers until they are explicitly removed.
package dom
