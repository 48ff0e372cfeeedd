// Package observable provides the single-slot reactive container used by the
// form controller. A Value holds one item, notifies subscribers synchronously
// in subscription order when the item changes, and ignores sets that are
// deeply equal to the current item.
package observable

import (
	"github.com/google/go-cmp/cmp"
)

// Callback receives the new and previous value after a change.
type Callback[T any] func(next, prev T)

// Subscription identifies a callback bound to a Value.
type Subscription struct {
	id     uint64
	active bool
}

type binding[T any] struct {
	sub *Subscription
	fn  Callback[T]
}

// Value is a mutable container with change notification. It is not safe for
// concurrent use; all access happens on the caller's goroutine.
type Value[T any] struct {
	current  T
	bindings []binding[T]
	nextID   uint64
	equal    func(a, b T) bool
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithEqual overrides the equality used to suppress redundant sets.
func WithEqual[T any](fn func(a, b T) bool) Option[T] {
	return func(v *Value[T]) {
		if fn != nil {
			v.equal = fn
		}
	}
}

// New constructs a Value seeded with initial.
func New[T any](initial T, options ...Option[T]) *Value[T] {
	v := &Value[T]{
		current: initial,
		equal: func(a, b T) bool {
			return cmp.Equal(a, b)
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Get returns the current item.
func (v *Value[T]) Get() T {
	return v.current
}

// Set replaces the current item and notifies subscribers. It reports whether
// a change happened; equal values are dropped without notification.
func (v *Value[T]) Set(next T) bool {
	if v.equal(v.current, next) {
		return false
	}
	prev := v.current
	v.current = next

	// Callbacks may bind, unbind or set again while we dispatch.
	snapshot := append([]binding[T](nil), v.bindings...)
	for _, b := range snapshot {
		if !b.sub.active {
			continue
		}
		b.fn(next, prev)
	}
	return true
}

// Bind subscribes fn to changes.
func (v *Value[T]) Bind(fn Callback[T]) *Subscription {
	if fn == nil {
		return nil
	}
	v.nextID++
	sub := &Subscription{id: v.nextID, active: true}
	v.bindings = append(v.bindings, binding[T]{sub: sub, fn: fn})
	return sub
}

// Unbind removes a subscription. Unknown or nil subscriptions are ignored.
func (v *Value[T]) Unbind(sub *Subscription) {
	if sub == nil || !sub.active {
		return
	}
	sub.active = false
	for idx, b := range v.bindings {
		if b.sub == sub {
			v.bindings = append(v.bindings[:idx:idx], v.bindings[idx+1:]...)
			return
		}
	}
}

// UnbindAll clears every subscription.
func (v *Value[T]) UnbindAll() {
	for _, b := range v.bindings {
		b.sub.active = false
	}
	v.bindings = nil
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	return len(v.bindings)
}
