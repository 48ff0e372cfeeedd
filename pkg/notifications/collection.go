package notifications

// EventHandler receives the notification involved in an add or remove event.
type EventHandler func(n *Notification)

// Listener identifies a registered event handler.
type Listener struct {
	active bool
}

type handlerEntry struct {
	listener *Listener
	fn       EventHandler
}

// Collection is an ordered code -> Notification mapping. Handlers registered
// with OnRemove run before the entry is deleted, so they still observe it
// through Has/Get.
type Collection struct {
	order    []string
	items    map[string]*Notification
	onAdd    []handlerEntry
	onRemove []handlerEntry
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[string]*Notification)}
}

// Add inserts or replaces the entry for code and fires the add event. A
// replacement keeps the original insertion position.
func (c *Collection) Add(code string, n *Notification) {
	if n == nil || code == "" {
		return
	}
	n.Code = code
	if _, exists := c.items[code]; !exists {
		c.order = append(c.order, code)
	}
	c.items[code] = n
	c.dispatch(c.onAdd, n)
}

// Remove deletes the entry for code, firing the remove event first. Removing
// an absent code is a no-op.
func (c *Collection) Remove(code string) {
	n, exists := c.items[code]
	if !exists {
		return
	}
	c.dispatch(c.onRemove, n)
	// A remove handler may already have removed or replaced the entry.
	if current, still := c.items[code]; !still || current != n {
		return
	}
	delete(c.items, code)
	for idx, existing := range c.order {
		if existing == code {
			c.order = append(c.order[:idx:idx], c.order[idx+1:]...)
			break
		}
	}
}

// Has reports whether code is live.
func (c *Collection) Has(code string) bool {
	_, ok := c.items[code]
	return ok
}

// Get returns the notification for code, or nil.
func (c *Collection) Get(code string) *Notification {
	return c.items[code]
}

// Len returns the number of live notifications.
func (c *Collection) Len() int {
	return len(c.order)
}

// All returns a snapshot of live notifications in insertion order. Mutating
// the collection while walking the snapshot is safe.
func (c *Collection) All() []*Notification {
	out := make([]*Notification, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.items[code])
	}
	return out
}

// Filter returns the live notifications matching keep, in insertion order.
func (c *Collection) Filter(keep func(*Notification) bool) []*Notification {
	var out []*Notification
	for _, n := range c.All() {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// RemoveWhere removes every notification matching match and returns how many
// were removed.
func (c *Collection) RemoveWhere(match func(*Notification) bool) int {
	removed := 0
	for _, n := range c.All() {
		if match(n) && c.Get(n.Code) == n {
			c.Remove(n.Code)
			removed++
		}
	}
	return removed
}

// OnAdd registers a handler for add events.
func (c *Collection) OnAdd(fn EventHandler) *Listener {
	return c.register(&c.onAdd, fn)
}

// OnRemove registers a handler for remove events.
func (c *Collection) OnRemove(fn EventHandler) *Listener {
	return c.register(&c.onRemove, fn)
}

// Off detaches a listener returned by OnAdd or OnRemove.
func (c *Collection) Off(l *Listener) {
	if l == nil || !l.active {
		return
	}
	l.active = false
	c.onAdd = pruneHandlers(c.onAdd, l)
	c.onRemove = pruneHandlers(c.onRemove, l)
}

// Listeners returns the number of attached add and remove handlers.
func (c *Collection) Listeners() int {
	return len(c.onAdd) + len(c.onRemove)
}

func (c *Collection) register(dest *[]handlerEntry, fn EventHandler) *Listener {
	if fn == nil {
		return nil
	}
	l := &Listener{active: true}
	*dest = append(*dest, handlerEntry{listener: l, fn: fn})
	return l
}

func (c *Collection) dispatch(handlers []handlerEntry, n *Notification) {
	snapshot := append([]handlerEntry(nil), handlers...)
	for _, h := range snapshot {
		if h.listener.active {
			h.fn(n)
		}
	}
}

func pruneHandlers(handlers []handlerEntry, l *Listener) []handlerEntry {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h.listener != l {
			out = append(out, h)
		}
	}
	return out
}
