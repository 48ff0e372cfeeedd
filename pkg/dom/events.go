package dom

// Common event names.
const (
	EventChange = "change"
	EventInput  = "input"
)

// Event is delivered to listeners by Dispatch.
type Event struct {
	Type   string
	Target *Element
}

// EventListener is the handle returned by AddEventListener.
type EventListener struct {
	event  string
	fn     func(*Event)
	active bool
}

// AddEventListener registers fn for event on the element.
func (e *Element) AddEventListener(event string, fn func(*Event)) *EventListener {
	if fn == nil || event == "" {
		return nil
	}
	byEvent := e.doc.listeners[e.node]
	if byEvent == nil {
		byEvent = make(map[string][]*EventListener)
		e.doc.listeners[e.node] = byEvent
	}
	l := &EventListener{event: event, fn: fn, active: true}
	byEvent[l.event] = append(byEvent[l.event], l)
	return l
}

// RemoveEventListener detaches a listener. Nil or already removed handles are
// ignored.
func (e *Element) RemoveEventListener(l *EventListener) {
	if l == nil || !l.active {
		return
	}
	l.active = false
	byEvent := e.doc.listeners[e.node]
	if byEvent == nil {
		return
	}
	list := byEvent[l.event]
	for idx, existing := range list {
		if existing == l {
			byEvent[l.event] = append(list[:idx:idx], list[idx+1:]...)
			break
		}
	}
	if len(byEvent[l.event]) == 0 {
		delete(byEvent, l.event)
	}
	if len(byEvent) == 0 {
		delete(e.doc.listeners, e.node)
	}
}

// Dispatch delivers an event to the element's listeners synchronously and
// returns how many ran. Events do not bubble.
func (e *Element) Dispatch(event string) int {
	byEvent := e.doc.listeners[e.node]
	if byEvent == nil {
		return 0
	}
	snapshot := append([]*EventListener(nil), byEvent[event]...)
	ev := &Event{Type: event, Target: e}
	ran := 0
	for _, l := range snapshot {
		if !l.active {
			continue
		}
		l.fn(ev)
		ran++
	}
	return ran
}

// ListenerCount returns the number of listeners for event, or for all events
// when event is empty.
func (e *Element) ListenerCount(event string) int {
	byEvent := e.doc.listeners[e.node]
	if event != "" {
		return len(byEvent[event])
	}
	total := 0
	for _, list := range byEvent {
		total += len(list)
	}
	return total
}

// ListenerCount returns the number of listeners registered across the
// document.
func (d *Document) ListenerCount() int {
	total := 0
	for _, byEvent := range d.listeners {
		for _, list := range byEvent {
			total += len(list)
		}
	}
	return total
}
