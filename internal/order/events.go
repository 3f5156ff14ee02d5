package order

import "slices"

// EventType names a transition emitted to notifiers.
type EventType string

const (
	EventAdded       EventType = "Added"
	EventDecremented EventType = "Decremented"
	EventRemoved     EventType = "Removed"
	EventCleared     EventType = "Cleared"
	EventCommitted   EventType = "Committed"
	EventInvalidated EventType = "Invalidated"
	EventStockOut    EventType = "StockOut"
	EventRestarted   EventType = "Restarted"

	// EventRejected reports a failed operation. It carries the error code and
	// never accompanies a state change.
	EventRejected EventType = "Rejected"
)

// Event is one transition notification. Only the fields relevant to Type are
// set.
type Event struct {
	Seq    int64
	Type   EventType
	ItemID string

	// Quantity is the line quantity after Added or Decremented (0 when the
	// line was deleted).
	Quantity  int
	Token     string
	Cause     Cause
	ItemIDs   []string
	ItemNames []string
	Code      ErrorCode
}

// Payload returns the non-empty fields of e as a map suitable for canonical
// JSON encoding.
func (e Event) Payload() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"type": string(e.Type),
	}
	if e.ItemID != "" {
		m["item_id"] = e.ItemID
	}
	switch e.Type {
	case EventAdded, EventDecremented:
		m["quantity"] = e.Quantity
	}
	if e.Token != "" {
		m["token"] = e.Token
	}
	if e.Cause != "" && e.Cause != CauseNone {
		m["cause"] = string(e.Cause)
	}
	if len(e.ItemIDs) > 0 {
		m["item_ids"] = slices.Clone(e.ItemIDs)
	}
	if len(e.ItemNames) > 0 {
		m["item_names"] = slices.Clone(e.ItemNames)
	}
	if e.Code != "" {
		m["code"] = string(e.Code)
	}
	return m
}

// Notifier receives transition events. Implementations must not call back
// into the Session that emitted the event.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) {
	f(e)
}

// Notifiers fans an event out in order.
type Notifiers []Notifier

// Notify delivers e to every notifier.
func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		n.Notify(e)
	}
}

// Recorder is a Notifier that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Notify appends e.
func (r *Recorder) Notify(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	out := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
