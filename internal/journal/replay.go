package journal

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/qrorder/internal/order"
)

// State is a session rebuilt from its journaled events.
type State struct {
	Status      order.Status   `json:"status"`
	Cause       order.Cause    `json:"cause"`
	Token       string         `json:"token,omitempty"`
	Cart        map[string]int `json:"cart"`
	Unavailable []string       `json:"unavailable"`
	Events      int            `json:"events"`
	LastSeq     int64          `json:"last_seq"`
}

// ReplayError reports an event that cannot follow the ones before it.
type ReplayError struct {
	Seq     int64
	Message string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay: seq %d: %s", e.Seq, e.Message)
}

// Replay folds entries, ordered by seq, into the session state they
// describe. Sequence numbers must be contiguous.
func Replay(entries []Entry) (State, error) {
	st := State{
		Status: order.StatusNone,
		Cause:  order.CauseNone,
		Cart:   map[string]int{},
	}
	unavailable := map[string]bool{}

	for i, entry := range entries {
		e, err := entry.Event()
		if err != nil {
			return State{}, &ReplayError{Seq: entry.Seq, Message: err.Error()}
		}
		if i > 0 && e.Seq != st.LastSeq+1 {
			return State{}, &ReplayError{Seq: e.Seq, Message: fmt.Sprintf("gap after seq %d", st.LastSeq)}
		}
		st.LastSeq = e.Seq
		st.Events++

		switch e.Type {
		case order.EventAdded, order.EventDecremented:
			if e.Type == order.EventDecremented && st.Cart[e.ItemID] == 0 {
				return State{}, &ReplayError{Seq: e.Seq, Message: e.ItemID + " decremented but not in cart"}
			}
			if e.Quantity == 0 {
				delete(st.Cart, e.ItemID)
			} else {
				st.Cart[e.ItemID] = e.Quantity
			}
		case order.EventRemoved:
			delete(st.Cart, e.ItemID)
		case order.EventCleared:
			clear(st.Cart)
			clear(unavailable)
		case order.EventRestarted:
			clear(st.Cart)
			clear(unavailable)
			st.Status, st.Cause, st.Token = order.StatusNone, order.CauseNone, ""
		case order.EventCommitted:
			st.Status, st.Cause, st.Token = order.StatusPending, order.CauseNone, e.Token
		case order.EventInvalidated:
			if st.Status != order.StatusPending || st.Token != e.Token {
				return State{}, &ReplayError{Seq: e.Seq, Message: fmt.Sprintf("token %s invalidated while %s", e.Token, st.Status)}
			}
			st.Status, st.Cause = order.StatusInvalidated, e.Cause
		case order.EventStockOut:
			for _, id := range e.ItemIDs {
				unavailable[id] = true
				delete(st.Cart, id)
			}
		case order.EventRejected:
		default:
			return State{}, &ReplayError{Seq: e.Seq, Message: fmt.Sprintf("unknown event type %q", e.Type)}
		}
	}

	st.Unavailable = slices.Sorted(maps.Keys(unavailable))
	if st.Unavailable == nil {
		st.Unavailable = []string{}
	}
	return st, nil
}
