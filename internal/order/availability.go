package order

import (
	"maps"
	"slices"
)

// Availability is the set of sold-out item ids. It only grows while a session
// runs; Restart and Clear empty it.
type Availability struct {
	ids map[string]struct{}
}

// Has reports whether itemID is sold out.
func (a Availability) Has(itemID string) bool {
	_, ok := a.ids[itemID]
	return ok
}

// IDs returns the sold-out ids in sorted order.
func (a Availability) IDs() []string {
	return slices.Sorted(maps.Keys(a.ids))
}

// Len returns the number of sold-out ids.
func (a Availability) Len() int {
	return len(a.ids)
}

// mark adds ids to the set and returns those that were not already present.
func (a *Availability) mark(ids []string) []string {
	if a.ids == nil {
		a.ids = make(map[string]struct{}, len(ids))
	}
	var added []string
	for _, id := range ids {
		if _, ok := a.ids[id]; ok {
			continue
		}
		a.ids[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

func (a *Availability) reset() {
	a.ids = nil
}
