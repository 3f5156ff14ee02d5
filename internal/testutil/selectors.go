package testutil

import (
	"slices"

	"github.com/roach88/qrorder/internal/order"
)

// PickFirst selects only the first candidate.
var PickFirst = order.SelectorFunc(func(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[:1]
})

// PickAll selects every candidate.
var PickAll = order.SelectorFunc(func(candidates []string) []string {
	return slices.Clone(candidates)
})

// PickIDs returns ids regardless of the candidates. The session keeps only
// those that are in the committed snapshot.
func PickIDs(ids ...string) order.Selector {
	picked := slices.Clone(ids)
	return order.SelectorFunc(func([]string) []string {
		return slices.Clone(picked)
	})
}

// RecordingSelector wraps a selector and remembers every candidate list it saw.
type RecordingSelector struct {
	Inner order.Selector
	Calls [][]string
}

// Select records candidates and delegates.
func (r *RecordingSelector) Select(candidates []string) []string {
	r.Calls = append(r.Calls, slices.Clone(candidates))
	return r.Inner.Select(candidates)
}
