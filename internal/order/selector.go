package order

import (
	"math/rand/v2"
	"slices"
)

// DefaultMaxPicks is how many items a booth stock-out takes at most.
const DefaultMaxPicks = 2

// RandomSelector picks a random non-empty subset of the candidates.
type RandomSelector struct {
	// Max caps the subset size. Zero or negative means no cap.
	Max int

	rng *rand.Rand
}

// NewRandomSelector returns a selector capped at maxPicks. A nil rng uses the
// global source.
func NewRandomSelector(maxPicks int, rng *rand.Rand) *RandomSelector {
	return &RandomSelector{Max: maxPicks, rng: rng}
}

// Select returns between 1 and min(Max, len(candidates)) ids, in candidate
// order.
func (s *RandomSelector) Select(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	limit := len(candidates)
	if s.Max > 0 && s.Max < limit {
		limit = s.Max
	}
	n := 1 + s.intN(limit)

	idx := s.perm(len(candidates))[:n]
	slices.Sort(idx)
	out := make([]string, n)
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}

func (s *RandomSelector) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (s *RandomSelector) perm(n int) []int {
	if s.rng != nil {
		return s.rng.Perm(n)
	}
	return rand.Perm(n)
}
