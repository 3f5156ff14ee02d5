package order

import (
	"encoding/base64"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSelector_SubsetBounds(t *testing.T) {
	candidates := []string{"a1", "a2", "t1", "t2", "t3"}
	sel := NewRandomSelector(0, rand.New(rand.NewPCG(1, 2)))

	sizes := make(map[int]bool)
	for range 500 {
		got := sel.Select(candidates)
		require.NotEmpty(t, got)
		require.LessOrEqual(t, len(got), len(candidates))
		require.True(t, slices.IsSorted(got), "picks keep candidate order")
		for _, id := range got {
			require.Contains(t, candidates, id)
		}
		require.Len(t, slices.Compact(slices.Clone(got)), len(got), "no duplicates")
		sizes[len(got)] = true
	}
	assert.True(t, sizes[1])
	assert.True(t, sizes[len(candidates)])
}

func TestRandomSelector_Max(t *testing.T) {
	sel := NewRandomSelector(DefaultMaxPicks, rand.New(rand.NewPCG(7, 7)))
	for range 200 {
		got := sel.Select([]string{"a", "b", "c", "d"})
		require.NotEmpty(t, got)
		require.LessOrEqual(t, len(got), DefaultMaxPicks)
	}
}

func TestRandomSelector_Deterministic(t *testing.T) {
	a := NewRandomSelector(0, rand.New(rand.NewPCG(42, 0)))
	b := NewRandomSelector(0, rand.New(rand.NewPCG(42, 0)))
	in := []string{"a1", "t1", "t2", "t3"}
	for range 20 {
		assert.Equal(t, a.Select(in), b.Select(in))
	}
}

func TestRandomSelector_GlobalSource(t *testing.T) {
	sel := &RandomSelector{}
	assert.Equal(t, []string{"only"}, sel.Select([]string{"only"}))
	assert.Nil(t, sel.Select(nil))
}

func TestRandomTokens(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		tok := RandomTokens{}.Generate()
		require.Len(t, tok, 24)
		raw, err := base64.StdEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, 16)
		assert.Equal(t, byte(0x40), raw[6]&0xf0, "version 4")
		require.False(t, seen[tok])
		seen[tok] = true
	}
}
