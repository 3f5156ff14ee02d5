package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/qrorder/internal/catalog"
)

var (
	shirt = catalog.Item{ID: "t1", Name: "Uni T-shirt", Price: 3500}
	charm = catalog.Item{ID: "a1", Name: "Uni acrylic keychain", Price: 800}
	tote  = catalog.Item{ID: "a2", Name: "Chocolat tote bag", Price: 2500}
)

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	var c Cart
	assert.Equal(t, 2, c.add(charm, 2))
	assert.Equal(t, 1, c.add(shirt, 1))
	assert.Equal(t, 3, c.add(charm, 1))

	assert.Equal(t, []string{"a1", "t1"}, c.IDs())
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, int64(3*800+3500), c.Total())
	assert.Equal(t, int64(2400), c.Lines()[0].Subtotal())
}

func TestCart_Decrement(t *testing.T) {
	var c Cart
	c.add(shirt, 2)

	n, ok := c.decrement("t1")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = c.decrement("t1")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	assert.True(t, c.IsEmpty())

	_, ok = c.decrement("t1")
	assert.False(t, ok)
}

func TestCart_RemoveAll(t *testing.T) {
	var c Cart
	c.add(shirt, 1)
	c.add(charm, 1)
	c.add(tote, 1)

	removed := c.removeAll([]string{"a2", "zz", "t1"})

	assert.Equal(t, []string{"t1", "a2"}, removed)
	assert.Equal(t, []string{"a1"}, c.IDs())
}

func TestCart_CloneIsDeep(t *testing.T) {
	var c Cart
	c.add(shirt, 1)
	snap := c.Clone()

	c.add(shirt, 4)
	c.remove("t1")

	assert.Equal(t, 1, snap.Quantity("t1"))
	assert.Equal(t, int64(3500), snap.Total())
}

func TestCart_LinesIsACopy(t *testing.T) {
	var c Cart
	c.add(shirt, 1)
	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Quantity("t1"))
}

func TestAvailability(t *testing.T) {
	var a Availability
	assert.False(t, a.Has("t1"))
	assert.Empty(t, a.IDs())

	assert.Equal(t, []string{"t2", "a1"}, a.mark([]string{"t2", "a1", "t2"}))
	assert.Nil(t, a.mark([]string{"a1"}))
	assert.Equal(t, []string{"a1", "t2"}, a.IDs())
	assert.Equal(t, 2, a.Len())

	a.reset()
	assert.Equal(t, 0, a.Len())
}

func TestCommitment_Remaining(t *testing.T) {
	var snap Cart
	snap.add(shirt, 1)
	snap.add(charm, 2)
	c := Commitment{Snapshot: snap, Status: StatusInvalidated, Withdrawn: []string{"a1"}}

	assert.Equal(t, []string{"t1"}, c.Remaining().IDs())
	assert.Equal(t, 2, c.Snapshot.Len())
	assert.False(t, c.Valid())
}

func TestSanitize(t *testing.T) {
	candidates := []string{"a1", "t1", "t2"}
	assert.Equal(t, []string{"t1", "t2"}, sanitize([]string{"t2", "t1", "t2"}, candidates))
	assert.Equal(t, []string{"a1"}, sanitize(nil, candidates))
	assert.Nil(t, sanitize(nil, nil))
}
