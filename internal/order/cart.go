package order

import (
	"slices"

	"github.com/roach88/qrorder/internal/catalog"
)

// MaxLineQuantity caps the units of one item in a cart.
const MaxLineQuantity = 999

// Line is one cart entry. Quantity is between 1 and MaxLineQuantity; a line
// that would drop to zero is deleted instead.
type Line struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns quantity × unit price.
func (l Line) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// Cart is an insertion-ordered set of lines keyed by item id.
//
// Only Session mutates a Cart. Values handed out by Session are copies, so
// holding one never observes later edits.
type Cart struct {
	lines []Line
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// IDs returns the item ids in insertion order.
func (c Cart) IDs() []string {
	ids := make([]string, len(c.lines))
	for i, l := range c.lines {
		ids[i] = l.ItemID
	}
	return ids
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Count returns the total number of units.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of line subtotals in minor units.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Quantity returns the quantity of one item, 0 if absent.
func (c Cart) Quantity(itemID string) int {
	if i := c.index(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Contains reports whether the item has a line.
func (c Cart) Contains(itemID string) bool {
	return c.index(itemID) >= 0
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	return Cart{lines: slices.Clone(c.lines)}
}

func (c Cart) index(itemID string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ItemID == itemID })
}

// add increments the line for item by qty, creating it at the end if absent.
// It returns the new quantity.
func (c *Cart) add(item catalog.Item, qty int) int {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return c.lines[i].Quantity
	}
	c.lines = append(c.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  qty,
	})
	return qty
}

// decrement drops one unit and deletes the line at zero. It returns the
// remaining quantity, or false if the item had no line.
func (c *Cart) decrement(itemID string) (int, bool) {
	i := c.index(itemID)
	if i < 0 {
		return 0, false
	}
	c.lines[i].Quantity--
	remaining := c.lines[i].Quantity
	if remaining <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
	return remaining, true
}

// remove deletes the line for itemID and reports whether it existed.
func (c *Cart) remove(itemID string) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// removeAll deletes every line whose id is in ids and returns the deleted ids
// in cart order.
func (c *Cart) removeAll(ids []string) []string {
	var removed []string
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool {
		if slices.Contains(ids, l.ItemID) {
			removed = append(removed, l.ItemID)
			return true
		}
		return false
	})
	return removed
}

func (c *Cart) clear() {
	c.lines = nil
}
