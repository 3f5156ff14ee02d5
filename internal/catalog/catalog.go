// Package catalog holds the immutable menu of purchasable items.
//
// A Catalog is built once, either from CUE source (see Load and Parse) or
// directly with New, and never changes afterwards. Every other package treats
// it as a read-only lookup table keyed by item id.
package catalog

import (
	"fmt"
	"slices"

	"golang.org/x/text/currency"
)

// Category groups items on the menu.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Item is a purchasable product. Price is in minor units of the catalog
// currency and is never negative.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Highlight   string `json:"highlight,omitempty"`
	Price       int64  `json:"price"`
}

// Catalog is an ordered, immutable set of items and their categories.
type Catalog struct {
	unit       currency.Unit
	categories []Category
	items      []Item
	byID       map[string]int
}

// New validates and builds a catalog. Item and category order is preserved.
//
// Validation rules:
//   - currency must be a known ISO 4217 code
//   - ids are non-empty and unique
//   - every item names an existing category
//   - names are non-empty and prices are non-negative
func New(currencyCode string, categories []Category, items []Item) (*Catalog, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", currencyCode, err)
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category with empty id")
		}
		if known[c.ID] {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}
		known[c.ID] = true
	}

	byID := make(map[string]int, len(items))
	for i, it := range items {
		switch {
		case it.ID == "":
			return nil, fmt.Errorf("item %d: empty id", i)
		case it.Name == "":
			return nil, fmt.Errorf("item %q: empty name", it.ID)
		case it.Price < 0:
			return nil, fmt.Errorf("item %q: negative price %d", it.ID, it.Price)
		case !known[it.Category]:
			return nil, fmt.Errorf("item %q: unknown category %q", it.ID, it.Category)
		}
		if _, dup := byID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.ID)
		}
		byID[it.ID] = i
	}

	return &Catalog{
		unit:       unit,
		categories: slices.Clone(categories),
		items:      slices.Clone(items),
		byID:       byID,
	}, nil
}

// Item returns the item with the given id.
func (c *Catalog) Item(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Has reports whether id names a catalog item.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// Categories returns all categories in catalog order.
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// InCategory returns the items of one category in catalog order.
func (c *Catalog) InCategory(categoryID string) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// Names maps ids to display names. Unknown ids map to themselves.
func (c *Catalog) Names(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if it, ok := c.Item(id); ok {
			out[i] = it.Name
		} else {
			out[i] = id
		}
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Currency returns the ISO 4217 code of the catalog currency.
func (c *Catalog) Currency() string {
	return c.unit.String()
}
