package models

// Inventory holds the items a player carries, in the order they were
// acquired. Duplicate names are allowed.
type Inventory struct {
	items []Item
}

// NewInventory returns an inventory holding a copy of items.
func NewInventory(items ...Item) *Inventory {
	inv := &Inventory{}
	inv.items = append(inv.items, items...)
	return inv
}

// Add appends an item.
func (inv *Inventory) Add(item Item) {
	inv.items = append(inv.items, item)
}

// Remove drops the first item with the given name and reports whether one
// was found.
func (inv *Inventory) Remove(name string) bool {
	for i, item := range inv.items {
		if item.Name == name {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether an item with the given name is carried.
func (inv *Inventory) Has(name string) bool {
	for _, item := range inv.items {
		if item.Name == name {
			return true
		}
	}
	return false
}

// Items returns a copy of the carried items.
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Len returns the number of carried items.
func (inv *Inventory) Len() int {
	return len(inv.items)
}
