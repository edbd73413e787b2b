package items

import "encoding/json"

// Inventory is an unordered multiset of items owned by exactly one holder.
// Iteration order is insertion order, which keeps "first item" choices stable.
type Inventory struct {
	items []Item
}

// NewInventory returns an inventory holding the given items.
func NewInventory(initial ...Item) *Inventory {
	inv := &Inventory{}
	inv.items = append(inv.items, initial...)
	return inv
}

// Count returns the number of items held.
func (inv *Inventory) Count() int {
	return len(inv.items)
}

// IsEmpty returns true when nothing is held.
func (inv *Inventory) IsEmpty() bool {
	return len(inv.items) == 0
}

// CountType returns how many items of type t are held.
func (inv *Inventory) CountType(t Type) int {
	n := 0
	for _, it := range inv.items {
		if it.Type == t {
			n++
		}
	}
	return n
}

// Add places an item in the inventory.
func (inv *Inventory) Add(it Item) {
	inv.items = append(inv.items, it)
}

// Has reports whether the item with the given ID is held.
func (inv *Inventory) Has(id ID) bool {
	return inv.index(id) >= 0
}

// Find returns the first item of type t.
func (inv *Inventory) Find(t Type) (Item, bool) {
	for _, it := range inv.items {
		if it.Type == t {
			return it, true
		}
	}
	return Item{}, false
}

// First returns the first item held.
func (inv *Inventory) First() (Item, bool) {
	if len(inv.items) == 0 {
		return Item{}, false
	}
	return inv.items[0], true
}

// Remove takes the item with the given ID out of the inventory.
func (inv *Inventory) Remove(id ID) (Item, bool) {
	i := inv.index(id)
	if i < 0 {
		return Item{}, false
	}
	it := inv.items[i]
	inv.items = append(inv.items[:i], inv.items[i+1:]...)
	return it, true
}

// RemoveType removes up to n items of type t and returns how many were removed.
func (inv *Inventory) RemoveType(t Type, n int) int {
	removed := 0
	kept := inv.items[:0]
	for _, it := range inv.items {
		if it.Type == t && removed < n {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	inv.items = kept
	return removed
}

// BestTool returns the tool of type t with the highest efficiency. Plain item
// types never match.
func (inv *Inventory) BestTool(t Type) (Item, bool) {
	if !t.IsTool() {
		return Item{}, false
	}
	var best Item
	found := false
	for _, it := range inv.items {
		if it.Type == t && (!found || it.Efficiency > best.Efficiency) {
			best = it
			found = true
		}
	}
	return best, found
}

// Items returns a copy of the held items.
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Goods returns the held non-tool items in order.
func (inv *Inventory) Goods() []Item {
	var out []Item
	for _, it := range inv.items {
		if !it.IsTool() {
			out = append(out, it)
		}
	}
	return out
}

// Move transfers the item with the given ID from src to dst. It reports false
// and changes nothing when src no longer holds the item.
func Move(src, dst *Inventory, id ID) bool {
	it, ok := src.Remove(id)
	if !ok {
		return false
	}
	dst.Add(it)
	return true
}

// MoveAll transfers every item from src to dst and returns how many moved.
func MoveAll(src, dst *Inventory) int {
	n := len(src.items)
	dst.items = append(dst.items, src.items...)
	src.items = nil
	return n
}

// Summary counts held items by type name.
func (inv *Inventory) Summary() map[string]int {
	out := make(map[string]int)
	for _, it := range inv.items {
		out[it.Type.String()]++
	}
	return out
}

// MarshalJSON encodes the inventory as its item list.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	if inv == nil || inv.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(inv.items)
}

func (inv *Inventory) index(id ID) int {
	for i, it := range inv.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
