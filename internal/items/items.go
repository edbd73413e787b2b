// Package items provides the item model and the inventory multiset held by
// villagers, buildings and resources.
package items

// ID identifies one physical item for its whole life. Transfers keep the ID.
type ID uint64

// Type enumerates item kinds.
type Type uint8

const (
	TypeNone Type = iota
	TypeWater
	TypeFood
	TypeLumber
	TypeStone
	TypeOre
	TypePickaxe
	TypeAxe
	TypeBucket
)

// Item is either a plain stackable good or a tool with an efficiency 0–100.
type Item struct {
	ID         ID   `json:"id"`
	Type       Type `json:"type"`
	Efficiency int  `json:"efficiency,omitempty"` // Tools only
}

// IsTool reports whether the item type is a tool.
func (t Type) IsTool() bool {
	return t == TypePickaxe || t == TypeAxe || t == TypeBucket
}

// IsTool reports whether the item is a tool.
func (it Item) IsTool() bool {
	return it.Type.IsTool()
}

// Tools lists every tool type.
var Tools = []Type{TypePickaxe, TypeAxe, TypeBucket}

// String returns a human-readable name for an item type.
func (t Type) String() string {
	switch t {
	case TypeWater:
		return "water"
	case TypeFood:
		return "food"
	case TypeLumber:
		return "lumber"
	case TypeStone:
		return "stone"
	case TypeOre:
		return "ore"
	case TypePickaxe:
		return "pickaxe"
	case TypeAxe:
		return "axe"
	case TypeBucket:
		return "bucket"
	default:
		return "none"
	}
}

// Sequence hands out item IDs. The zero value starts at 1.
type Sequence struct {
	last ID
}

// Next returns a fresh ID.
func (s *Sequence) Next() ID {
	s.last++
	return s.last
}

// New creates a plain item with a fresh ID.
func (s *Sequence) New(t Type) Item {
	return Item{ID: s.Next(), Type: t}
}

// NewTool creates a tool with a fresh ID and the given efficiency, clamped to 0–100.
func (s *Sequence) NewTool(t Type, efficiency int) Item {
	if efficiency < 0 {
		efficiency = 0
	}
	if efficiency > 100 {
		efficiency = 100
	}
	return Item{ID: s.Next(), Type: t, Efficiency: efficiency}
}
