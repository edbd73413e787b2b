package world

import (
	"github.com/Netflux/Villa/internal/items"
)

// EntityKind tags which collection an EntityRef points into.
type EntityKind uint8

const (
	KindNone EntityKind = iota
	KindVillager
	KindBuilding
	KindResource
)

// EntityRef is a stable handle to a villager, building or resource. A ref to
// a removed entity simply stops resolving.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uint64     `json:"id"`
}

// IsZero reports whether the ref points at nothing.
func (r EntityRef) IsZero() bool {
	return r.Kind == KindNone
}

// Entity is anything with a position and an inventory.
type Entity interface {
	Ref() EntityRef
	Position() Vec
	Inventory() *items.Inventory
}

// ResourceType enumerates harvestable resources.
type ResourceType uint8

const (
	ResourceWater ResourceType = iota
	ResourceFood
	ResourceTree
	ResourceStone
	ResourceOre
	ResourceGrave // Left behind by a dead villager; never respawns
)

// Resource is a harvestable entity placed on the map.
type Resource struct {
	ID          uint64           `json:"id"`
	Type        ResourceType     `json:"type"`
	Pos         Vec              `json:"pos"`
	Items       *items.Inventory `json:"items"`
	Harvestable bool             `json:"harvestable"`
	RespawnAt   uint64           `json:"respawn_at,omitempty"` // Sim ms
}

func (r *Resource) Ref() EntityRef              { return EntityRef{Kind: KindResource, ID: r.ID} }
func (r *Resource) Position() Vec               { return r.Pos }
func (r *Resource) Inventory() *items.Inventory { return r.Items }

// Yield returns the item type a resource restocks with.
func (t ResourceType) Yield() items.Type {
	switch t {
	case ResourceWater:
		return items.TypeWater
	case ResourceFood:
		return items.TypeFood
	case ResourceTree:
		return items.TypeLumber
	case ResourceStone:
		return items.TypeStone
	case ResourceOre:
		return items.TypeOre
	default:
		return items.TypeNone
	}
}

// Tool returns the tool category used to harvest a resource type.
func (t ResourceType) Tool() items.Type {
	switch t {
	case ResourceWater:
		return items.TypeBucket
	case ResourceTree:
		return items.TypeAxe
	case ResourceStone, ResourceOre:
		return items.TypePickaxe
	default:
		return items.TypeNone
	}
}

// String returns a human-readable name for a resource type.
func (t ResourceType) String() string {
	switch t {
	case ResourceWater:
		return "water"
	case ResourceFood:
		return "food"
	case ResourceTree:
		return "tree"
	case ResourceStone:
		return "stone"
	case ResourceOre:
		return "ore"
	case ResourceGrave:
		return "grave"
	default:
		return "unknown"
	}
}

// BuildingType enumerates constructible buildings.
type BuildingType uint8

const (
	BuildingTownHall BuildingType = iota
	BuildingHouse
	BuildingHouseSmall
	BuildingFarmhouse
	BuildingBlacksmith
	BuildingStall
)

// Footprint returns the width and height in tiles of a building type.
func (t BuildingType) Footprint() (w, h int) {
	switch t {
	case BuildingTownHall, BuildingHouse, BuildingFarmhouse:
		return 2, 4
	case BuildingHouseSmall:
		return 1, 2
	default:
		return 2, 2
	}
}

var buildingNames = map[BuildingType]string{
	BuildingTownHall:   "town_hall",
	BuildingHouse:      "house",
	BuildingHouseSmall: "house_small",
	BuildingFarmhouse:  "farmhouse",
	BuildingBlacksmith: "blacksmith",
	BuildingStall:      "stall",
}

// String returns the config name of a building type.
func (t BuildingType) String() string {
	if n, ok := buildingNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseBuildingType maps a config name to a building type.
func ParseBuildingType(name string) (BuildingType, bool) {
	for t, n := range buildingNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Building is a constructed (or blueprint) structure. X, Y is the left column
// of its base row; the footprint extends Width tiles right and Height tiles up.
type Building struct {
	ID     uint64           `json:"id"`
	Type   BuildingType     `json:"type"`
	X      int              `json:"x"`
	Y      int              `json:"y"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Door   Vec              `json:"door"` // Pixel centre of the tile in front of the door
	Items  *items.Inventory `json:"items"`
}

func (b *Building) Ref() EntityRef              { return EntityRef{Kind: KindBuilding, ID: b.ID} }
func (b *Building) Position() Vec               { return b.Door }
func (b *Building) Inventory() *items.Inventory { return b.Items }

// DoorTile returns the grid coordinate in front of the door.
func (b *Building) DoorTile() Coord {
	return Coord{X: b.X + b.Width/2, Y: b.Y + 1}
}

// Footprint returns every tile the building covers.
func (b *Building) Footprint() []Coord {
	out := make([]Coord, 0, b.Width*b.Height)
	for dy := 0; dy < b.Height; dy++ {
		for dx := 0; dx < b.Width; dx++ {
			out = append(out, Coord{X: b.X + dx, Y: b.Y - dy})
		}
	}
	return out
}
