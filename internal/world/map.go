package world

import (
	"fmt"

	"github.com/Netflux/Villa/internal/items"
)

// World holds the grid plus the building and resource collections. Entities
// are addressed by stable IDs; slices keep insertion order for iteration.
type World struct {
	width    int
	height   int
	tileSize int
	tiles    []Tile

	buildings     []*Building
	buildingIndex map[uint64]*Building
	resources     []*Resource
	resourceIndex map[uint64]*Resource

	nextID uint64

	// Items issues IDs for every item created in this world.
	Items items.Sequence
}

// NewWorld creates a width×height grid of walkable grass.
func NewWorld(width, height, tileSize int) *World {
	w := &World{
		width:         width,
		height:        height,
		tileSize:      tileSize,
		tiles:         make([]Tile, width*height),
		buildingIndex: make(map[uint64]*Building),
		resourceIndex: make(map[uint64]*Resource),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			w.tiles[y*width+x] = Tile{Type: TileGrass, Walkable: true, coord: Coord{X: x, Y: y}}
		}
	}
	return w
}

// NextID issues an entity ID unique across all entity kinds in this world.
func (w *World) NextID() uint64 {
	w.nextID++
	return w.nextID
}

// Buildings returns a snapshot of the building list.
func (w *World) Buildings() []*Building {
	out := make([]*Building, len(w.buildings))
	copy(out, w.buildings)
	return out
}

// Resources returns a snapshot of the resource list.
func (w *World) Resources() []*Resource {
	out := make([]*Resource, len(w.resources))
	copy(out, w.resources)
	return out
}

// Building returns the building with the given ID.
func (w *World) Building(id uint64) (*Building, bool) {
	b, ok := w.buildingIndex[id]
	return b, ok
}

// Resource returns the resource with the given ID.
func (w *World) Resource(id uint64) (*Resource, bool) {
	r, ok := w.resourceIndex[id]
	return r, ok
}

// AddResource registers a resource at a walkable position and assigns its ID.
func (w *World) AddResource(r *Resource) bool {
	if r == nil || !w.Walkable(w.ToGrid(r.Pos)) {
		return false
	}
	if r.Items == nil {
		r.Items = items.NewInventory()
	}
	r.ID = w.NextID()
	w.resources = append(w.resources, r)
	w.resourceIndex[r.ID] = r
	return true
}

// RemoveResource deletes a resource. Outstanding refs stop resolving.
func (w *World) RemoveResource(id uint64) bool {
	if _, ok := w.resourceIndex[id]; !ok {
		return false
	}
	delete(w.resourceIndex, id)
	for i, r := range w.resources {
		if r.ID == id {
			w.resources = append(w.resources[:i], w.resources[i+1:]...)
			break
		}
	}
	return true
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(%dx%d, buildings=%d, resources=%d)", w.width, w.height, len(w.buildings), len(w.resources))
}

// NearestWalkable returns the walkable tile closest to c by ring distance.
func (w *World) NearestWalkable(c Coord) (Coord, bool) {
	limit := w.width
	if w.height > limit {
		limit = w.height
	}
	for r := 0; r <= limit; r++ {
		for _, n := range ringCoords(c, r) {
			if w.Walkable(n) {
				return n, true
			}
		}
	}
	return Coord{}, false
}
