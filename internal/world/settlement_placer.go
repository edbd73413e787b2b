// Building placement and the initial village layout.
package world

import (
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
)

// Blueprint returns an unplaced building of type t anchored at grid (x, y).
// The building has no ID until AddBuilding accepts it.
func (w *World) Blueprint(t BuildingType, x, y int) *Building {
	width, height := t.Footprint()
	b := &Building{
		Type:   t,
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Items:  items.NewInventory(),
	}
	b.Door = w.Centre(b.DoorTile())
	return b
}

// AvailableSpace reports whether a building of type t fits with its base row
// at y and left column at x: every footprint tile walkable and free of
// resources, and a walkable tile in front of the door.
func (w *World) AvailableSpace(x, y int, t BuildingType) bool {
	b := w.Blueprint(t, x, y)
	return w.fits(b)
}

func (w *World) fits(b *Building) bool {
	taken := make(map[Coord]bool, len(w.resources))
	for _, r := range w.resources {
		taken[w.ToGrid(r.Pos)] = true
	}
	for _, c := range b.Footprint() {
		if !w.Walkable(c) || taken[c] {
			return false
		}
	}
	return w.Walkable(b.DoorTile())
}

// AddBuilding places a building, blocking its footprint and turning the
// doorway tile into road. It reports false when the space is not available.
func (w *World) AddBuilding(b *Building) bool {
	if b == nil {
		return false
	}
	b.Width, b.Height = b.Type.Footprint()
	if !w.fits(b) {
		return false
	}
	if b.Items == nil {
		b.Items = items.NewInventory()
	}
	b.Door = w.Centre(b.DoorTile())
	b.ID = w.NextID()

	for _, c := range b.Footprint() {
		t, _ := w.Tile(c)
		t.Walkable = false
		t.Road = false
	}
	w.SetRoad(b.DoorTile(), true)

	w.buildings = append(w.buildings, b)
	w.buildingIndex[b.ID] = b
	return true
}

// PlaceVillage founds the starting town hall as close to the map centre as
// space allows and returns it with up to n walkable spawn points around its
// door. It returns nil when no spot fits.
func PlaceVillage(w *World, rng *entropy.Rand, n int) (*Building, []Vec) {
	centre := Coord{X: w.width / 2, Y: w.height / 2}
	maxRing := w.width
	if w.height > maxRing {
		maxRing = w.height
	}

	var hall *Building
	for ring := 0; ring <= maxRing && hall == nil; ring++ {
		for _, c := range ringCoords(centre, ring) {
			b := w.Blueprint(BuildingTownHall, c.X, c.Y)
			if w.AddBuilding(b) {
				hall = b
				break
			}
		}
	}
	if hall == nil {
		return nil, nil
	}

	door := hall.DoorTile()
	var spots []Coord
	for ring := 0; ring <= 3; ring++ {
		for _, c := range ringCoords(door, ring) {
			if w.Walkable(c) {
				spots = append(spots, c)
			}
		}
	}
	points := make([]Vec, 0, n)
	for i := 0; i < n && len(spots) > 0; i++ {
		points = append(points, w.Centre(spots[rng.Intn(len(spots))]))
	}
	return hall, points
}

// ringCoords returns the in-bounds tiles at Chebyshev distance r from c.
func ringCoords(c Coord, r int) []Coord {
	if r == 0 {
		return []Coord{c}
	}
	var out []Coord
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if absInt(dx) != r && absInt(dy) != r {
				continue
			}
			out = append(out, Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}
