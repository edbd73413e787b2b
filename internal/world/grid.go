// Package world provides the tile grid, entity collections and terrain
// generation that villagers move through and query.
package world

import "math"

// Coord is an integer grid coordinate (tile column, tile row).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec is a continuous pixel-space position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TileType enumerates terrain for grid tiles.
type TileType uint8

const (
	TileWater TileType = iota
	TileDirt
	TileGrass
	TileSand
)

// Tile is one cell of the grid.
type Tile struct {
	Type     TileType `json:"type"`
	Walkable bool     `json:"walkable"`
	Road     bool     `json:"road"`

	coord Coord
}

// String returns a human-readable name for a tile type.
func (t TileType) String() string {
	switch t {
	case TileWater:
		return "water"
	case TileDirt:
		return "dirt"
	case TileGrass:
		return "grass"
	case TileSand:
		return "sand"
	default:
		return "unknown"
	}
}

// neighbourOffsets lists the four orthogonal offsets first, then diagonals.
var neighbourOffsets = [8]Coord{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: -1},
	{X: 1, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: -1},
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// IsDiagonal reports whether two adjacent coordinates differ on both axes.
func IsDiagonal(a, b Coord) bool {
	return a.X != b.X && a.Y != b.Y
}

// ManhattanTiles returns |dx|+|dy| between two grid coordinates.
func ManhattanTiles(a, b Coord) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// Manhattan returns |dx|+|dy| between two pixel positions.
func Manhattan(a, b Vec) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// Within reports whether a is within tol of b on both axes.
func Within(a, b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// InBounds returns true if the coordinate lies on the grid.
func (w *World) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < w.width && c.Y < w.height
}

// Tile returns the tile at c, or false outside the grid.
func (w *World) Tile(c Coord) (*Tile, bool) {
	if !w.InBounds(c) {
		return nil, false
	}
	return &w.tiles[c.Y*w.width+c.X], true
}

// TileAt returns the tile at grid position (x, y), or false outside the grid.
func (w *World) TileAt(x, y int) (*Tile, bool) {
	return w.Tile(Coord{X: x, Y: y})
}

// TileCoords returns the grid coordinate of a tile obtained from this world.
func (w *World) TileCoords(t *Tile) (Coord, bool) {
	if t == nil {
		return Coord{}, false
	}
	got, ok := w.Tile(t.coord)
	if !ok || got != t {
		return Coord{}, false
	}
	return t.coord, true
}

// SetTile sets the terrain at c. Water is never walkable; everything else is.
func (w *World) SetTile(c Coord, tt TileType) {
	t, ok := w.Tile(c)
	if !ok {
		return
	}
	t.Type = tt
	t.Walkable = tt != TileWater
	if !t.Walkable {
		t.Road = false
	}
}

// SetRoad marks or clears a road on a walkable tile.
func (w *World) SetRoad(c Coord, road bool) {
	t, ok := w.Tile(c)
	if !ok || !t.Walkable {
		return
	}
	t.Road = road
}

// Walkable reports whether c is on the grid and walkable.
func (w *World) Walkable(c Coord) bool {
	t, ok := w.Tile(c)
	return ok && t.Walkable
}

// Neighbours returns the walkable tiles adjacent to c. Diagonal steps are only
// offered when both orthogonal tiles beside them are walkable too, so paths
// never cut the corner of a blocked tile.
func (w *World) Neighbours(c Coord, diagonal bool) []Coord {
	out := make([]Coord, 0, 8)
	limit := 4
	if diagonal {
		limit = 8
	}
	for _, d := range neighbourOffsets[:limit] {
		n := c.Add(d)
		if !w.Walkable(n) {
			continue
		}
		if d.X != 0 && d.Y != 0 {
			if !w.Walkable(Coord{X: c.X + d.X, Y: c.Y}) || !w.Walkable(Coord{X: c.X, Y: c.Y + d.Y}) {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// ToGrid maps a pixel position to the grid coordinate containing it.
func (w *World) ToGrid(p Vec) Coord {
	ts := float64(w.tileSize)
	return Coord{X: int(math.Floor(p.X / ts)), Y: int(math.Floor(p.Y / ts))}
}

// Centre returns the pixel centre of a grid coordinate.
func (w *World) Centre(c Coord) Vec {
	ts := float64(w.tileSize)
	return Vec{X: (float64(c.X) + 0.5) * ts, Y: (float64(c.Y) + 0.5) * ts}
}

// TileSize returns the pixel size of one tile edge.
func (w *World) TileSize() int {
	return w.tileSize
}

// Width returns the grid width in tiles.
func (w *World) Width() int {
	return w.width
}

// Height returns the grid height in tiles.
func (w *World) Height() int {
	return w.height
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
