// World generation using layered simplex noise, plus the fixed ring map.
// Noise drives elevation and moisture, which are then mapped to tile types;
// roads and resources are laid on top.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width    int
	Height   int
	TileSize int
	Seed     int64

	SeaLevel  float64 // Elevation threshold for water (0.0–1.0)
	ShoreBand float64 // Elevation band above SeaLevel that becomes sand
	DryLevel  float64 // Moisture below which land is dirt instead of grass
	Clearing  int     // Radius in tiles of guaranteed grass around the centre

	// Resource counts to scatter.
	Trees, Food, Stone, Ore, Water int
	// Initial stock per resource, inclusive.
	MinItems, MaxItems int
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:     50,
		Height:    50,
		TileSize:  16,
		SeaLevel:  0.28,
		ShoreBand: 0.06,
		DryLevel:  0.42,
		Clearing:  4,
		Trees:     120,
		Food:      60,
		Stone:     40,
		Ore:       25,
		Water:     40,
		MinItems:  1,
		MaxItems:  5,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.Seed = 42
	cfg.Trees, cfg.Food, cfg.Stone, cfg.Ore, cfg.Water = 10, 6, 4, 3, 4
	return cfg
}

// Generate creates a world with noise terrain, a road cross through the
// centre and scattered resources. All randomness after the noise seed comes
// from rng so that one seed reproduces the map.
func Generate(cfg GenConfig, rng *entropy.Rand) *World {
	w := NewWorld(cfg.Width, cfg.Height, cfg.TileSize)

	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	cx, cy := float64(cfg.Width-1)/2, float64(cfg.Height-1)/2
	radius := math.Min(cx, cy)
	if radius <= 0 {
		radius = 1
	}

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.08, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.06, 0.5)

			// Continental shaping: pull elevation down towards the edges.
			dist := math.Hypot(fx-cx, fy-cy) / radius
			falloff := 1.0 - math.Pow(dist, 3.5)
			if falloff < 0 {
				falloff = 0
			}
			elev *= falloff

			c := Coord{X: x, Y: y}
			if dist*radius <= float64(cfg.Clearing) {
				w.SetTile(c, TileGrass)
				continue
			}
			w.SetTile(c, deriveTile(elev, moist, cfg))
		}
	}

	layRoads(w)
	scatterResources(w, cfg, rng)
	return w
}

// deriveTile maps elevation and moisture to a tile type.
func deriveTile(elev, moist float64, cfg GenConfig) TileType {
	switch {
	case elev < cfg.SeaLevel:
		return TileWater
	case elev < cfg.SeaLevel+cfg.ShoreBand:
		return TileSand
	case moist < cfg.DryLevel:
		return TileDirt
	default:
		return TileGrass
	}
}

// layRoads marks a cross through the map centre on every walkable tile it
// crosses.
func layRoads(w *World) {
	cx, cy := w.width/2, w.height/2
	for x := 0; x < w.width; x++ {
		w.SetRoad(Coord{X: x, Y: cy}, true)
	}
	for y := 0; y < w.height; y++ {
		w.SetRoad(Coord{X: cx, Y: y}, true)
	}
}

// GenerateRings builds the fixed concentric map: water border, grass, sand,
// dirt, grass again and a central lake. It uses the same resource scatter as
// Generate.
func GenerateRings(cfg GenConfig, rng *entropy.Rand) *World {
	w := NewWorld(cfg.Width, cfg.Height, cfg.TileSize)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			w.SetTile(Coord{X: x, Y: y}, ringTile(x, y, cfg.Width, cfg.Height))
		}
	}
	scatterResources(w, cfg, rng)
	return w
}

// ringTile returns the tile type at (x, y) for the ring map. Band edges are
// scaled from a 50×50 layout.
func ringTile(x, y, width, height int) TileType {
	rings := []struct {
		inset int
		tile  TileType
	}{
		{20, TileWater},
		{15, TileGrass},
		{10, TileDirt},
		{5, TileSand},
		{2, TileGrass},
	}
	for _, r := range rings {
		ix := r.inset * width / 50
		iy := r.inset * height / 50
		if x >= ix && x < width-ix && y >= iy && y < height-iy {
			return r.tile
		}
	}
	return TileWater
}

// scatterResources places each resource kind on free walkable, non-road
// tiles. Water sources prefer tiles on the shore.
func scatterResources(w *World, cfg GenConfig, rng *entropy.Rand) {
	occupied := make(map[Coord]bool)
	place := func(rt ResourceType, n int, prefer func(Coord) bool) {
		for i := 0; i < n; i++ {
			c, ok := freeTile(w, rng, occupied, prefer)
			if !ok {
				return
			}
			occupied[c] = true
			r := &Resource{Type: rt, Pos: w.Centre(c), Items: items.NewInventory(), Harvestable: true}
			Restock(w, r, rng.Between(cfg.MinItems, cfg.MaxItems))
			w.AddResource(r)
		}
	}
	place(ResourceWater, cfg.Water, w.isShore)
	place(ResourceTree, cfg.Trees, nil)
	place(ResourceFood, cfg.Food, nil)
	place(ResourceStone, cfg.Stone, nil)
	place(ResourceOre, cfg.Ore, nil)
}

// freeTile draws random tiles until it finds a usable one. A preferred tile is
// taken when found within the first half of the attempts.
func freeTile(w *World, rng *entropy.Rand, occupied map[Coord]bool, prefer func(Coord) bool) (Coord, bool) {
	const attempts = 200
	for i := 0; i < attempts; i++ {
		c := Coord{X: rng.Intn(w.width), Y: rng.Intn(w.height)}
		t, ok := w.Tile(c)
		if !ok || !t.Walkable || t.Road || occupied[c] {
			continue
		}
		if prefer != nil && i < attempts/2 && !prefer(c) {
			continue
		}
		return c, true
	}
	return Coord{}, false
}

// isShore reports whether a walkable tile touches water orthogonally.
func (w *World) isShore(c Coord) bool {
	for _, d := range neighbourOffsets[:4] {
		if t, ok := w.Tile(c.Add(d)); ok && t.Type == TileWater {
			return true
		}
	}
	return false
}

// Restock adds n fresh items of the resource's yield type. Graves yield nothing.
func Restock(w *World, r *Resource, n int) {
	yield := r.Type.Yield()
	if yield == items.TypeNone {
		return
	}
	for i := 0; i < n; i++ {
		r.Items.Add(w.Items.New(yield))
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TileCounts returns a summary of tile type distribution.
func TileCounts(w *World) map[TileType]int {
	counts := make(map[TileType]int)
	for _, t := range w.tiles {
		counts[t.Type]++
	}
	return counts
}
