package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
)

func TestWaterIsNeverWalkable(t *testing.T) {
	w := NewWorld(4, 4, 16)
	c := Coord{X: 1, Y: 1}
	w.SetRoad(c, true)
	w.SetTile(c, TileWater)

	tile, ok := w.Tile(c)
	require.True(t, ok)
	assert.False(t, tile.Walkable)
	assert.False(t, tile.Road)

	w.SetRoad(c, true)
	assert.False(t, tile.Road, "roads are not laid on water")
}

func TestTileCoordsRoundTrip(t *testing.T) {
	w := NewWorld(5, 3, 16)
	tile, ok := w.TileAt(4, 2)
	require.True(t, ok)
	c, ok := w.TileCoords(tile)
	require.True(t, ok)
	assert.Equal(t, Coord{X: 4, Y: 2}, c)

	_, ok = w.TileAt(5, 0)
	assert.False(t, ok)
	_, ok = w.TileCoords(&Tile{})
	assert.False(t, ok)
}

func TestPixelGridConversion(t *testing.T) {
	w := NewWorld(10, 10, 16)
	assert.Equal(t, Coord{X: 2, Y: 3}, w.ToGrid(Vec{X: 40, Y: 63.9}))
	assert.Equal(t, Vec{X: 40, Y: 56}, w.Centre(Coord{X: 2, Y: 3}))
	assert.True(t, Within(Vec{X: 10, Y: 10}, Vec{X: 16, Y: 4}, 6))
	assert.False(t, Within(Vec{X: 10, Y: 10}, Vec{X: 16.5, Y: 10}, 6))
}

func TestNeighboursDoNotCutCorners(t *testing.T) {
	w := NewWorld(3, 3, 16)
	centre := Coord{X: 1, Y: 1}
	assert.Len(t, w.Neighbours(centre, true), 8)
	assert.Len(t, w.Neighbours(centre, false), 4)

	w.SetTile(Coord{X: 1, Y: 0}, TileWater)
	got := w.Neighbours(centre, true)
	assert.Len(t, got, 5)
	assert.NotContains(t, got, Coord{X: 0, Y: 0})
	assert.NotContains(t, got, Coord{X: 2, Y: 0})
}

func TestAddBuildingBlocksFootprint(t *testing.T) {
	w := NewWorld(10, 10, 16)
	b := w.Blueprint(BuildingHouse, 3, 5)
	require.True(t, w.AvailableSpace(3, 5, BuildingHouse))
	require.True(t, w.AddBuilding(b))
	assert.NotZero(t, b.ID)

	for _, c := range b.Footprint() {
		assert.False(t, w.Walkable(c), "footprint tile %v", c)
	}
	assert.Len(t, b.Footprint(), 8)
	assert.Equal(t, Coord{X: 4, Y: 6}, b.DoorTile())
	assert.Equal(t, w.Centre(Coord{X: 4, Y: 6}), b.Door)
	door, _ := w.Tile(b.DoorTile())
	assert.True(t, door.Road)

	assert.False(t, w.AvailableSpace(3, 5, BuildingHouse), "overlap")
	assert.False(t, w.AddBuilding(w.Blueprint(BuildingStall, 4, 4)))

	got, ok := w.Building(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestAvailableSpaceRejectsEdgesAndResources(t *testing.T) {
	w := NewWorld(10, 10, 16)
	assert.False(t, w.AvailableSpace(9, 5, BuildingHouse), "runs off the right edge")
	assert.False(t, w.AvailableSpace(3, 9, BuildingStall), "door off the bottom edge")
	assert.False(t, w.AvailableSpace(3, 1, BuildingHouse), "runs off the top edge")

	require.True(t, w.AddResource(&Resource{Type: ResourceTree, Pos: w.Centre(Coord{X: 3, Y: 4})}))
	assert.False(t, w.AvailableSpace(3, 5, BuildingHouse))

	w.SetTile(Coord{X: 7, Y: 6}, TileWater)
	assert.False(t, w.AvailableSpace(6, 5, BuildingBlacksmith), "door on water")
}

func TestRemoveResourceInvalidatesRef(t *testing.T) {
	w := NewWorld(4, 4, 16)
	r := &Resource{Type: ResourceFood, Pos: w.Centre(Coord{X: 1, Y: 1})}
	require.True(t, w.AddResource(r))
	ref := r.Ref()

	assert.True(t, w.RemoveResource(ref.ID))
	_, ok := w.Resource(ref.ID)
	assert.False(t, ok)
	assert.Empty(t, w.Resources())
	assert.False(t, w.RemoveResource(ref.ID))

	w.SetTile(Coord{X: 2, Y: 2}, TileWater)
	assert.False(t, w.AddResource(&Resource{Pos: w.Centre(Coord{X: 2, Y: 2})}))
}

func TestResourceToolsAndYield(t *testing.T) {
	assert.Equal(t, items.TypeBucket, ResourceWater.Tool())
	assert.Equal(t, items.TypeAxe, ResourceTree.Tool())
	assert.Equal(t, items.TypePickaxe, ResourceOre.Tool())
	assert.Equal(t, items.TypeNone, ResourceFood.Tool())
	assert.Equal(t, items.TypeLumber, ResourceTree.Yield())
	assert.Equal(t, items.TypeNone, ResourceGrave.Yield())

	bt, ok := ParseBuildingType("house_small")
	require.True(t, ok)
	assert.Equal(t, BuildingHouseSmall, bt)
	_, ok = ParseBuildingType("castle")
	assert.False(t, ok)
}

func TestGenerateRingsLayout(t *testing.T) {
	cfg := DefaultGenConfig()
	w := GenerateRings(cfg, entropy.New(1))

	tileAt := func(x, y int) TileType {
		tile, ok := w.TileAt(x, y)
		require.True(t, ok)
		return tile.Type
	}
	assert.Equal(t, TileWater, tileAt(0, 0))
	assert.Equal(t, TileGrass, tileAt(3, 25))
	assert.Equal(t, TileSand, tileAt(7, 25))
	assert.Equal(t, TileDirt, tileAt(12, 25))
	assert.Equal(t, TileGrass, tileAt(17, 25))
	assert.Equal(t, TileWater, tileAt(25, 25))

	for _, r := range w.Resources() {
		assert.True(t, w.Walkable(w.ToGrid(r.Pos)))
		assert.True(t, r.Harvestable)
		assert.GreaterOrEqual(t, r.Items.Count(), cfg.MinItems)
		assert.LessOrEqual(t, r.Items.Count(), cfg.MaxItems)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg, entropy.New(cfg.Seed))
	b := Generate(cfg, entropy.New(cfg.Seed))

	assert.Equal(t, TileCounts(a), TileCounts(b))
	require.Equal(t, len(a.Resources()), len(b.Resources()))
	for i, r := range a.Resources() {
		assert.Equal(t, r.Pos, b.Resources()[i].Pos)
	}

	centre, _ := a.TileAt(cfg.Width/2, cfg.Height/2)
	assert.True(t, centre.Walkable)
	assert.True(t, centre.Road)
}

func TestPlaceVillage(t *testing.T) {
	cfg := SmallTestConfig()
	w := Generate(cfg, entropy.New(cfg.Seed))

	hall, spawns := PlaceVillage(w, entropy.New(2), 4)
	require.NotNil(t, hall)
	assert.Equal(t, BuildingTownHall, hall.Type)
	assert.Len(t, spawns, 4)
	for _, p := range spawns {
		assert.True(t, w.Walkable(w.ToGrid(p)))
	}
	assert.Len(t, w.Buildings(), 1)
}
