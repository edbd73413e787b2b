package engine

import (
	"fmt"
	"log/slog"

	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// ItemTypeFromString maps an item name to items.Type.
func ItemTypeFromString(name string) (items.Type, bool) {
	m := map[string]items.Type{
		"water":   items.TypeWater,
		"food":    items.TypeFood,
		"lumber":  items.TypeLumber,
		"stone":   items.TypeStone,
		"ore":     items.TypeOre,
		"pickaxe": items.TypePickaxe,
		"axe":     items.TypeAxe,
		"bucket":  items.TypeBucket,
	}
	t, ok := m[name]
	return t, ok
}

// ResourceTypeFromString maps a resource name to world.ResourceType. Graves
// cannot be placed by hand.
func ResourceTypeFromString(name string) (world.ResourceType, bool) {
	m := map[string]world.ResourceType{
		"water": world.ResourceWater,
		"food":  world.ResourceFood,
		"tree":  world.ResourceTree,
		"stone": world.ResourceStone,
		"ore":   world.ResourceOre,
	}
	t, ok := m[name]
	return t, ok
}

// ProvisionBuilding adds quantity fresh items to a building's store.
func (s *Simulation) ProvisionBuilding(buildingID uint64, good string, quantity int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.World.Building(buildingID)
	if !ok {
		return "", fmt.Errorf("building %d not found", buildingID)
	}
	it, ok := ItemTypeFromString(good)
	if !ok {
		return "", fmt.Errorf("unknown item %q", good)
	}
	for i := 0; i < quantity; i++ {
		if it.IsTool() {
			b.Items.Add(s.World.Items.NewTool(it, s.Rand.Between(1, 100)))
		} else {
			b.Items.Add(s.World.Items.New(it))
		}
	}

	desc := fmt.Sprintf("A cart delivers %d %s to the %s", quantity, good, b.Type)
	s.EmitEvent(Event{
		Description: desc,
		Category:    "intervention",
		Meta:        map[string]any{"building_id": b.ID, "good": good, "quantity": quantity},
	})
	slog.Info("provision intervention", "building", b.ID, "good", good, "quantity", quantity)
	return desc, nil
}

// SpawnVillagers brings count newcomers to the door of the first building,
// or to a random walkable tile when the village has none.
func (s *Simulation) SpawnVillagers(count int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var at world.Vec
	if bs := s.World.Buildings(); len(bs) > 0 {
		at = bs[0].Door
	} else {
		c := world.Coord{X: s.Rand.Intn(s.World.Width()), Y: s.Rand.Intn(s.World.Height())}
		near, ok := s.World.NearestWalkable(c)
		if !ok {
			return "", fmt.Errorf("no walkable tile to spawn on")
		}
		at = s.World.Centre(near)
	}

	for i := 0; i < count; i++ {
		v := s.Spawner.Spawn(at, s.Now)
		s.Spawner.GiveTool(v, s.Tuning.Build.ToolChance)
		if s.AddVillager(v) {
			s.Stats.Births++
		}
	}

	desc := fmt.Sprintf("%d travellers settle in the village", count)
	s.EmitEvent(Event{
		Description: desc,
		Category:    "intervention",
		Meta:        map[string]any{"count": count, "x": at.X, "y": at.Y},
	})
	slog.Info("spawn intervention", "count", count)
	return desc, nil
}

// PlaceResource adds a resource with quantity items at grid (x, y).
func (s *Simulation) PlaceResource(kind string, x, y, quantity int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive")
	}
	rt, ok := ResourceTypeFromString(kind)
	if !ok {
		return "", fmt.Errorf("unknown resource %q", kind)
	}
	c := world.Coord{X: x, Y: y}
	if !s.World.Walkable(c) {
		return "", fmt.Errorf("tile (%d, %d) is not walkable", x, y)
	}
	r := &world.Resource{Type: rt, Pos: s.World.Centre(c), Items: items.NewInventory(), Harvestable: true}
	world.Restock(s.World, r, quantity)
	if !s.World.AddResource(r) {
		return "", fmt.Errorf("could not place %s at (%d, %d)", kind, x, y)
	}

	desc := fmt.Sprintf("A new %s appears at (%d, %d)", kind, x, y)
	s.EmitEvent(Event{
		Description: desc,
		Category:    "intervention",
		Meta:        map[string]any{"resource_id": r.ID, "type": kind, "quantity": quantity},
	})
	slog.Info("resource intervention", "type", kind, "x", x, "y", y, "quantity", quantity)
	return desc, nil
}

// PlaceBuilding founds a building of the named type with its top-left
// footprint tile at grid (x, y).
func (s *Simulation) PlaceBuilding(kind string, x, y int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bt, ok := world.ParseBuildingType(kind)
	if !ok {
		return "", fmt.Errorf("unknown building %q", kind)
	}
	if !s.World.AvailableSpace(x, y, bt) {
		return "", fmt.Errorf("no room for a %s at (%d, %d)", kind, x, y)
	}
	b := s.World.Blueprint(bt, x, y)
	if !s.World.AddBuilding(b) {
		return "", fmt.Errorf("could not place %s at (%d, %d)", kind, x, y)
	}
	s.Stats.Founded++

	desc := fmt.Sprintf("A %s is raised at (%d, %d)", bt, x, y)
	s.EmitEvent(Event{
		Description: desc,
		Category:    "intervention",
		Meta:        map[string]any{"building_id": b.ID, "type": bt.String()},
	})
	slog.Info("building intervention", "type", bt, "x", x, "y", y)
	return desc, nil
}
