package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/config"
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// testTuning disables wandering and makes the need gate always pass.
func testTuning() config.Tuning {
	t := config.Default()
	t.Rest.WanderOneIn = 0
	t.Policy.NeedCheckChance = 100
	return t
}

func newTestSim(t *testing.T, w, h int, rng *entropy.Rand) *Simulation {
	t.Helper()
	if rng == nil {
		rng = entropy.New(1)
	}
	return NewSimulation(world.NewWorld(w, h, 16), testTuning(), rng)
}

func spawnAt(t *testing.T, s *Simulation, c world.Coord) *agents.Villager {
	t.Helper()
	v := s.Spawner.Spawn(s.World.Centre(c), s.Now)
	require.True(t, s.AddVillager(v))
	return v
}

func addResource(t *testing.T, s *Simulation, rt world.ResourceType, c world.Coord, n int) *world.Resource {
	t.Helper()
	r := &world.Resource{Type: rt, Pos: s.World.Centre(c), Items: items.NewInventory(), Harvestable: true}
	world.Restock(s.World, r, n)
	require.True(t, s.World.AddResource(r))
	return r
}

func TestHungryVillagerFetchesFoodFromBuilding(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	b := s.World.Blueprint(world.BuildingHouse, 10, 10)
	require.True(t, s.World.AddBuilding(b))
	food := s.World.Items.New(items.TypeFood)
	b.Items.Add(food)

	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Hunger = 80

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskTakeItem, top.Kind)
	assert.Equal(t, b.Ref(), top.Container)
	assert.Equal(t, food.ID, top.Item)
	assert.Equal(t, b.Door, top.Target)
}

func TestHungryVillagerEatsOwnFood(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Hunger = 80
	v.Items.Add(s.World.Items.New(items.TypeFood))

	s.Think()

	assert.Equal(t, 76, v.Hunger)
	assert.Zero(t, v.Items.CountType(items.TypeFood))
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestThirstyVillagerHarvestsWater(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	well := addResource(t, s, world.ResourceWater, world.Coord{X: 7, Y: 7}, 3)
	addResource(t, s, world.ResourceFood, world.Coord{X: 3, Y: 2}, 3)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Thirst = 65

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskHarvest, top.Kind)
	assert.Equal(t, well.Ref(), top.Entity)
}

func TestNeedGateFallsThrough(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 10, 10, entropy.FromSource(script))
	s.Tuning.Policy.NeedCheckChance = 0
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	script.Push(50, 0)
	v.Hunger = 80
	v.Items.Add(s.World.Items.New(items.TypeFood))

	s.Think()

	// The gate failed, so the idle roll of 1 lands in the rest band.
	top := v.Current()
	require.Equal(t, agents.TaskRest, top.Kind)
	assert.Equal(t, s.Now+2500, top.Until)
	assert.Equal(t, 80, v.Hunger)
}

func TestExhaustedVillagerRests(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Fatigue = 70
	v.Hunger = 90

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskRest, top.Kind)
	assert.Equal(t, s.Now+10000, top.Until)
	assert.Equal(t, 54, v.Fatigue)
}

func TestRestEndsAtDeadline(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	start := s.Now
	v.Tasks.Push(agents.RestTask(v.Pos, start+1000))

	s.Now = start + 999 - s.nextStep()
	s.Think()
	require.Equal(t, start+999, s.Now)
	assert.Equal(t, agents.TaskRest, v.Current().Kind)

	s.Now = start + 1000 - s.nextStep()
	s.Think()
	require.Equal(t, start+1000, s.Now)
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestDeathLeavesGraveWithInventory(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	food := s.World.Items.New(items.TypeFood)
	axe := s.World.Items.NewTool(items.TypeAxe, 40)
	v.Items.Add(food)
	v.Items.Add(axe)
	v.Health = 0

	s.Think()

	_, alive := s.Villager(v.ID)
	assert.False(t, alive)
	assert.Empty(t, s.Villagers())

	resources := s.World.Resources()
	require.Len(t, resources, 1)
	grave := resources[0]
	assert.Equal(t, world.ResourceGrave, grave.Type)
	assert.Equal(t, v.Pos, grave.Pos)
	assert.True(t, grave.Harvestable)
	assert.ElementsMatch(t, []items.Item{food, axe}, grave.Items.Items())
	assert.Equal(t, 1, s.Stats.Deaths)

	events := s.RecentEvents(10)
	require.NotEmpty(t, events)
	assert.Equal(t, "death", events[len(events)-1].Category)
}

func TestCrisisCostsHealth(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	calm := spawnAt(t, s, world.Coord{X: 5, Y: 5})
	v.Thirst = 100
	v.Fatigue = 0
	v.Tasks.Push(agents.RestTask(v.Pos, 1<<40))
	calm.Tasks.Push(agents.RestTask(calm.Pos, 1<<40))

	s.Now = 1000 - s.nextStep()
	s.Think()

	assert.Equal(t, 99, v.Health)
	assert.Equal(t, 100, calm.Health)
}

func TestHarvestToEmptySchedulesRespawn(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	r := addResource(t, s, world.ResourceFood, world.Coord{X: 4, Y: 4}, 1)
	only, _ := r.Items.First()
	v.Tasks.Push(agents.HarvestTask(r))

	s.Think()
	require.Equal(t, agents.TaskRest, v.Current().Kind, "harvest pause runs first")
	assert.Equal(t, s.Now+1500, v.Current().Until)
	assert.Equal(t, 1, v.Hunger)
	assert.Equal(t, 2, v.Thirst)
	assert.Equal(t, 3, v.Fatigue)

	for i := 0; i < 500 && r.Harvestable; i++ {
		s.Think()
	}
	require.False(t, r.Harvestable)
	assert.True(t, r.Items.IsEmpty())
	assert.True(t, v.Items.Has(only.ID))
	assert.Equal(t, s.Now+s.Tuning.Respawn.CooldownMs, r.RespawnAt)

	s.Now = r.RespawnAt - s.nextStep()
	s.Think()
	assert.True(t, r.Harvestable)
	assert.GreaterOrEqual(t, r.Items.Count(), 1)
	assert.LessOrEqual(t, r.Items.Count(), 5)
}

func TestToolShortensHarvestPause(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	v.Items.Add(s.World.Items.NewTool(items.TypeAxe, 30))
	v.Items.Add(s.World.Items.NewTool(items.TypeAxe, 90))
	r := addResource(t, s, world.ResourceTree, world.Coord{X: 4, Y: 4}, 2)
	v.Tasks.Push(agents.HarvestTask(r))

	s.Think()

	require.Equal(t, agents.TaskRest, v.Current().Kind)
	assert.Equal(t, s.Now+600, v.Current().Until)
}

func TestGraveNeverRespawns(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	grave := &world.Resource{Type: world.ResourceGrave, Pos: v.Pos, Items: items.NewInventory(), Harvestable: true}
	bucket := s.World.Items.NewTool(items.TypeBucket, 12)
	grave.Items.Add(bucket)
	require.True(t, s.World.AddResource(grave))
	v.Tasks.Push(agents.TakeItemTask(grave, bucket.ID))

	s.Think()

	assert.True(t, v.Items.Has(bucket.ID))
	assert.False(t, grave.Harvestable)
	assert.Zero(t, grave.RespawnAt)

	s.Now += 10 * s.Tuning.Respawn.CooldownMs
	s.Think()
	assert.False(t, grave.Harvestable)
	assert.True(t, grave.Items.IsEmpty())
}

func TestTakeItemAlreadyGoneIsNoop(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	r := addResource(t, s, world.ResourceStone, world.Coord{X: 4, Y: 4}, 2)
	first, _ := r.Items.First()
	v.Tasks.Push(agents.TakeItemTask(r, first.ID))
	r.Items.Remove(first.ID)

	s.Think()

	assert.Zero(t, v.Items.Count())
	assert.Equal(t, 1, r.Items.Count())
	require.Equal(t, agents.TaskRest, v.Current().Kind)
	assert.Equal(t, s.Now+500, v.Current().Until)
}

func TestGatePushesPathInOrder(t *testing.T) {
	s := newTestSim(t, 6, 1, nil)
	v := spawnAt(t, s, world.Coord{X: 0, Y: 0})
	r := addResource(t, s, world.ResourceFood, world.Coord{X: 4, Y: 0}, 1)
	v.Tasks.Push(agents.HarvestTask(r))

	s.Think()

	tasks := v.Tasks.Tasks()
	require.Len(t, tasks, 6)
	assert.Equal(t, agents.TaskHarvest, tasks[1].Kind)
	assert.Equal(t, r.Pos, tasks[2].Target)
	assert.Equal(t, s.World.Centre(world.Coord{X: 3}), tasks[3].Target)
	assert.Equal(t, s.World.Centre(world.Coord{X: 2}), tasks[4].Target)
	assert.Equal(t, s.World.Centre(world.Coord{X: 1}), tasks[5].Target)

	// The first move ran this tick.
	assert.InDelta(t, 8+100.0/60, v.Pos.X, 1e-9)
}

func TestShortHopIsDirectMove(t *testing.T) {
	s := newTestSim(t, 6, 6, nil)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	r := addResource(t, s, world.ResourceFood, world.Coord{X: 3, Y: 3}, 1)
	v.Tasks.Push(agents.HarvestTask(r))

	s.Think()

	assert.Equal(t, 3, v.Tasks.Len())
	assert.Equal(t, agents.TaskMove, v.Current().Kind)
	assert.Equal(t, r.Pos, v.Current().Target)
}

func TestMoveSnapsAndPops(t *testing.T) {
	s := newTestSim(t, 6, 6, nil)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	target := world.Vec{X: v.Pos.X + 1, Y: v.Pos.Y}
	v.Tasks.Push(agents.MoveTask(target))

	s.Think()

	assert.Equal(t, target, v.Pos)
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestPathFailurePopsTask(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	for y := 0; y < 10; y++ {
		s.World.SetTile(world.Coord{X: 5, Y: y}, world.TileWater)
	}
	v := spawnAt(t, s, world.Coord{X: 1, Y: 1})
	r := addResource(t, s, world.ResourceStone, world.Coord{X: 8, Y: 8}, 3)
	v.Tasks.Push(agents.HarvestTask(r))

	s.Think()

	assert.Equal(t, 1, v.Tasks.Len())
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
	assert.Equal(t, s.World.Centre(world.Coord{X: 1, Y: 1}), v.Pos)
}

func TestHarvestGoneTargetPops(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	v := spawnAt(t, s, world.Coord{X: 3, Y: 3})
	r := addResource(t, s, world.ResourceTree, world.Coord{X: 3, Y: 3}, 2)
	v.Tasks.Push(agents.HarvestTask(r))
	require.True(t, s.World.RemoveResource(r.ID))

	s.Think()

	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestBuildSpawnsVillagers(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 20, 20, entropy.FromSource(script))
	bp := s.World.Blueprint(world.BuildingHouseSmall, 5, 5)
	v := spawnAt(t, s, bp.DoorTile())
	// 99 picks the second spawn weight: two newcomers.
	script.Push(99)
	for i := 0; i < 20; i++ {
		v.Items.Add(s.World.Items.New(items.TypeLumber))
		v.Items.Add(s.World.Items.New(items.TypeStone))
	}
	v.Items.Add(s.World.Items.New(items.TypeStone))
	v.Tasks.Push(agents.BuildTask(bp))

	s.Think()

	require.Len(t, s.World.Buildings(), 1)
	assert.NotZero(t, bp.ID)
	assert.Zero(t, v.Items.CountType(items.TypeLumber))
	assert.Equal(t, 1, v.Items.CountType(items.TypeStone))
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)

	all := s.Villagers()
	require.Len(t, all, 3)
	for _, nv := range all[1:] {
		assert.Equal(t, bp.Door, nv.Pos)
		assert.Equal(t, 100, nv.Health)
		assert.LessOrEqual(t, nv.Items.Count(), 1)
	}
	assert.Equal(t, 2, s.Stats.Births)

	door, _ := s.World.Tile(bp.DoorTile())
	assert.True(t, door.Road)
}

func TestBuildUsesOreWhenStoneRunsShort(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	bp := s.World.Blueprint(world.BuildingStall, 8, 8)
	v := spawnAt(t, s, bp.DoorTile())
	for i := 0; i < 20; i++ {
		v.Items.Add(s.World.Items.New(items.TypeLumber))
	}
	for i := 0; i < 15; i++ {
		v.Items.Add(s.World.Items.New(items.TypeStone))
	}
	for i := 0; i < 8; i++ {
		v.Items.Add(s.World.Items.New(items.TypeOre))
	}
	v.Tasks.Push(agents.BuildTask(bp))

	s.Think()

	require.Len(t, s.World.Buildings(), 1)
	assert.Zero(t, v.Items.CountType(items.TypeStone))
	assert.Equal(t, 3, v.Items.CountType(items.TypeOre))
}

func TestBuildGathersMissingLumber(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	tree := addResource(t, s, world.ResourceTree, world.Coord{X: 15, Y: 15}, 4)
	bp := s.World.Blueprint(world.BuildingHouse, 5, 5)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Tasks.Push(agents.BuildTask(bp))

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskHarvest, top.Kind)
	assert.Equal(t, tree.Ref(), top.Entity)
	assert.Equal(t, 3, v.Tasks.Len())
}

func TestBuildWithoutMaterialSourceGivesUp(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	bp := s.World.Blueprint(world.BuildingHouse, 5, 5)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	v.Tasks.Push(agents.BuildTask(bp))

	s.Think()

	require.Equal(t, agents.TaskRest, v.Current().Kind)
	require.Equal(t, 2, v.Tasks.Len(), "build dropped, rest on the floor task")

	for i := 0; i < 300 && v.Current().Kind == agents.TaskRest; i++ {
		s.Think()
	}
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestBuildOnTakenSitePops(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	bp := s.World.Blueprint(world.BuildingHouse, 5, 5)
	v := spawnAt(t, s, bp.DoorTile())
	for i := 0; i < 20; i++ {
		v.Items.Add(s.World.Items.New(items.TypeLumber))
		v.Items.Add(s.World.Items.New(items.TypeStone))
	}
	v.Tasks.Push(agents.BuildTask(bp))
	require.True(t, s.World.AddBuilding(s.World.Blueprint(world.BuildingStall, 5, 4)))

	s.Think()

	assert.Len(t, s.World.Buildings(), 1)
	assert.Equal(t, 20, v.Items.CountType(items.TypeLumber))
	assert.Equal(t, agents.TaskIdle, v.Current().Kind)
}

func TestIdleStoreBand(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 20, 20, entropy.FromSource(script))
	b := s.World.Blueprint(world.BuildingFarmhouse, 10, 10)
	require.True(t, s.World.AddBuilding(b))
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	// Roll 86 lands in the store band; 29 asks for all 30 items.
	script.Push(85, 29)
	for i := 0; i < 30; i++ {
		v.Items.Add(s.World.Items.New(items.TypeFood))
	}

	s.Think()

	require.Equal(t, 31, v.Tasks.Len())
	top := v.Current()
	assert.Equal(t, agents.TaskStoreItem, top.Kind)
	assert.Equal(t, b.Ref(), top.Container)
	assert.Equal(t, b.Door, top.Target)
}

func TestIdleFoundBand(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 20, 20, entropy.FromSource(script))
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	// Roll 98 founds; 0 picks the first weight; the site is (5, 5).
	script.Push(97, 0, 5, 5)

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskBuild, top.Kind)
	require.NotNil(t, top.Blueprint)
	assert.Equal(t, world.BuildingHouseSmall, top.Blueprint.Type)
	assert.Equal(t, 5, top.Blueprint.X)
	assert.Equal(t, 5, top.Blueprint.Y)
	assert.Equal(t, top.Blueprint.Door, top.Target)
}

func TestIdleFoundBandFallsBackToRest(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 12, 12, entropy.FromSource(script))
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			s.World.SetTile(world.Coord{X: x, Y: y}, world.TileWater)
		}
	}
	// Roll 98 founds; every site is flooded.
	script.Push(97)

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskRest, top.Kind)
	assert.Equal(t, s.Now+2500, top.Until)
	assert.Equal(t, 2, v.Tasks.Len())
}

func TestIdleHarvestBandSkipsWaterWhenSubRollFails(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 12, 12, entropy.FromSource(script))
	addResource(t, s, world.ResourceWater, world.Coord{X: 3, Y: 2}, 3)
	tree := addResource(t, s, world.ResourceTree, world.Coord{X: 5, Y: 2}, 3)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	// Roll 50 harvests; 100 misses the water sub-roll; the tree's jitter is 1.
	script.Push(49, 99, 0)

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskHarvest, top.Kind)
	assert.Equal(t, tree.Ref(), top.Entity)
}

func TestIdleHarvestBandTakesWaterOnSubRoll(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 12, 12, entropy.FromSource(script))
	addResource(t, s, world.ResourceTree, world.Coord{X: 3, Y: 2}, 3)
	well := addResource(t, s, world.ResourceWater, world.Coord{X: 8, Y: 8}, 3)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	// Roll 50 harvests; 11 passes the water sub-roll.
	script.Push(49, 10, 0)

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskHarvest, top.Kind)
	assert.Equal(t, well.Ref(), top.Entity)
}

func TestIdleHarvestJitterReordersTies(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 12, 12, entropy.FromSource(script))
	addResource(t, s, world.ResourceTree, world.Coord{X: 5, Y: 2}, 3)
	stone := addResource(t, s, world.ResourceStone, world.Coord{X: 2, Y: 5}, 3)
	v := spawnAt(t, s, world.Coord{X: 2, Y: 2})
	// Both are 48 px away. The tree draws jitter 10, the stone 1.
	script.Push(49, 99, 9, 0)

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskHarvest, top.Kind)
	assert.Equal(t, stone.Ref(), top.Entity)
}

func TestRestWanderKeepsDeadline(t *testing.T) {
	script := entropy.NewScript(1)
	s := newTestSim(t, 10, 10, entropy.FromSource(script))
	s.Tuning.Rest.WanderOneIn = 500
	v := spawnAt(t, s, world.Coord{X: 4, Y: 4})
	// Wander now, one tile right.
	script.Push(0, 3, 2)
	v.Tasks.Push(agents.RestTask(v.Pos, 5000))

	s.Think()

	top := v.Current()
	require.Equal(t, agents.TaskRest, top.Kind)
	assert.Equal(t, uint64(5000), top.Until)
	assert.Equal(t, s.World.Centre(world.Coord{X: 5, Y: 4}), top.Target)
	assert.Equal(t, 2, v.Tasks.Len())
}

func TestEventsReachSubscribers(t *testing.T) {
	s := newTestSim(t, 10, 10, nil)
	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	s.Update(func() {
		s.EmitEvent(Event{Description: "hello", Category: "intervention"})
	})

	e := <-ch
	assert.Equal(t, "hello", e.Description)
	assert.Len(t, s.DrainEvents(), 1)
	assert.Empty(t, s.DrainEvents())
	assert.Len(t, s.RecentEvents(5), 1)
}

func TestUndrainedEventsAreCapped(t *testing.T) {
	s := newTestSim(t, 8, 8, nil)
	s.Update(func() {
		for i := 0; i < maxPending+10; i++ {
			s.EmitEvent(Event{Description: "tick", Category: "test", Tick: uint64(i + 1)})
		}
	})

	drained := s.DrainEvents()
	require.Len(t, drained, maxPending)
	assert.Equal(t, uint64(11), drained[0].Tick)
	assert.Empty(t, s.DrainEvents())
}

func TestInterventions(t *testing.T) {
	s := newTestSim(t, 20, 20, nil)
	b := s.World.Blueprint(world.BuildingTownHall, 9, 9)
	require.True(t, s.World.AddBuilding(b))

	_, err := s.ProvisionBuilding(b.ID, "food", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Items.CountType(items.TypeFood))

	_, err = s.ProvisionBuilding(999, "food", 1)
	assert.Error(t, err)
	_, err = s.ProvisionBuilding(b.ID, "gold", 1)
	assert.Error(t, err)

	_, err = s.SpawnVillagers(2)
	require.NoError(t, err)
	assert.Len(t, s.Villagers(), 2)
	assert.Equal(t, b.Door, s.Villagers()[0].Pos)

	_, err = s.PlaceResource("tree", 2, 2, 4)
	require.NoError(t, err)
	_, err = s.PlaceResource("grave", 3, 3, 1)
	assert.Error(t, err)
	_, err = s.PlaceResource("tree", 9, 8, 1)
	assert.Error(t, err, "inside the town hall")
}
