package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// move steps v towards the task target at its speed, snapping onto the
// target once it is closer than one step. The task pops on arrival.
func (s *Simulation) move(v *agents.Villager, t *agents.Task) {
	step := v.Speed / float64(s.Tuning.TickRateHz)
	dx, dy := t.Target.X-v.Pos.X, t.Target.Y-v.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist <= step {
		v.Pos = t.Target
	} else {
		v.Pos.X += dx / dist * step
		v.Pos.Y += dy / dist * step
	}
	if v.Pos == t.Target {
		v.Tasks.Pop()
	}
}

// harvest runs one harvest cycle: pay the need costs, then queue taking the
// resource's first item behind a pause shortened by the best matching tool.
// The harvest task stays below and repeats until the resource is empty.
func (s *Simulation) harvest(v *agents.Villager, t *agents.Task) {
	r, ok := s.World.Resource(t.Entity.ID)
	if !ok || !r.Harvestable || r.Items.IsEmpty() {
		v.Tasks.Pop()
		return
	}

	h := s.Tuning.Harvest
	efficiency := 0
	if tool, ok := v.Items.BestTool(r.Type.Tool()); ok {
		efficiency = tool.Efficiency
	}
	pause := h.BasePauseMs - efficiency*h.EfficiencyFactor
	if pause < 0 {
		pause = 0
	}

	v.AdjustHunger(h.HungerCost)
	v.AdjustThirst(h.ThirstCost)
	v.AdjustFatigue(h.FatigueCost)

	first, _ := r.Items.First()
	v.Tasks.Push(agents.TakeItemTask(r, first.ID))
	v.Tasks.Push(agents.RestTask(v.Pos, s.Now+uint64(pause)))
}

// takeItem moves the named item from the container into v, then rests.
// Nothing moves if the item or the container is gone.
func (s *Simulation) takeItem(v *agents.Villager, t *agents.Task) {
	if src, ok := s.lookup(t.Container); ok && items.Move(src.Inventory(), v.Items, t.Item) {
		if r, isResource := src.(*world.Resource); isResource && r.Items.IsEmpty() {
			s.exhaust(r)
		}
	}
	v.Tasks.Pop()
	v.Tasks.Push(agents.RestTask(v.Pos, s.Now+s.Tuning.Transfer.TakeRestMs))
}

// storeItem moves the named item from v into the building, then rests.
func (s *Simulation) storeItem(v *agents.Villager, t *agents.Task) {
	if dst, ok := s.lookup(t.Container); ok {
		items.Move(v.Items, dst.Inventory(), t.Item)
	}
	v.Tasks.Pop()
	v.Tasks.Push(agents.RestTask(v.Pos, s.Now+s.Tuning.Transfer.StoreRestMs))
}

// exhaust marks an emptied resource unharvestable and schedules its
// respawn. Graves never come back.
func (s *Simulation) exhaust(r *world.Resource) {
	r.Harvestable = false
	if r.Type == world.ResourceGrave {
		return
	}
	r.RespawnAt = s.Now + s.Tuning.Respawn.CooldownMs
}

// rest waits out the deadline. Occasionally a resting villager wanders to a
// nearby tile, keeping the same deadline.
func (s *Simulation) rest(v *agents.Villager, t *agents.Task) {
	if s.Now >= t.Until {
		v.Tasks.Pop()
		return
	}
	rt := s.Tuning.Rest
	if rt.WanderOneIn <= 0 || !s.Rand.OneIn(rt.WanderOneIn) {
		return
	}
	here := s.World.ToGrid(v.Pos)
	c := world.Coord{
		X: here.X + s.Rand.Between(-rt.WanderRadius, rt.WanderRadius),
		Y: here.Y + s.Rand.Between(-rt.WanderRadius, rt.WanderRadius),
	}
	if !s.World.Walkable(c) {
		return
	}
	v.Tasks.Replace(agents.RestTask(s.World.Centre(c), t.Until))
}

// build gathers lumber and stone, walks to the doorway and raises the
// building, spawning newcomers at its door.
func (s *Simulation) build(v *agents.Villager, t *agents.Task) {
	bc := s.Tuning.Build
	if ok, missing := s.gatherMaterials(v); missing {
		if !ok {
			slog.Debug("no materials to be had, abandoning build", "villager", v.ID)
			v.Tasks.Pop()
			s.shortRest(v)
		}
		return
	}
	if !s.arrived(v, t.Target) {
		if !s.approach(v, t.Target) {
			slog.Debug("no path to building site", "villager", v.ID, "site", t.Target)
			v.Tasks.Pop()
		}
		return
	}

	b := t.Blueprint
	v.Tasks.Pop()
	if b == nil || !s.World.AddBuilding(b) {
		slog.Debug("building site no longer available", "villager", v.ID)
		return
	}
	v.Items.RemoveType(items.TypeLumber, bc.LumberCost)
	left := bc.StoneCost - v.Items.RemoveType(items.TypeStone, bc.StoneCost)
	v.Items.RemoveType(items.TypeOre, left)
	s.Stats.Founded++

	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s built a %s", v.Name, b.Type),
		Category:    "building",
		Meta:        map[string]any{"building_id": b.ID, "type": b.Type.String(), "x": b.X, "y": b.Y, "builder": v.ID},
	})
	slog.Debug("building founded", "builder", v.Name, "type", b.Type.String(), "x", b.X, "y", b.Y)

	count := s.Rand.Pick(bc.SpawnWeights) + 1
	for i := 0; i < count; i++ {
		nv := s.Spawner.Spawn(b.Door, s.Now)
		s.Spawner.GiveTool(nv, bc.ToolChance)
		if !s.AddVillager(nv) {
			continue
		}
		s.Stats.Births++
		s.EmitEvent(Event{
			Description: fmt.Sprintf("%s arrived at the new %s", nv.Name, b.Type),
			Category:    "birth",
			Meta:        map[string]any{"villager_id": nv.ID, "building_id": b.ID},
		})
	}
}

// gatherMaterials queues fetching whichever building material v is short
// of. missing reports whether anything was short; ok reports whether a source
// for it was found.
func (s *Simulation) gatherMaterials(v *agents.Villager) (ok, missing bool) {
	bc := s.Tuning.Build
	switch {
	case v.Items.CountType(items.TypeLumber) < bc.LumberCost:
		return s.gather(v, []items.Type{items.TypeLumber}, world.ResourceTree), true
	case masonry(v.Items) < bc.StoneCost:
		return s.gather(v, []items.Type{items.TypeStone, items.TypeOre}, world.ResourceStone, world.ResourceOre), true
	}
	return false, false
}

// masonry counts the items that satisfy the stone requirement. Ore is
// accepted when stone runs short.
func masonry(inv *items.Inventory) int {
	return inv.CountType(items.TypeStone) + inv.CountType(items.TypeOre)
}

// gather queues fetching a material from a building, else harvesting the
// nearest source of it. It reports false when neither exists.
func (s *Simulation) gather(v *agents.Villager, want []items.Type, sources ...world.ResourceType) bool {
	for _, it := range want {
		if s.fetch(v, it) {
			return true
		}
	}
	for _, rt := range sources {
		if r := s.nearestResource(v.Pos, 0, func(r *world.Resource) bool { return r.Type == rt }); r != nil {
			v.Tasks.Push(agents.HarvestTask(r))
			return true
		}
	}
	return false
}
