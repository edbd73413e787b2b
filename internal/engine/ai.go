package engine

import (
	"log/slog"
	"math"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/world"
)

// act runs one villager for one tick: bring it within reach of the current
// task's target if the task needs that, then run the handler for whatever
// task is on top.
func (s *Simulation) act(v *agents.Villager) {
	t := v.Current()
	if t == nil {
		return
	}
	if t.Gated() && !s.arrived(v, t.Target) {
		if !s.approach(v, t.Target) {
			slog.Debug("no path, dropping task", "villager", v.ID, "task", t.Kind, "target", t.Target)
			v.Tasks.Pop()
			return
		}
		t = v.Current()
	}

	switch t.Kind {
	case agents.TaskIdle:
		s.decide(v)
	case agents.TaskMove:
		s.move(v, t)
	case agents.TaskHarvest:
		s.harvest(v, t)
	case agents.TaskTakeItem:
		s.takeItem(v, t)
	case agents.TaskStoreItem:
		s.storeItem(v, t)
	case agents.TaskBuild:
		s.build(v, t)
	case agents.TaskRest:
		s.rest(v, t)
	}
}

// arrived reports whether v is within the arrival tolerance of target.
func (s *Simulation) arrived(v *agents.Villager, target world.Vec) bool {
	return world.Within(v.Pos, target, s.Tuning.ArrivalTolerance)
}

// approach pushes Move tasks that take v to target. Targets within one tile
// on both axes get a single direct move; anything further is routed by the
// pathfinder. It reports false when no route exists.
func (s *Simulation) approach(v *agents.Villager, target world.Vec) bool {
	ts := float64(s.World.TileSize())
	if math.Abs(target.X-v.Pos.X) <= ts && math.Abs(target.Y-v.Pos.Y) <= ts {
		v.Tasks.Push(agents.MoveTask(target))
		return true
	}

	path := s.Finder.Find(s.World.ToGrid(v.Pos), s.World.ToGrid(target))
	if len(path) == 0 {
		return false
	}
	// path runs goal first. The goal tile's waypoint is the exact target;
	// the rest are tile centres, so the first step ends up on top.
	v.Tasks.Push(agents.MoveTask(target))
	for _, c := range path[1:] {
		v.Tasks.Push(agents.MoveTask(s.World.Centre(c)))
	}
	return true
}

// lookup resolves an entity reference. Removed entities do not resolve.
func (s *Simulation) lookup(ref world.EntityRef) (world.Entity, bool) {
	switch ref.Kind {
	case world.KindVillager:
		if v, ok := s.villagerIndex[ref.ID]; ok {
			return v, true
		}
	case world.KindBuilding:
		if b, ok := s.World.Building(ref.ID); ok {
			return b, true
		}
	case world.KindResource:
		if r, ok := s.World.Resource(ref.ID); ok {
			return r, true
		}
	}
	return nil, false
}
