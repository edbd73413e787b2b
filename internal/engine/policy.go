package engine

import (
	"log/slog"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/config"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// decide picks new work for an idle villager. Rules are checked in order and
// the first that fires wins: exhaustion, hunger, thirst, then a roll over
// the idle bands.
func (s *Simulation) decide(v *agents.Villager) {
	needs := s.Tuning.Needs
	p := s.Tuning.Policy

	if v.Fatigue >= needs.Urgent {
		v.Tasks.Push(agents.RestTask(v.Pos, s.Now+p.LongRestMs))
		v.AdjustFatigue(-p.LongRestRelief)
		return
	}
	if v.Hunger >= needs.Urgent && s.Rand.Percent(p.NeedCheckChance) {
		s.satisfy(v, items.TypeFood, world.ResourceFood)
		return
	}
	if v.Thirst >= needs.Urgent && s.Rand.Percent(p.NeedCheckChance) {
		s.satisfy(v, items.TypeWater, world.ResourceWater)
		return
	}

	switch config.BandFor(p.IdleBands, s.Rand.Roll()) {
	case config.ActivityRest:
		s.shortRest(v)
	case config.ActivityHarvest:
		s.seekHarvest(v)
	case config.ActivityStore:
		s.storeGoods(v)
	case config.ActivityFound:
		s.found(v)
	}
}

// shortRest is the fallback when nothing better can be done.
func (s *Simulation) shortRest(v *agents.Villager) {
	p := s.Tuning.Policy
	v.Tasks.Push(agents.RestTask(v.Pos, s.Now+p.ShortRestMs))
	v.AdjustFatigue(-p.ShortRestRelief)
}

// satisfy relieves hunger or thirst: consume from the villager's own
// inventory, else fetch from a building, else harvest, else rest.
func (s *Simulation) satisfy(v *agents.Villager, want items.Type, source world.ResourceType) {
	if it, ok := v.Items.Find(want); ok {
		v.Items.Remove(it.ID)
		switch want {
		case items.TypeFood:
			v.AdjustHunger(-s.Tuning.Needs.EatRelief)
		case items.TypeWater:
			v.AdjustThirst(-s.Tuning.Needs.DrinkRelief)
		}
		return
	}
	if s.fetch(v, want) {
		return
	}
	if r := s.nearestResource(v.Pos, 0, func(r *world.Resource) bool { return r.Type == source }); r != nil {
		v.Tasks.Push(agents.HarvestTask(r))
		return
	}
	s.shortRest(v)
}

// fetch pushes a TakeItem for the first item of type want held by the
// nearest building that has one.
func (s *Simulation) fetch(v *agents.Villager, want items.Type) bool {
	b := s.nearestBuilding(v.Pos, func(b *world.Building) bool { return b.Items.CountType(want) > 0 })
	if b == nil {
		return false
	}
	it, _ := b.Items.Find(want)
	v.Tasks.Push(agents.TakeItemTask(b, it.ID))
	return true
}

// seekHarvest picks a harvestable resource, water or otherwise, with a
// little distance jitter so villagers do not all converge on the same one.
func (s *Simulation) seekHarvest(v *agents.Villager) {
	p := s.Tuning.Policy
	wantWater := s.Rand.Percent(p.WaterHarvestChance)
	r := s.nearestResource(v.Pos, p.DistanceJitter, func(r *world.Resource) bool {
		return (r.Type == world.ResourceWater) == wantWater
	})
	if r == nil {
		return
	}
	v.Tasks.Push(agents.HarvestTask(r))
}

// storeGoods drops a random share of a heavy villager's goods at the nearest
// building.
func (s *Simulation) storeGoods(v *agents.Villager) {
	if v.Items.Count() <= s.Tuning.Policy.StoreThreshold {
		return
	}
	b := s.nearestBuilding(v.Pos, nil)
	if b == nil {
		return
	}
	goods := v.Items.Goods()
	n := s.Rand.Between(1, v.Items.Count())
	if n > len(goods) {
		n = len(goods)
	}
	for i := n - 1; i >= 0; i-- {
		v.Tasks.Push(agents.StoreItemTask(b, goods[i].ID))
	}
}

// found tries to site a new building of a random type.
func (s *Simulation) found(v *agents.Villager) {
	p := s.Tuning.Policy
	weights := make([]int, len(p.BuildingWeights))
	for i, w := range p.BuildingWeights {
		weights[i] = w.Weight
	}
	name := p.BuildingWeights[s.Rand.Pick(weights)].Name
	bt, ok := world.ParseBuildingType(name)
	if !ok {
		slog.Warn("unknown building type in weights", "name", name)
		s.shortRest(v)
		return
	}

	for i := 0; i < p.PlacementAttempts; i++ {
		x := s.Rand.Intn(s.World.Width())
		y := s.Rand.Intn(s.World.Height())
		if s.World.AvailableSpace(x, y, bt) {
			v.Tasks.Push(agents.BuildTask(s.World.Blueprint(bt, x, y)))
			return
		}
	}
	s.shortRest(v)
}

// nearestResource returns the closest harvestable resource matching keep,
// by Manhattan distance plus an optional random jitter of 1..jitter pixels.
// The first one seen wins ties.
func (s *Simulation) nearestResource(from world.Vec, jitter int, keep func(*world.Resource) bool) *world.Resource {
	var best *world.Resource
	bestDist := 0.0
	for _, r := range s.World.Resources() {
		if !r.Harvestable || r.Items.IsEmpty() || (keep != nil && !keep(r)) {
			continue
		}
		d := world.Manhattan(from, r.Pos)
		if jitter > 0 {
			d += float64(s.Rand.Between(1, jitter))
		}
		if best == nil || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}

// nearestBuilding returns the building whose door is closest to from.
func (s *Simulation) nearestBuilding(from world.Vec, keep func(*world.Building) bool) *world.Building {
	var best *world.Building
	bestDist := 0.0
	for _, b := range s.World.Buildings() {
		if keep != nil && !keep(b) {
			continue
		}
		d := world.Manhattan(from, b.Door)
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}
