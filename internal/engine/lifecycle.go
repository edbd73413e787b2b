package engine

import (
	"fmt"
	"log/slog"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// lifecycle runs the timers: health penalty for villagers in crisis, slow
// health regeneration, need growth, death and resource respawn.
func (s *Simulation) lifecycle() {
	n := s.Tuning.Needs

	if s.Now-s.lastPenalty >= n.PenaltyIntervalMs {
		s.lastPenalty = s.Now
		for _, v := range s.villagers {
			if v.InCrisis(n.Critical) {
				v.AdjustHealth(-1, s.Tuning.Villager.MaxHealth)
			}
		}
	}
	if s.Now-s.lastRegen >= n.RegenIntervalMs {
		s.lastRegen = s.Now
		for _, v := range s.villagers {
			v.AdjustHealth(1, s.Tuning.Villager.MaxHealth)
		}
	}
	if s.Now-s.lastGrowth >= n.GrowthIntervalMs {
		s.lastGrowth = s.Now
		for _, v := range s.villagers {
			v.GrowNeeds()
		}
	}

	for _, v := range s.Villagers() {
		if v.IsDead() {
			s.bury(v)
		}
	}
	s.respawn()
}

// bury removes a dead villager and leaves a grave holding everything it
// carried.
func (s *Simulation) bury(v *agents.Villager) {
	s.removeVillager(v.ID)

	pos := v.Pos
	if c := s.World.ToGrid(pos); !s.World.Walkable(c) {
		if near, ok := s.World.NearestWalkable(c); ok {
			pos = s.World.Centre(near)
		}
	}
	grave := &world.Resource{Type: world.ResourceGrave, Pos: pos, Items: items.NewInventory()}
	items.MoveAll(v.Items, grave.Items)
	grave.Harvestable = !grave.Items.IsEmpty()
	if !s.World.AddResource(grave) {
		slog.Warn("no room for grave", "villager", v.ID, "pos", pos)
	}

	s.Stats.Deaths++
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s has died", v.Name),
		Category:    "death",
		Meta: map[string]any{
			"villager_id": v.ID,
			"hunger":      v.Hunger,
			"thirst":      v.Thirst,
			"fatigue":     v.Fatigue,
			"grave_id":    grave.ID,
			"items":       grave.Items.Count(),
		},
	})
	slog.Debug("villager died", "name", v.Name, "hunger", v.Hunger, "thirst", v.Thirst, "fatigue", v.Fatigue)
}

// respawn restocks exhausted resources whose cooldown has passed.
func (s *Simulation) respawn() {
	rs := s.Tuning.Respawn
	for _, r := range s.World.Resources() {
		if r.Harvestable || r.Type == world.ResourceGrave || r.RespawnAt == 0 || r.RespawnAt > s.Now {
			continue
		}
		world.Restock(s.World, r, s.Rand.Between(rs.MinItems, rs.MaxItems))
		r.Harvestable = true
		r.RespawnAt = 0
	}
}
