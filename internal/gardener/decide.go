package gardener

import (
	"fmt"
	"log/slog"
	"strings"
)

// Decision is the steward's chosen action for one cycle.
type Decision struct {
	Action       string        `json:"action"`
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for POST /api/v1/intervention.
type Intervention struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Count       int    `json:"count,omitempty"`
	BuildingID  uint64 `json:"building_id,omitempty"`
	Good        string `json:"good,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Kind        string `json:"kind,omitempty"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

// Guardrails.
const (
	maxSpawn     = 10
	maxProvision = 40
	sourceStock  = 5
	resettlers   = 3
)

// Decide picks at most one gentle intervention. Actions taken in the last
// few cycles are not repeated so the village has time to respond.
func Decide(snap *Snapshot, h *Health, mem *CycleMemory) *Decision {
	none := func(why string) *Decision {
		return &Decision{Action: "none", Rationale: why}
	}
	recent := func(action string) bool {
		return mem != nil && mem.RecentlyDid(action, cooldownCycles)
	}

	s := snap.Status
	switch {
	case s.Population == 0:
		if recent("spawn") {
			return none("village is empty but settlers were sent recently")
		}
		return &Decision{
			Action:       "spawn",
			Rationale:    "no villagers remain",
			Intervention: &Intervention{Type: "spawn", Count: resettlers},
		}

	case h.Hungry && h.FoodStored < s.Population && len(snap.Buildings) > 0 && !recent("provision"):
		return provision(snap, "food", fmt.Sprintf("average hunger %.0f with %d food stored", s.AvgHunger, h.FoodStored))

	case h.Thirsty && h.WaterStored < s.Population && len(snap.Buildings) > 0 && !recent("provision"):
		return provision(snap, "water", fmt.Sprintf("average thirst %.0f with %d water stored", s.AvgThirst, h.WaterStored))

	case h.FoodSources == 0 && !recent("resource"):
		return placeSource(snap, "food", "no harvestable food left")

	case h.WaterSources == 0 && !recent("resource"):
		return placeSource(snap, "water", "no harvestable water left")

	case h.CrisisLevel == LevelWarning && h.DeathBirthRatio > 2 && !recent("spawn"):
		count := s.Deaths - s.Births
		if count > maxSpawn {
			slog.Warn("gardener spawn capped", "requested", count, "capped", maxSpawn)
			count = maxSpawn
		}
		if count < 1 {
			count = 1
		}
		return &Decision{
			Action:       "spawn",
			Rationale:    fmt.Sprintf("deaths outpace births (D:B %.2f)", h.DeathBirthRatio),
			Intervention: &Intervention{Type: "spawn", Count: count},
		}
	}

	return none(fmt.Sprintf("village is %s", strings.ToLower(h.CrisisLevel)))
}

func provision(snap *Snapshot, good, why string) *Decision {
	qty := 2 * snap.Status.Population
	if qty > maxProvision {
		qty = maxProvision
	}
	if qty < 1 {
		qty = 1
	}
	b := snap.Buildings[0]
	return &Decision{
		Action:    "provision",
		Rationale: why,
		Intervention: &Intervention{
			Type:       "provision",
			BuildingID: b.ID,
			Good:       good,
			Quantity:   qty,
		},
	}
}

// placeSource puts a fresh resource on the open tile nearest the first
// building's door, or the map centre when there is no building.
func placeSource(snap *Snapshot, kind, why string) *Decision {
	origin := Tile{X: snap.Map.Width / 2, Y: snap.Map.Height / 2}
	if len(snap.Buildings) > 0 {
		origin = snap.Buildings[0].Door
	}
	spot, ok := openTileNear(snap, origin)
	if !ok {
		return &Decision{Action: "none", Rationale: why + " but no open tile to place a " + kind}
	}
	return &Decision{
		Action:    "resource",
		Rationale: why,
		Intervention: &Intervention{
			Type:     "resource",
			Kind:     kind,
			X:        spot.X,
			Y:        spot.Y,
			Quantity: sourceStock,
		},
	}
}

// openTileNear scans rings around origin for a walkable non-road tile with no
// resource on it, starting two tiles out from origin.
func openTileNear(snap *Snapshot, origin Tile) (Tile, bool) {
	taken := make(map[Tile]bool, len(snap.Resources))
	for _, r := range snap.Resources {
		taken[r.Tile] = true
	}
	open := func(t Tile) bool {
		if t.Y < 0 || t.Y >= len(snap.Map.Rows) || t.X < 0 || t.X >= len(snap.Map.Rows[t.Y]) {
			return false
		}
		switch snap.Map.Rows[t.Y][t.X] {
		case ',', '.', ':':
			return !taken[t]
		}
		return false
	}

	limit := snap.Map.Width
	if snap.Map.Height > limit {
		limit = snap.Map.Height
	}
	for r := 2; r <= limit; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx != -r && dx != r && dy != -r && dy != r {
					continue
				}
				t := Tile{X: origin.X + dx, Y: origin.Y + dy}
				if open(t) {
					return t, true
				}
			}
		}
	}
	return Tile{}, false
}
