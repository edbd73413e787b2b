// Villager spawning: names, starting vitals and the optional tool kit.
package agents

import (
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// Spawner creates villagers for a world. IDs come from the world so that
// villagers, buildings and resources never share one.
type Spawner struct {
	w         *world.World
	rng       *entropy.Rand
	speed     float64
	maxHealth int
}

// NewSpawner creates a villager spawner drawing from rng.
func NewSpawner(w *world.World, rng *entropy.Rand, speed float64, maxHealth int) *Spawner {
	return &Spawner{w: w, rng: rng, speed: speed, maxHealth: maxHealth}
}

// Spawn creates one villager at pos.
func (s *Spawner) Spawn(pos world.Vec, now uint64) *Villager {
	return NewVillager(s.w.NextID(), s.generateName(), pos, s.speed, s.maxHealth, now)
}

// GiveTool adds one random tool with efficiency 1..100 to the villager with
// the given percent chance. It reports whether a tool was given.
func (s *Spawner) GiveTool(v *Villager, chance int) bool {
	if !s.rng.Percent(chance) {
		return false
	}
	kind := items.Tools[s.rng.Intn(len(items.Tools))]
	v.Items.Add(s.w.Items.NewTool(kind, s.rng.Between(1, 100)))
	return true
}

func (s *Spawner) generateName() string {
	firsts := maleNames
	if s.rng.Intn(2) == 1 {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

// Name pools for procedural generation.
var maleNames = []string{
	"Alden", "Bertram", "Colm", "Dunstan", "Everard", "Fulk", "Godric",
	"Hamon", "Ingram", "Jocelin", "Lambert", "Milo", "Norbert", "Osric",
	"Piers", "Ralf", "Simkin", "Tobin", "Walter", "Wystan",
}

var femaleNames = []string{
	"Agnes", "Beatrix", "Cecily", "Dionis", "Edith", "Felise", "Gunnild",
	"Hawise", "Isolde", "Joan", "Letice", "Maud", "Nesta", "Odelina",
	"Petronel", "Rohese", "Sabine", "Tiffany", "Wenna", "Ysolde",
}

// Occupational surnames.
var lastNames = []string{
	"Baker", "Brewer", "Carter", "Cooper", "Fisher", "Fletcher", "Fowler",
	"Glover", "Hayward", "Hunter", "Mason", "Miller", "Potter", "Reeve",
	"Sawyer", "Shepherd", "Slater", "Smith", "Thatcher", "Tanner",
	"Turner", "Weaver", "Woodward", "Wright",
}
