// Simulation ties the world, villagers and decision systems together and
// advances them one tick at a time.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/config"
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/pathfind"
	"github.com/Netflux/Villa/internal/world"
)

// Simulation holds the complete village state. Think mutates it under the
// write lock; observers read it through View.
type Simulation struct {
	mu sync.RWMutex

	RunID  string
	World  *world.World
	Tuning config.Tuning
	Rand   *entropy.Rand

	Spawner *agents.Spawner
	Finder  pathfind.Finder

	villagers     []*agents.Villager
	villagerIndex map[uint64]*agents.Villager

	LastTick  uint64 // Most recent tick processed
	Now       uint64 // Simulated milliseconds
	stepCarry uint64 // Leftover ms·TickRateHz not yet added to Now

	Events  []Event // Recent events, oldest first
	pending []Event // Not yet persisted
	bus     eventBus

	// Lifecycle timers, in sim ms.
	lastPenalty uint64
	lastRegen   uint64
	lastGrowth  uint64

	Stats SimStats
}

// SimStats tracks aggregate village statistics.
type SimStats struct {
	Population int     `json:"population"`
	Buildings  int     `json:"buildings"`
	Resources  int     `json:"resources"`
	Harvest    int     `json:"harvestable"`
	Items      int     `json:"items"`
	Deaths     int     `json:"deaths"`
	Births     int     `json:"births"`
	Founded    int     `json:"founded"`
	AvgHealth  float64 `json:"avg_health"`
	AvgHunger  float64 `json:"avg_hunger"`
	AvgThirst  float64 `json:"avg_thirst"`
	AvgFatigue float64 `json:"avg_fatigue"`
}

// NewSimulation creates a simulation over w. Villagers are added afterwards
// with AddVillager or Populate.
func NewSimulation(w *world.World, tuning config.Tuning, rng *entropy.Rand) *Simulation {
	s := &Simulation{
		RunID:         uuid.NewString(),
		World:         w,
		Tuning:        tuning,
		Rand:          rng,
		Spawner:       agents.NewSpawner(w, rng, tuning.Villager.Speed, tuning.Villager.MaxHealth),
		Finder:        pathfind.Finder{Grid: w, Diagonal: tuning.DiagonalMoves, StepLimit: tuning.PathStepLimit},
		villagerIndex: make(map[uint64]*agents.Villager),
	}
	s.updateStats()
	return s
}

// Populate spawns one villager at each point, each carrying one random tool.
func (s *Simulation) Populate(points []world.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		v := s.Spawner.Spawn(p, s.Now)
		s.Spawner.GiveTool(v, 100)
		s.AddVillager(v)
	}
	s.updateStats()
}

// Villagers returns a snapshot of the living villagers in spawn order.
func (s *Simulation) Villagers() []*agents.Villager {
	out := make([]*agents.Villager, len(s.villagers))
	copy(out, s.villagers)
	return out
}

// Villager looks up a living villager by ID.
func (s *Simulation) Villager(id uint64) (*agents.Villager, bool) {
	v, ok := s.villagerIndex[id]
	return v, ok
}

// AddVillager registers a villager. It reports false for a nil, dead or
// already registered villager.
func (s *Simulation) AddVillager(v *agents.Villager) bool {
	if v == nil || v.IsDead() {
		return false
	}
	if _, dup := s.villagerIndex[v.ID]; dup {
		return false
	}
	s.villagers = append(s.villagers, v)
	s.villagerIndex[v.ID] = v
	return true
}

func (s *Simulation) removeVillager(id uint64) {
	delete(s.villagerIndex, id)
	for i, v := range s.villagers {
		if v.ID == id {
			s.villagers = append(s.villagers[:i], s.villagers[i+1:]...)
			return
		}
	}
}

// View runs fn with the simulation read-locked.
func (s *Simulation) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Update runs fn with the simulation write-locked.
func (s *Simulation) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Think advances the simulation by one tick: lifecycle timers first, then
// every villager acts once in spawn order.
func (s *Simulation) Think() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick++
	s.advanceClock()

	s.lifecycle()

	// Villagers spawned this tick start acting next tick.
	for _, v := range s.Villagers() {
		if _, alive := s.villagerIndex[v.ID]; !alive {
			continue
		}
		s.act(v)
	}
}

// nextStep returns the milliseconds the next tick will add to Now.
func (s *Simulation) nextStep() uint64 {
	return (s.stepCarry + 1000) / uint64(s.Tuning.TickRateHz)
}

// advanceClock adds one tick of simulated time. The remainder of 1000/rate
// carries over, so every TickRateHz ticks add exactly one second.
func (s *Simulation) advanceClock() {
	s.Now += s.nextStep()
	s.stepCarry = (s.stepCarry + 1000) % uint64(s.Tuning.TickRateHz)
}

// TickSecond runs once per simulated second.
func (s *Simulation) TickSecond(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateStats()
}

// TickMinute logs the periodic report.
func (s *Simulation) TickMinute(tick uint64) {
	s.mu.Lock()
	s.updateStats()
	stats := s.Stats
	now := s.Now

	// Count events by category since the last report.
	eventCounts := make(map[string]int)
	for _, e := range s.Events {
		if e.Time+60000 > now {
			eventCounts[e.Category]++
		}
	}
	s.mu.Unlock()

	slog.Info("village report",
		"tick", humanize.Comma(int64(tick)),
		"time", SimTime(now),
		"alive", stats.Population,
		"buildings", stats.Buildings,
		"deaths", stats.Deaths,
		"births", stats.Births,
		"items", humanize.Comma(int64(stats.Items)),
		"avg_health", fmt.Sprintf("%.1f", stats.AvgHealth),
		"avg_hunger", fmt.Sprintf("%.1f", stats.AvgHunger),
		"avg_thirst", fmt.Sprintf("%.1f", stats.AvgThirst),
		"avg_fatigue", fmt.Sprintf("%.1f", stats.AvgFatigue),
		"events_death", eventCounts["death"],
		"events_birth", eventCounts["birth"],
		"events_building", eventCounts["building"],
	)
}

// Snapshot returns the current stats under the read lock.
func (s *Simulation) Snapshot() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

func (s *Simulation) updateStats() {
	st := &s.Stats
	st.Population = len(s.villagers)
	st.Buildings = len(s.World.Buildings())
	st.Items = 0
	st.Harvest = 0

	resources := s.World.Resources()
	st.Resources = len(resources)
	for _, r := range resources {
		if r.Harvestable {
			st.Harvest++
		}
		st.Items += r.Items.Count()
	}
	for _, b := range s.World.Buildings() {
		st.Items += b.Items.Count()
	}

	var health, hunger, thirst, fatigue int
	for _, v := range s.villagers {
		health += v.Health
		hunger += v.Hunger
		thirst += v.Thirst
		fatigue += v.Fatigue
		st.Items += v.Items.Count()
	}
	st.AvgHealth, st.AvgHunger, st.AvgThirst, st.AvgFatigue = 0, 0, 0, 0
	if n := float64(len(s.villagers)); n > 0 {
		st.AvgHealth = float64(health) / n
		st.AvgHunger = float64(hunger) / n
		st.AvgThirst = float64(thirst) / n
		st.AvgFatigue = float64(fatigue) / n
	}
}

// VillagerTrace is one villager's state in a trace record.
type VillagerTrace struct {
	ID      uint64    `json:"id"`
	Pos     world.Vec `json:"pos"`
	Task    string    `json:"task"`
	Depth   int       `json:"depth"`
	Health  int       `json:"health"`
	Hunger  int       `json:"hunger"`
	Thirst  int       `json:"thirst"`
	Fatigue int       `json:"fatigue"`
	Items   int       `json:"items"`
}

// TraceRecord is a point-in-time dump of every villager.
type TraceRecord struct {
	RunID     string          `json:"run_id"`
	Tick      uint64          `json:"tick"`
	Time      uint64          `json:"time"`
	Stats     SimStats        `json:"stats"`
	Villagers []VillagerTrace `json:"villagers"`
}

// Trace captures a TraceRecord under the read lock.
func (s *Simulation) Trace() TraceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := TraceRecord{
		RunID:     s.RunID,
		Tick:      s.LastTick,
		Time:      s.Now,
		Stats:     s.Stats,
		Villagers: make([]VillagerTrace, 0, len(s.villagers)),
	}
	for _, v := range s.villagers {
		rec.Villagers = append(rec.Villagers, VillagerTrace{
			ID:      v.ID,
			Pos:     v.Pos,
			Task:    v.Current().Kind.String(),
			Depth:   v.Tasks.Len(),
			Health:  v.Health,
			Hunger:  v.Hunger,
			Thirst:  v.Thirst,
			Fatigue: v.Fatigue,
			Items:   v.Items.Count(),
		})
	}
	return rec
}
