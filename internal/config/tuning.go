// Package config holds the simulation tuning: every threshold, interval and
// probability the villagers run on. Defaults match the reference village;
// a YAML file may override any subset of them.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) when a tuning file fails validation.
var ErrInvalid = errors.New("invalid tuning")

// Idle activity names used in IdleBands.
const (
	ActivityRest    = "rest"
	ActivityHarvest = "harvest"
	ActivityStore   = "store"
	ActivityFound   = "found"
)

// Tuning is the full set of simulation constants.
type Tuning struct {
	TileSize   int `yaml:"tile_size"`   // Pixels per tile edge
	GridWidth  int `yaml:"grid_width"`  // Tiles
	GridHeight int `yaml:"grid_height"` // Tiles

	TickRateHz int `yaml:"tick_rate_hz"` // Ticks per simulated second

	ArrivalTolerance float64 `yaml:"arrival_tolerance"` // Pixels, per axis
	DiagonalMoves    bool    `yaml:"diagonal_moves"`
	PathStepLimit    int     `yaml:"path_step_limit"`

	Villager VillagerTuning `yaml:"villager"`
	Needs    NeedsTuning    `yaml:"needs"`
	Policy   PolicyTuning   `yaml:"policy"`
	Harvest  HarvestTuning  `yaml:"harvest"`
	Transfer TransferTuning `yaml:"transfer"`
	Build    BuildTuning    `yaml:"build"`
	Respawn  RespawnTuning  `yaml:"respawn"`
	Rest     RestTuning     `yaml:"rest"`
	World    WorldTuning    `yaml:"world"`
}

type VillagerTuning struct {
	Speed     float64 `yaml:"speed"` // Pixels per simulated second
	MaxHealth int     `yaml:"max_health"`
}

type NeedsTuning struct {
	Urgent            int    `yaml:"urgent"`   // Need level that triggers the policy
	Critical          int    `yaml:"critical"` // Need level that costs health
	PenaltyIntervalMs uint64 `yaml:"penalty_interval_ms"`
	RegenIntervalMs   uint64 `yaml:"regen_interval_ms"`
	GrowthIntervalMs  uint64 `yaml:"growth_interval_ms"`
	EatRelief         int    `yaml:"eat_relief"`
	DrinkRelief       int    `yaml:"drink_relief"`
}

// Band is one slice of the 1..100 idle roll. A roll r selects the first band
// whose Max is >= r.
type Band struct {
	Activity string `yaml:"activity"`
	Max      int    `yaml:"max"`
}

// Weighted is a named option in a weighted draw.
type Weighted struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

type PolicyTuning struct {
	NeedCheckChance    int        `yaml:"need_check_chance"` // Percent
	LongRestMs         uint64     `yaml:"long_rest_ms"`
	LongRestRelief     int        `yaml:"long_rest_relief"`
	ShortRestMs        uint64     `yaml:"short_rest_ms"`
	ShortRestRelief    int        `yaml:"short_rest_relief"`
	IdleBands          []Band     `yaml:"idle_bands"`
	WaterHarvestChance int        `yaml:"water_harvest_chance"` // Percent
	DistanceJitter     int        `yaml:"distance_jitter"`
	StoreThreshold     int        `yaml:"store_threshold"`
	PlacementAttempts  int        `yaml:"placement_attempts"`
	BuildingWeights    []Weighted `yaml:"building_weights"`
}

type HarvestTuning struct {
	BasePauseMs      int `yaml:"base_pause_ms"`
	EfficiencyFactor int `yaml:"efficiency_factor"`
	HungerCost       int `yaml:"hunger_cost"`
	ThirstCost       int `yaml:"thirst_cost"`
	FatigueCost      int `yaml:"fatigue_cost"`
}

type TransferTuning struct {
	TakeRestMs  uint64 `yaml:"take_rest_ms"`
	StoreRestMs uint64 `yaml:"store_rest_ms"`
}

type BuildTuning struct {
	LumberCost   int   `yaml:"lumber_cost"`
	StoneCost    int   `yaml:"stone_cost"`
	SpawnWeights []int `yaml:"spawn_weights"` // Index i = weight of spawning i+1 villagers
	ToolChance   int   `yaml:"tool_chance"`   // Percent
}

type RespawnTuning struct {
	CooldownMs uint64 `yaml:"cooldown_ms"`
	MinItems   int    `yaml:"min_items"`
	MaxItems   int    `yaml:"max_items"`
}

type RestTuning struct {
	WanderOneIn  int `yaml:"wander_one_in"` // 0 disables wandering
	WanderRadius int `yaml:"wander_radius"` // Tiles
}

type WorldTuning struct {
	Generator string `yaml:"generator"` // "noise" or "rings"
	Villagers int    `yaml:"villagers"`
	Trees     int    `yaml:"trees"`
	Food      int    `yaml:"food"`
	Stone     int    `yaml:"stone"`
	Ore       int    `yaml:"ore"`
	Water     int    `yaml:"water"`
}

// Default returns the reference tuning.
func Default() Tuning {
	return Tuning{
		TileSize:         16,
		GridWidth:        50,
		GridHeight:       50,
		TickRateHz:       60,
		ArrivalTolerance: 6,
		DiagonalMoves:    true,
		PathStepLimit:    200,
		Villager: VillagerTuning{
			Speed:     100,
			MaxHealth: 100,
		},
		Needs: NeedsTuning{
			Urgent:            60,
			Critical:          100,
			PenaltyIntervalMs: 1000,
			RegenIntervalMs:   30000,
			GrowthIntervalMs:  15000,
			EatRelief:         4,
			DrinkRelief:       4,
		},
		Policy: PolicyTuning{
			NeedCheckChance: 50,
			LongRestMs:      10000,
			LongRestRelief:  16,
			ShortRestMs:     2500,
			ShortRestRelief: 4,
			IdleBands: []Band{
				{Activity: ActivityRest, Max: 30},
				{Activity: ActivityHarvest, Max: 80},
				{Activity: ActivityStore, Max: 95},
				{Activity: ActivityFound, Max: 100},
			},
			WaterHarvestChance: 25,
			DistanceJitter:     10,
			StoreThreshold:     25,
			PlacementAttempts:  5,
			BuildingWeights: []Weighted{
				{Name: "house_small", Weight: 35},
				{Name: "house", Weight: 20},
				{Name: "farmhouse", Weight: 15},
				{Name: "stall", Weight: 15},
				{Name: "blacksmith", Weight: 10},
				{Name: "town_hall", Weight: 5},
			},
		},
		Harvest: HarvestTuning{
			BasePauseMs:      1500,
			EfficiencyFactor: 10,
			HungerCost:       1,
			ThirstCost:       2,
			FatigueCost:      3,
		},
		Transfer: TransferTuning{
			TakeRestMs:  500,
			StoreRestMs: 250,
		},
		Build: BuildTuning{
			LumberCost:   20,
			StoneCost:    20,
			SpawnWeights: []int{70, 30},
			ToolChance:   50,
		},
		Respawn: RespawnTuning{
			CooldownMs: 120000,
			MinItems:   1,
			MaxItems:   5,
		},
		Rest: RestTuning{
			WanderOneIn:  500,
			WanderRadius: 2,
		},
		World: WorldTuning{
			Generator: "noise",
			Villagers: 6,
			Trees:     120,
			Food:      60,
			Stone:     40,
			Ore:       25,
			Water:     40,
		},
	}
}

// Load reads a YAML tuning file over the defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate checks the invariants the simulation relies on.
func (t Tuning) Validate() error {
	if t.TileSize <= 0 || t.GridWidth <= 0 || t.GridHeight <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive", ErrInvalid)
	}
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("%w: tick rate must be 1-1000 Hz", ErrInvalid)
	}
	if t.Needs.PenaltyIntervalMs == 0 || t.Needs.RegenIntervalMs == 0 || t.Needs.GrowthIntervalMs == 0 {
		return fmt.Errorf("%w: needs intervals must be positive", ErrInvalid)
	}
	if err := ValidateBands(t.Policy.IdleBands); err != nil {
		return err
	}
	if len(t.Policy.BuildingWeights) == 0 {
		return fmt.Errorf("%w: no building weights", ErrInvalid)
	}
	if len(t.Build.SpawnWeights) == 0 {
		return fmt.Errorf("%w: no spawn weights", ErrInvalid)
	}
	if t.Respawn.MinItems < 1 || t.Respawn.MaxItems < t.Respawn.MinItems {
		return fmt.Errorf("%w: respawn item range %d..%d", ErrInvalid, t.Respawn.MinItems, t.Respawn.MaxItems)
	}
	if t.Rest.WanderOneIn < 0 {
		return fmt.Errorf("%w: wander_one_in must not be negative", ErrInvalid)
	}
	return nil
}

// ValidateBands reports whether bands partition 1..100 with no gap or overlap.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no idle bands", ErrInvalid)
	}
	prev := 0
	for _, b := range bands {
		if b.Max <= prev {
			return fmt.Errorf("%w: band %q ends at %d, not after %d", ErrInvalid, b.Activity, b.Max, prev)
		}
		prev = b.Max
	}
	if prev != 100 {
		return fmt.Errorf("%w: bands end at %d, not 100", ErrInvalid, prev)
	}
	return nil
}

// BandFor returns the activity selected by a roll in 1..100.
func BandFor(bands []Band, roll int) string {
	for _, b := range bands {
		if roll <= b.Max {
			return b.Activity
		}
	}
	return ""
}
