package gardener

import "math"

// Crisis levels, most severe first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelWatch    = "WATCH"
	LevelHealthy  = "HEALTHY"
)

// Health holds diagnostic signals derived from a Snapshot.
type Health struct {
	DeathBirthRatio float64 // Per-sample delta over the history window
	PopulationTrend int     // Newest minus oldest population in history

	FoodStored  int // Food held in buildings
	WaterStored int

	FoodSources  int // Harvestable food resources
	WaterSources int

	Hungry  bool // Average hunger at or above the urgent level
	Thirsty bool

	CrisisLevel string
}

// urgentNeed matches the default tuning's urgent need level.
const urgentNeed = 60

// Triage computes a Health from the snapshot.
func Triage(snap *Snapshot) *Health {
	h := &Health{DeathBirthRatio: 1}

	for _, b := range snap.Buildings {
		h.FoodStored += b.Items["food"]
		h.WaterStored += b.Items["water"]
	}
	for _, r := range snap.Resources {
		if !r.Harvestable {
			continue
		}
		switch r.Type {
		case "food":
			h.FoodSources++
		case "water":
			h.WaterSources++
		}
	}

	s := snap.Status
	h.Hungry = s.Population > 0 && s.AvgHunger >= urgentNeed
	h.Thirsty = s.Population > 0 && s.AvgThirst >= urgentNeed

	// History is oldest first; compare the ends of the window. Counters
	// that went backwards mean the village restarted inside the window.
	if n := len(snap.History); n >= 2 {
		oldest, newest := snap.History[0], snap.History[n-1]
		h.PopulationTrend = newest.Population - oldest.Population
		if newest.Births >= oldest.Births && newest.Deaths >= oldest.Deaths {
			births := newest.Births - oldest.Births
			deaths := newest.Deaths - oldest.Deaths
			switch {
			case births > 0:
				h.DeathBirthRatio = float64(deaths) / float64(births)
			case deaths > 0:
				h.DeathBirthRatio = math.Inf(1)
			}
		}
	}

	h.CrisisLevel = LevelHealthy
	switch {
	case s.Population == 0:
		h.CrisisLevel = LevelCritical
	case h.Hungry && h.FoodStored == 0 && h.FoodSources == 0:
		h.CrisisLevel = LevelCritical
	case h.Thirsty && h.WaterStored == 0 && h.WaterSources == 0:
		h.CrisisLevel = LevelCritical
	case h.Hungry || h.Thirsty:
		h.CrisisLevel = LevelWarning
	case h.DeathBirthRatio > 2:
		h.CrisisLevel = LevelWarning
	case h.DeathBirthRatio > 1 || h.PopulationTrend < 0:
		h.CrisisLevel = LevelWatch
	}

	return h
}
