package agents

import "golang.org/x/exp/constraints"

// clamp bounds v to [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// floor bounds v below by lo.
func floor[T constraints.Ordered](v, lo T) T {
	if v < lo {
		return lo
	}
	return v
}

// AdjustHealth changes health by d, clamped to [0, max].
func (v *Villager) AdjustHealth(d, max int) {
	v.Health = clamp(v.Health+d, 0, max)
}

// AdjustHunger changes hunger by d. Needs never drop below zero.
func (v *Villager) AdjustHunger(d int) {
	v.Hunger = floor(v.Hunger+d, 0)
}

// AdjustThirst changes thirst by d. Needs never drop below zero.
func (v *Villager) AdjustThirst(d int) {
	v.Thirst = floor(v.Thirst+d, 0)
}

// AdjustFatigue changes fatigue by d. Needs never drop below zero.
func (v *Villager) AdjustFatigue(d int) {
	v.Fatigue = floor(v.Fatigue+d, 0)
}

// GrowNeeds raises hunger, thirst and fatigue by one each.
func (v *Villager) GrowNeeds() {
	v.AdjustHunger(1)
	v.AdjustThirst(1)
	v.AdjustFatigue(1)
}

// InCrisis reports whether any need has reached the critical level.
func (v *Villager) InCrisis(critical int) bool {
	return v.Hunger >= critical || v.Thirst >= critical || v.Fatigue >= critical
}
