// Package agents provides the villager data model, needs bookkeeping, the task
// model and the per-villager task stack.
package agents

import (
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// Villager is an autonomous agent walking the grid.
type Villager struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`

	// Location
	Pos   world.Vec `json:"pos"`   // Pixel space
	Speed float64   `json:"speed"` // Pixels per simulated second

	// Vitals
	Health  int `json:"health"` // 0..MaxHealth
	Hunger  int `json:"hunger"` // ≥ 0, unbounded above
	Thirst  int `json:"thirst"`
	Fatigue int `json:"fatigue"`

	Items *items.Inventory `json:"inventory"`
	Tasks TaskStack        `json:"tasks"`

	BornAt uint64 `json:"born_at"` // Sim ms
}

// NewVillager returns a healthy villager at pos with no needs and an Idle
// floor task.
func NewVillager(id uint64, name string, pos world.Vec, speed float64, maxHealth int, now uint64) *Villager {
	return &Villager{
		ID:     id,
		Name:   name,
		Pos:    pos,
		Speed:  speed,
		Health: maxHealth,
		Items:  items.NewInventory(),
		Tasks:  NewTaskStack(IdleTask(pos)),
		BornAt: now,
	}
}

func (v *Villager) Ref() world.EntityRef        { return world.EntityRef{Kind: world.KindVillager, ID: v.ID} }
func (v *Villager) Position() world.Vec         { return v.Pos }
func (v *Villager) Inventory() *items.Inventory { return v.Items }

// Current returns the task on top of the villager's stack.
func (v *Villager) Current() *Task {
	return v.Tasks.Top()
}

// IsDead reports whether the villager's health has run out.
func (v *Villager) IsDead() bool {
	return v.Health <= 0
}
