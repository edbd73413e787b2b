package agents

import (
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

// TaskKind enumerates what a villager can be doing.
type TaskKind uint8

const (
	TaskIdle TaskKind = iota
	TaskMove
	TaskHarvest
	TaskTakeItem
	TaskStoreItem
	TaskRest
	TaskBuild
)

var taskNames = [...]string{
	TaskIdle:      "idle",
	TaskMove:      "move",
	TaskHarvest:   "harvest",
	TaskTakeItem:  "take_item",
	TaskStoreItem: "store_item",
	TaskRest:      "rest",
	TaskBuild:     "build",
}

// String returns a human-readable name for a task kind.
func (k TaskKind) String() string {
	if int(k) < len(taskNames) {
		return taskNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind as its name.
func (k TaskKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Task is one unit of work. Target is always set; arrival checks only look at
// Target. The other fields are filled per kind:
//
//	Harvest    Entity (resource)
//	TakeItem   Container (source), Item
//	StoreItem  Container (destination building), Item
//	Rest       Until (sim ms)
//	Build      Blueprint
type Task struct {
	Kind      TaskKind        `json:"kind"`
	Target    world.Vec       `json:"target"`
	Entity    world.EntityRef `json:"entity,omitempty"`
	Container world.EntityRef `json:"container,omitempty"`
	Item      items.ID        `json:"item,omitempty"`
	Until     uint64          `json:"until,omitempty"`
	Blueprint *world.Building `json:"blueprint,omitempty"`
}

// IdleTask is the floor task every stack starts with.
func IdleTask(pos world.Vec) Task {
	return Task{Kind: TaskIdle, Target: pos}
}

// MoveTask walks to target.
func MoveTask(target world.Vec) Task {
	return Task{Kind: TaskMove, Target: target}
}

// HarvestTask harvests a resource at its position.
func HarvestTask(r *world.Resource) Task {
	return Task{Kind: TaskHarvest, Target: r.Pos, Entity: r.Ref()}
}

// TakeItemTask moves item id from the container into the villager's inventory.
func TakeItemTask(from world.Entity, id items.ID) Task {
	return Task{Kind: TaskTakeItem, Target: from.Position(), Container: from.Ref(), Item: id}
}

// StoreItemTask moves item id from the villager into a building.
func StoreItemTask(to *world.Building, id items.ID) Task {
	return Task{Kind: TaskStoreItem, Target: to.Door, Container: to.Ref(), Item: id}
}

// RestTask waits at pos until the given sim time.
func RestTask(pos world.Vec, until uint64) Task {
	return Task{Kind: TaskRest, Target: pos, Until: until}
}

// BuildTask constructs the blueprint, standing at its doorway.
func BuildTask(b *world.Building) Task {
	return Task{Kind: TaskBuild, Target: b.Door, Blueprint: b}
}

// Gated reports whether the dispatcher must bring the villager to Target
// before the task's handler runs. Move and Idle need no gate; Build gates its
// own movement.
func (t *Task) Gated() bool {
	switch t.Kind {
	case TaskIdle, TaskMove, TaskBuild:
		return false
	default:
		return true
	}
}
