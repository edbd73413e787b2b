package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

func TestTaskStackIsLIFO(t *testing.T) {
	s := NewTaskStack(IdleTask(world.Vec{}))
	s.Push(MoveTask(world.Vec{X: 1}))
	s.Push(RestTask(world.Vec{}, 50))
	s.Push(MoveTask(world.Vec{X: 3}))
	require.Equal(t, 4, s.Len())

	assert.Equal(t, TaskMove, s.Top().Kind)
	assert.Equal(t, 3.0, s.Top().Target.X)
	require.True(t, s.Pop())
	assert.Equal(t, TaskRest, s.Top().Kind)
	require.True(t, s.Pop())
	assert.Equal(t, 1.0, s.Top().Target.X)
	require.True(t, s.Pop())
	assert.Equal(t, TaskIdle, s.Top().Kind)
}

func TestTaskStackKeepsFloor(t *testing.T) {
	s := NewTaskStack(IdleTask(world.Vec{X: 7}))
	assert.False(t, s.Pop())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, TaskIdle, s.Top().Kind)

	s.Push(RestTask(world.Vec{}, 10))
	s.Replace(RestTask(world.Vec{X: 2}, 10))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2.0, s.Top().Target.X)

	tasks := s.Tasks()
	tasks[0].Kind = TaskBuild
	assert.Equal(t, TaskIdle, s.Tasks()[0].Kind, "Tasks returns a copy")
}

func TestNeedsClamp(t *testing.T) {
	v := NewVillager(1, "Maud Miller", world.Vec{}, 100, 100, 0)
	assert.Equal(t, 100, v.Health)

	v.AdjustHunger(-4)
	v.AdjustFatigue(-16)
	assert.Zero(t, v.Hunger)
	assert.Zero(t, v.Fatigue)

	v.AdjustThirst(250)
	assert.Equal(t, 250, v.Thirst, "needs are unbounded above")
	assert.True(t, v.InCrisis(100))

	v.AdjustHealth(20, 100)
	assert.Equal(t, 100, v.Health)
	v.AdjustHealth(-130, 100)
	assert.Zero(t, v.Health)
	assert.True(t, v.IsDead())
}

func TestGrowNeeds(t *testing.T) {
	v := NewVillager(1, "", world.Vec{}, 100, 100, 0)
	v.GrowNeeds()
	v.GrowNeeds()
	assert.Equal(t, 2, v.Hunger)
	assert.Equal(t, 2, v.Thirst)
	assert.Equal(t, 2, v.Fatigue)
	assert.False(t, v.InCrisis(100))
}

func TestGatedKinds(t *testing.T) {
	r := &world.Resource{ID: 4, Type: world.ResourceFood, Pos: world.Vec{X: 8, Y: 8}}
	h := HarvestTask(r)
	assert.True(t, h.Gated())
	assert.Equal(t, r.Pos, h.Target)
	assert.Equal(t, world.EntityRef{Kind: world.KindResource, ID: 4}, h.Entity)

	m := MoveTask(world.Vec{})
	assert.False(t, m.Gated())
	idle := IdleTask(world.Vec{})
	assert.False(t, idle.Gated())
}

func TestSpawnerKit(t *testing.T) {
	w := world.NewWorld(4, 4, 16)
	s := NewSpawner(w, entropy.New(5), 100, 100)
	a := s.Spawn(world.Vec{X: 8, Y: 8}, 42)
	b := s.Spawn(world.Vec{X: 8, Y: 8}, 42)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.Name)
	assert.Equal(t, uint64(42), a.BornAt)
	assert.Equal(t, TaskIdle, a.Current().Kind)

	require.True(t, s.GiveTool(a, 100))
	tools := a.Items.Items()
	require.Len(t, tools, 1)
	assert.True(t, tools[0].IsTool())
	assert.GreaterOrEqual(t, tools[0].Efficiency, 1)
	assert.LessOrEqual(t, tools[0].Efficiency, 100)

	assert.False(t, s.GiveTool(b, 0))
	assert.Equal(t, 0, b.Items.CountType(items.TypeAxe))
}
