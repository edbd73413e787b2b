package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveIsNotACopy(t *testing.T) {
	var seq Sequence
	food := seq.New(TypeFood)
	src := NewInventory(food, seq.New(TypeWater))
	dst := NewInventory()

	require.True(t, Move(src, dst, food.ID))
	assert.False(t, src.Has(food.ID))
	assert.True(t, dst.Has(food.ID))
	assert.Equal(t, 1, src.Count())
	assert.Equal(t, 1, dst.Count())

	// A second move of the same item is a no-op.
	assert.False(t, Move(src, dst, food.ID))
	assert.Equal(t, 1, dst.Count())
}

func TestBestToolPicksHighestEfficiency(t *testing.T) {
	var seq Sequence
	inv := NewInventory(
		seq.NewTool(TypeAxe, 20),
		seq.NewTool(TypePickaxe, 90),
		seq.NewTool(TypeAxe, 75),
		seq.New(TypeLumber),
	)

	axe, ok := inv.BestTool(TypeAxe)
	require.True(t, ok)
	assert.Equal(t, 75, axe.Efficiency)

	_, ok = inv.BestTool(TypeBucket)
	assert.False(t, ok)
	_, ok = inv.BestTool(TypeLumber)
	assert.False(t, ok, "plain goods are never tools")
}

func TestNewToolClampsEfficiency(t *testing.T) {
	var seq Sequence
	assert.Equal(t, 100, seq.NewTool(TypeAxe, 150).Efficiency)
	assert.Equal(t, 0, seq.NewTool(TypeAxe, -5).Efficiency)
}

func TestRemoveTypeAndCounts(t *testing.T) {
	var seq Sequence
	inv := NewInventory()
	for i := 0; i < 5; i++ {
		inv.Add(seq.New(TypeStone))
	}
	inv.Add(seq.New(TypeLumber))

	assert.Equal(t, 3, inv.RemoveType(TypeStone, 3))
	assert.Equal(t, 2, inv.CountType(TypeStone))
	assert.Equal(t, 2, inv.RemoveType(TypeStone, 10))
	assert.Equal(t, 1, inv.Count())
	assert.Equal(t, map[string]int{"lumber": 1}, inv.Summary())
}

func TestMoveAllEmptiesSource(t *testing.T) {
	var seq Sequence
	src := NewInventory(seq.New(TypeFood), seq.NewTool(TypeBucket, 10))
	dst := NewInventory(seq.New(TypeOre))

	assert.Equal(t, 2, MoveAll(src, dst))
	assert.True(t, src.IsEmpty())
	assert.Equal(t, 3, dst.Count())
	assert.Len(t, dst.Goods(), 2)
}
