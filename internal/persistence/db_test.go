package persistence

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Netflux/Villa/internal/config"
	"github.com/Netflux/Villa/internal/engine"
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/items"
	"github.com/Netflux/Villa/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "villa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestSim(t *testing.T) *engine.Simulation {
	t.Helper()
	rng := entropy.New(5)
	w := world.NewWorld(12, 12, 16)
	hall, points := world.PlaceVillage(w, rng, 3)
	require.NotNil(t, hall)
	require.True(t, w.AddResource(&world.Resource{Type: world.ResourceTree, Pos: w.Centre(world.Coord{X: 1, Y: 1}), Harvestable: true}))

	sim := engine.NewSimulation(w, config.Default(), rng)
	sim.Populate(points)
	return sim
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("seed", "42"))
	require.NoError(t, db.SaveMeta("seed", "43"))
	v, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "43", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestSaveEventsKeepsMeta(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveEvents("run-a", nil))
	require.NoError(t, db.SaveEvents("run-a", []engine.Event{
		{Tick: 3, Time: 50, Description: "Ada dies", Category: "death", Meta: map[string]any{"villager_id": 7}},
		{Tick: 9, Time: 150, Description: "A house rises", Category: "building"},
	}))

	rows, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "building", rows[0].Category, "newest first")
	assert.Nil(t, rows[0].Meta)
	assert.Equal(t, uint64(3), rows[1].Tick)
	require.NotNil(t, rows[1].Meta)
	assert.JSONEq(t, `{"villager_id":7}`, *rows[1].Meta)
	assert.Equal(t, "run-a", rows[1].RunID)
}

func TestStatsHistoryWindow(t *testing.T) {
	db := openTestDB(t)

	for tick := uint64(60); tick <= 300; tick += 60 {
		st := engine.SimStats{Population: int(tick / 60), AvgHealth: 50}
		require.NoError(t, db.SaveStats("run-a", tick, tick*16, st))
	}

	rows, err := db.LoadStatsHistory(100, 250, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(120), rows[0].Tick)
	assert.Equal(t, 2, rows[0].Population)
	assert.Equal(t, uint64(180*16), rows[1].Time)
	assert.InDelta(t, 50.0, rows[1].AvgHealth, 0.001)

	rows, err = db.LoadStatsHistory(0, 1000, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveSnapshot(t *testing.T) {
	db := openTestDB(t)
	sim := newTestSim(t)

	hall := sim.World.Buildings()[0]
	_, err := sim.ProvisionBuilding(hall.ID, "food", 2)
	require.NoError(t, err)

	require.NoError(t, db.SaveSnapshot(sim))

	var villagers, buildings, resources int
	require.NoError(t, db.conn.Get(&villagers, "SELECT COUNT(*) FROM villagers"))
	require.NoError(t, db.conn.Get(&buildings, "SELECT COUNT(*) FROM buildings"))
	require.NoError(t, db.conn.Get(&resources, "SELECT COUNT(*) FROM resources"))
	assert.Equal(t, 3, villagers)
	assert.Equal(t, 1, buildings)
	assert.Equal(t, 1, resources)

	var inv string
	require.NoError(t, db.conn.Get(&inv, "SELECT inventory_json FROM buildings WHERE id = ?", hall.ID))
	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(inv), &stored))
	assert.Len(t, stored, 2)

	var task string
	require.NoError(t, db.conn.Get(&task, "SELECT task FROM villagers LIMIT 1"))
	assert.Equal(t, "idle", task)

	rows, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "intervention", rows[0].Category)
	assert.Equal(t, sim.RunID, rows[0].RunID)
	assert.Empty(t, sim.DrainEvents(), "snapshot drains pending events")

	// A second snapshot replaces rather than appends.
	require.NoError(t, db.SaveSnapshot(sim))
	require.NoError(t, db.conn.Get(&villagers, "SELECT COUNT(*) FROM villagers"))
	assert.Equal(t, 3, villagers)
}

func TestCaptureSnapshotIsDetached(t *testing.T) {
	db := openTestDB(t)
	sim := newTestSim(t)

	snap := CaptureSnapshot(sim)
	require.Len(t, snap.Villagers, 3)
	first := snap.Villagers[0]

	// Ticks keep mutating the village after the capture.
	sim.Update(func() {
		v := sim.Villagers()[0]
		v.Hunger = 77
		v.Items.Add(sim.World.Items.New(items.TypeFood))
	})
	assert.Zero(t, first.Hunger)
	assert.NotContains(t, first.InventoryJSON, `"type":2`)

	// Writing needs no simulation lock, so it runs even while one is held.
	sim.Update(func() {
		require.NoError(t, db.WriteSnapshot(snap))
	})

	var hunger int
	require.NoError(t, db.conn.Get(&hunger, "SELECT hunger FROM villagers WHERE id = ?", first.ID))
	assert.Zero(t, hunger)
	tick, err := db.GetMeta("last_tick")
	require.NoError(t, err)
	assert.Equal(t, "0", tick)
}

func TestTraceWriterProducesZstdJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace", "run.jsonl.zst")
	tw, err := NewTraceWriter(path)
	require.NoError(t, err)

	sim := newTestSim(t)
	require.NoError(t, tw.Write(sim.Trace()))
	sim.Think()
	require.NoError(t, tw.Write(sim.Trace()))
	assert.Equal(t, 2, tw.Lines())
	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close())
	assert.Error(t, tw.Write(sim.Trace()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	var recs []engine.TraceRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec engine.TraceRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		recs = append(recs, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(0), recs[0].Tick)
	assert.Equal(t, uint64(1), recs[1].Tick)
	assert.Len(t, recs[1].Villagers, 3)
	assert.Equal(t, sim.RunID, recs[0].RunID)
}
