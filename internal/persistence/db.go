// Package persistence records a run's chronicle in SQLite: events, periodic
// stats and an observation snapshot of villagers, buildings and resources.
// Nothing here restores a world; the tables are for inspection.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/engine"
	"github.com/Netflux/Villa/internal/world"
)

// DB wraps a SQLite connection for the run chronicle.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS villagers (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		health INTEGER NOT NULL,
		hunger INTEGER NOT NULL,
		thirst INTEGER NOT NULL,
		fatigue INTEGER NOT NULL,
		born_at INTEGER NOT NULL,
		task TEXT NOT NULL,
		tasks_json TEXT NOT NULL,
		inventory_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		type TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		inventory_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		type TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		harvestable INTEGER NOT NULL,
		respawn_at INTEGER NOT NULL,
		items INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		time INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS stats_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		time INTEGER NOT NULL,
		population INTEGER NOT NULL,
		buildings INTEGER NOT NULL,
		resources INTEGER NOT NULL,
		items INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		births INTEGER NOT NULL,
		avg_health REAL NOT NULL,
		avg_hunger REAL NOT NULL,
		avg_thirst REAL NOT NULL,
		avg_fatigue REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_stats_tick ON stats_history(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// VillagerRow is a villager as stored in the snapshot table.
type VillagerRow struct {
	ID            uint64  `db:"id"`
	RunID         string  `db:"run_id"`
	Name          string  `db:"name"`
	PosX          float64 `db:"pos_x"`
	PosY          float64 `db:"pos_y"`
	Health        int     `db:"health"`
	Hunger        int     `db:"hunger"`
	Thirst        int     `db:"thirst"`
	Fatigue       int     `db:"fatigue"`
	BornAt        uint64  `db:"born_at"`
	Task          string  `db:"task"`
	TasksJSON     string  `db:"tasks_json"`
	InventoryJSON string  `db:"inventory_json"`
}

// BuildingRow is a building as stored in the snapshot table.
type BuildingRow struct {
	ID            uint64 `db:"id"`
	RunID         string `db:"run_id"`
	Type          string `db:"type"`
	X             int    `db:"x"`
	Y             int    `db:"y"`
	Width         int    `db:"width"`
	Height        int    `db:"height"`
	InventoryJSON string `db:"inventory_json"`
}

// ResourceRow is a resource as stored in the snapshot table.
type ResourceRow struct {
	ID          uint64  `db:"id"`
	RunID       string  `db:"run_id"`
	Type        string  `db:"type"`
	PosX        float64 `db:"pos_x"`
	PosY        float64 `db:"pos_y"`
	Harvestable int     `db:"harvestable"`
	RespawnAt   uint64  `db:"respawn_at"`
	Items       int     `db:"items"`
}

const (
	insertVillager = `INSERT INTO villagers
		(id, run_id, name, pos_x, pos_y, health, hunger, thirst, fatigue, born_at,
		 task, tasks_json, inventory_json)
		VALUES (:id, :run_id, :name, :pos_x, :pos_y, :health, :hunger, :thirst, :fatigue, :born_at,
		 :task, :tasks_json, :inventory_json)`
	insertBuilding = `INSERT INTO buildings
		(id, run_id, type, x, y, width, height, inventory_json)
		VALUES (:id, :run_id, :type, :x, :y, :width, :height, :inventory_json)`
	insertResource = `INSERT INTO resources
		(id, run_id, type, pos_x, pos_y, harvestable, respawn_at, items)
		VALUES (:id, :run_id, :type, :pos_x, :pos_y, :harvestable, :respawn_at, :items)`
)

// Snapshot is a detached copy of the observation tables for one run.
type Snapshot struct {
	RunID     string
	Tick      uint64
	Villagers []VillagerRow
	Buildings []BuildingRow
	Resources []ResourceRow
}

// CaptureSnapshot copies the rows for sim under its read lock. The result
// shares nothing with the live simulation.
func CaptureSnapshot(sim *engine.Simulation) Snapshot {
	var snap Snapshot
	sim.View(func() {
		snap = Snapshot{
			RunID:     sim.RunID,
			Tick:      sim.LastTick,
			Villagers: villagerRows(sim.RunID, sim.Villagers()),
			Buildings: buildingRows(sim.RunID, sim.World.Buildings()),
			Resources: resourceRows(sim.RunID, sim.World.Resources()),
		}
	})
	return snap
}

func villagerRows(runID string, villagers []*agents.Villager) []VillagerRow {
	rows := make([]VillagerRow, 0, len(villagers))
	for _, v := range villagers {
		tasksJSON, _ := json.Marshal(v.Tasks)
		invJSON, _ := json.Marshal(v.Items)
		rows = append(rows, VillagerRow{
			ID: v.ID, RunID: runID, Name: v.Name, PosX: v.Pos.X, PosY: v.Pos.Y,
			Health: v.Health, Hunger: v.Hunger, Thirst: v.Thirst, Fatigue: v.Fatigue, BornAt: v.BornAt,
			Task: v.Current().Kind.String(), TasksJSON: string(tasksJSON), InventoryJSON: string(invJSON),
		})
	}
	return rows
}

func buildingRows(runID string, buildings []*world.Building) []BuildingRow {
	rows := make([]BuildingRow, 0, len(buildings))
	for _, b := range buildings {
		invJSON, _ := json.Marshal(b.Items)
		rows = append(rows, BuildingRow{
			ID: b.ID, RunID: runID, Type: b.Type.String(), X: b.X, Y: b.Y,
			Width: b.Width, Height: b.Height, InventoryJSON: string(invJSON),
		})
	}
	return rows
}

func resourceRows(runID string, resources []*world.Resource) []ResourceRow {
	rows := make([]ResourceRow, 0, len(resources))
	for _, r := range resources {
		harvestable := 0
		if r.Harvestable {
			harvestable = 1
		}
		rows = append(rows, ResourceRow{
			ID: r.ID, RunID: runID, Type: r.Type.String(), PosX: r.Pos.X, PosY: r.Pos.Y,
			Harvestable: harvestable, RespawnAt: r.RespawnAt, Items: r.Items.Count(),
		})
	}
	return rows
}

// replaceRows swaps the whole content of table for rows in one transaction.
func replaceRows[T any](db *DB, table, insert string, rows []T) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return err
	}
	for i := range rows {
		if _, err := tx.NamedExec(insert, rows[i]); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SaveVillagers writes all villagers to the database (full replace). The
// caller keeps the villagers from changing until it returns.
func (db *DB) SaveVillagers(runID string, villagers []*agents.Villager) error {
	return replaceRows(db, "villagers", insertVillager, villagerRows(runID, villagers))
}

// SaveBuildings writes all buildings to the database (full replace).
func (db *DB) SaveBuildings(runID string, buildings []*world.Building) error {
	return replaceRows(db, "buildings", insertBuilding, buildingRows(runID, buildings))
}

// SaveResources writes all resources to the database (full replace).
func (db *DB) SaveResources(runID string, resources []*world.Resource) error {
	return replaceRows(db, "resources", insertResource, resourceRows(runID, resources))
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		var meta any
		if len(e.Meta) > 0 {
			raw, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
			meta = string(raw)
		}
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, time, description, category, meta_json) VALUES (?, ?, ?, ?, ?, ?)",
			runID, e.Tick, e.Time, e.Description, e.Category, meta,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// StatsRow is one sample of the stats history.
type StatsRow struct {
	RunID      string  `db:"run_id" json:"run_id"`
	Tick       uint64  `db:"tick" json:"tick"`
	Time       uint64  `db:"time" json:"time"`
	Population int     `db:"population" json:"population"`
	Buildings  int     `db:"buildings" json:"buildings"`
	Resources  int     `db:"resources" json:"resources"`
	Items      int     `db:"items" json:"items"`
	Deaths     int     `db:"deaths" json:"deaths"`
	Births     int     `db:"births" json:"births"`
	AvgHealth  float64 `db:"avg_health" json:"avg_health"`
	AvgHunger  float64 `db:"avg_hunger" json:"avg_hunger"`
	AvgThirst  float64 `db:"avg_thirst" json:"avg_thirst"`
	AvgFatigue float64 `db:"avg_fatigue" json:"avg_fatigue"`
}

// SaveStats appends one stats sample.
func (db *DB) SaveStats(runID string, tick, now uint64, st engine.SimStats) error {
	row := StatsRow{
		RunID:      runID,
		Tick:       tick,
		Time:       now,
		Population: st.Population,
		Buildings:  st.Buildings,
		Resources:  st.Resources,
		Items:      st.Items,
		Deaths:     st.Deaths,
		Births:     st.Births,
		AvgHealth:  st.AvgHealth,
		AvgHunger:  st.AvgHunger,
		AvgThirst:  st.AvgThirst,
		AvgFatigue: st.AvgFatigue,
	}
	_, err := db.conn.NamedExec(`INSERT INTO stats_history
		(run_id, tick, time, population, buildings, resources, items, deaths, births,
		 avg_health, avg_hunger, avg_thirst, avg_fatigue)
		VALUES (:run_id, :tick, :time, :population, :buildings, :resources, :items, :deaths, :births,
		 :avg_health, :avg_hunger, :avg_thirst, :avg_fatigue)`, row)
	if err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}
	return nil
}

// LoadStatsHistory returns up to limit samples with tick in [from, to], oldest first.
func (db *DB) LoadStatsHistory(from, to uint64, limit int) ([]StatsRow, error) {
	var rows []StatsRow
	err := db.conn.Select(&rows, `SELECT run_id, tick, time, population, buildings, resources, items,
		deaths, births, avg_health, avg_hunger, avg_thirst, avg_fatigue
		FROM stats_history WHERE tick >= ? AND tick <= ? ORDER BY tick ASC LIMIT ?`,
		from, to, limit,
	)
	return rows, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveSnapshot writes the observation tables, the pending events and the
// last tick for a simulation. Rows are copied under the read lock and
// written after it is released, so ticks keep running during the I/O.
func (db *DB) SaveSnapshot(sim *engine.Simulation) error {
	snap := CaptureSnapshot(sim)
	if err := db.WriteSnapshot(snap); err != nil {
		return err
	}
	if err := db.SaveEvents(snap.RunID, sim.DrainEvents()); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	slog.Info("snapshot saved",
		"villagers", len(snap.Villagers),
		"buildings", len(snap.Buildings),
		"resources", len(snap.Resources),
		"tick", snap.Tick,
	)
	return nil
}

// WriteSnapshot stores a captured snapshot and its tick.
func (db *DB) WriteSnapshot(snap Snapshot) error {
	if err := replaceRows(db, "villagers", insertVillager, snap.Villagers); err != nil {
		return fmt.Errorf("save villagers: %w", err)
	}
	if err := replaceRows(db, "buildings", insertBuilding, snap.Buildings); err != nil {
		return fmt.Errorf("save buildings: %w", err)
	}
	if err := replaceRows(db, "resources", insertResource, snap.Resources); err != nil {
		return fmt.Errorf("save resources: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(snap.Tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// EventRow is an event as stored.
type EventRow struct {
	RunID       string  `db:"run_id" json:"run_id"`
	Tick        uint64  `db:"tick" json:"tick"`
	Time        uint64  `db:"time" json:"time"`
	Description string  `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	Meta        *string `db:"meta_json" json:"meta,omitempty"`
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var events []EventRow
	err := db.conn.Select(&events,
		"SELECT run_id, tick, time, description, category, meta_json FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
