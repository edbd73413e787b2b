// Command villa runs the autonomous village simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Netflux/Villa/internal/api"
	"github.com/Netflux/Villa/internal/config"
	"github.com/Netflux/Villa/internal/engine"
	"github.com/Netflux/Villa/internal/entropy"
	"github.com/Netflux/Villa/internal/persistence"
	"github.com/Netflux/Villa/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML tuning file (defaults apply when empty)")
		seed       = flag.Int64("seed", 0, "world seed (0 picks a random one)")
		dbPath     = flag.String("db", "data/villa.db", "SQLite chronicle path (empty disables)")
		tracePath  = flag.String("trace", "", "zstd JSONL trace path (empty disables)")
		apiPort    = flag.Int("port", 8080, "HTTP API port (0 disables)")
		villagers  = flag.Int("villagers", 0, "starting villagers (0 keeps the tuning value)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Villa: autonomous village simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	tuning := config.Default()
	if *configPath != "" {
		var err error
		tuning, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", *configPath)
	}
	if *villagers > 0 {
		tuning.World.Villagers = *villagers
	}
	if *seed == 0 {
		*seed = entropy.CryptoSeed()
	}

	// ── World ─────────────────────────────────────────────────────────
	rng := entropy.New(*seed)
	cfg := genConfig(tuning, *seed)

	var w *world.World
	switch tuning.World.Generator {
	case "rings":
		w = world.GenerateRings(cfg, rng)
	default:
		w = world.Generate(cfg, rng)
	}
	for t, c := range world.TileCounts(w) {
		slog.Info("terrain", "type", t.String(), "count", c)
	}

	hall, points := world.PlaceVillage(w, rng, tuning.World.Villagers)
	if hall == nil {
		slog.Error("no room for a town hall; try another seed", "seed", *seed)
		os.Exit(1)
	}

	sim := engine.NewSimulation(w, tuning, rng)
	sim.Populate(points)
	slog.Info("village founded",
		"run_id", sim.RunID,
		"seed", *seed,
		"world", w.String(),
		"villagers", len(points),
		"town_hall", fmt.Sprintf("(%d,%d)", hall.X, hall.Y),
	)

	// ── Chronicle ─────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
			slog.Error("failed to create data dir", "error", err)
			os.Exit(1)
		}
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)

		for k, v := range map[string]string{
			"run_id":     sim.RunID,
			"seed":       strconv.FormatInt(*seed, 10),
			"generator":  tuning.World.Generator,
			"started_at": time.Now().UTC().Format(time.RFC3339),
		} {
			if err := db.SaveMeta(k, v); err != nil {
				slog.Error("save meta failed", "key", k, "error", err)
			}
		}
	}

	var trace *persistence.TraceWriter
	if *tracePath != "" {
		var err error
		trace, err = persistence.NewTraceWriter(*tracePath)
		if err != nil {
			slog.Error("failed to open trace", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := trace.Close(); err != nil {
				slog.Error("trace close failed", "error", err)
			}
		}()
		slog.Info("trace enabled", "path", *tracePath)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(tuning.TickRateHz)

	eng.OnTick = func(uint64) { sim.Think() }
	eng.OnSecond = func(tick uint64) {
		sim.TickSecond(tick)
		if trace != nil {
			if err := trace.Write(sim.Trace()); err != nil {
				slog.Error("trace write failed", "error", err)
			}
		}
		if db != nil {
			if err := db.SaveEvents(sim.RunID, sim.DrainEvents()); err != nil {
				slog.Error("event save failed", "error", err)
			}
		}
	}
	eng.OnMinute = func(tick uint64) {
		sim.TickMinute(tick)
		if db == nil {
			return
		}
		var now uint64
		sim.View(func() { now = sim.Now })
		if err := db.SaveStats(sim.RunID, tick, now, sim.Snapshot()); err != nil {
			slog.Error("stats save failed", "error", err)
		}
		if err := db.SaveSnapshot(sim); err != nil {
			slog.Error("snapshot failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if *apiPort > 0 {
		adminKey := os.Getenv("VILLA_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("VILLA_ADMIN_KEY not set; admin POST endpoints will be disabled")
		}
		apiServer = &api.Server{
			Sim:      sim,
			Eng:      eng,
			DB:       db,
			Port:     *apiPort,
			AdminKey: adminKey,
			RelayKey: os.Getenv("VILLA_RELAY_KEY"),
		}
		apiServer.Start()
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nVilla is alive: %d villagers around a town hall on a %dx%d map.\n",
		len(points), w.Width(), w.Height())
	if apiServer != nil {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown failed", "error", err)
		}
		cancel()
	}

	if db != nil {
		slog.Info("final save...")
		if err := db.SaveSnapshot(sim); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}

	st := sim.Snapshot()
	fmt.Printf("Simulation stopped after %s ticks: %d alive, %d deaths, %d births.\n",
		humanize.Comma(int64(eng.Tick())), st.Population, st.Deaths, st.Births)
}

// genConfig maps tuning onto the terrain generator.
func genConfig(t config.Tuning, seed int64) world.GenConfig {
	cfg := world.DefaultGenConfig()
	cfg.Width = t.GridWidth
	cfg.Height = t.GridHeight
	cfg.TileSize = t.TileSize
	cfg.Seed = seed
	cfg.Trees = t.World.Trees
	cfg.Food = t.World.Food
	cfg.Stone = t.World.Stone
	cfg.Ore = t.World.Ore
	cfg.Water = t.World.Water
	cfg.MinItems = t.Respawn.MinItems
	cfg.MaxItems = t.Respawn.MaxItems
	return cfg
}
