// Package api provides the HTTP API for observing the village.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Netflux/Villa/internal/agents"
	"github.com/Netflux/Villa/internal/engine"
	"github.com/Netflux/Villa/internal/persistence"
	"github.com/Netflux/Villa/internal/world"
)

const (
	maxStreamConns = 4
	catchUpEvents  = 50
)

// Server serves the village state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; history and snapshot endpoints need it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	RelayKey string // Bearer token for streams. Empty = streams are public.

	streams  connCounter
	upgrader websocket.Upgrader

	interventionLimiter *RateLimiter
	streamLimiter       *RateLimiter

	srv *http.Server
}

// Handler builds the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	if s.interventionLimiter == nil {
		s.interventionLimiter = NewRateLimiter(60, time.Minute)
	}
	if s.streamLimiter == nil {
		s.streamLimiter = NewRateLimiter(10, time.Minute)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/villagers", s.handleVillagers)
	mux.HandleFunc("/api/v1/villager/", s.handleVillagerDetail)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/resources", s.handleResources)
	mux.HandleFunc("/api/v1/map", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/map/", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)

	// Streams: SSE for simple relays, websocket for interactive observers.
	mux.HandleFunc("/api/v1/events/stream", s.handleSSE)
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(s.streamLimiter, s.handleWS))

	// Admin endpoints.
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(RateLimitMiddleware(s.interventionLimiter, s.handleIntervention)))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "relay_auth", s.RelayKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CORS_ORIGINS is a comma-separated list; localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no VILLA_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !bearer(r, s.AdminKey) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Sim.View(func() {
		st := s.Sim.Stats
		status = map[string]any{
			"name":        "Villa",
			"run_id":      s.Sim.RunID,
			"tick":        s.Sim.LastTick,
			"sim_time":    engine.SimTime(s.Sim.Now),
			"speed":       s.Eng.Speed(),
			"running":     s.Eng.Running(),
			"world":       map[string]int{"width": s.Sim.World.Width(), "height": s.Sim.World.Height(), "tile_size": s.Sim.World.TileSize()},
			"population":  st.Population,
			"buildings":   st.Buildings,
			"resources":   st.Resources,
			"harvestable": st.Harvest,
			"deaths":      st.Deaths,
			"births":      st.Births,
			"avg_health":  st.AvgHealth,
			"avg_hunger":  st.AvgHunger,
			"avg_thirst":  st.AvgThirst,
			"avg_fatigue": st.AvgFatigue,
		}
	})
	writeJSON(w, status)
}

type villagerSummary struct {
	ID      uint64         `json:"id"`
	Name    string         `json:"name"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Task    string         `json:"task"`
	Health  int            `json:"health"`
	Hunger  int            `json:"hunger"`
	Thirst  int            `json:"thirst"`
	Fatigue int            `json:"fatigue"`
	Items   map[string]int `json:"items"`
}

func summarize(v *agents.Villager) villagerSummary {
	return villagerSummary{
		ID:      v.ID,
		Name:    v.Name,
		X:       v.Pos.X,
		Y:       v.Pos.Y,
		Task:    v.Current().Kind.String(),
		Health:  v.Health,
		Hunger:  v.Hunger,
		Thirst:  v.Thirst,
		Fatigue: v.Fatigue,
		Items:   v.Items.Summary(),
	}
}

// handleVillagers lists living villagers. ?task=harvest filters by current task.
func (s *Server) handleVillagers(w http.ResponseWriter, r *http.Request) {
	task := r.URL.Query().Get("task")
	out := []villagerSummary{}
	s.Sim.View(func() {
		for _, v := range s.Sim.Villagers() {
			if task != "" && v.Current().Kind.String() != task {
				continue
			}
			out = append(out, summarize(v))
		}
	})
	writeJSON(w, out)
}

// handleVillagerDetail serves GET /api/v1/villager/{id} with the full task stack.
func (s *Server) handleVillagerDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/api/v1/villager/"), 10, 64)
	if err != nil {
		http.Error(w, "invalid villager id", http.StatusBadRequest)
		return
	}

	var body []byte
	s.Sim.View(func() {
		v, ok := s.Sim.Villager(id)
		if !ok {
			return
		}
		body, err = json.Marshal(map[string]any{
			"villager": v,
			"summary":  summarize(v),
			"tile":     s.Sim.World.ToGrid(v.Pos),
		})
	})
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	if body == nil {
		http.Error(w, "villager not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	type buildingEntry struct {
		ID     uint64         `json:"id"`
		Type   string         `json:"type"`
		X      int            `json:"x"`
		Y      int            `json:"y"`
		Width  int            `json:"width"`
		Height int            `json:"height"`
		Door   world.Coord    `json:"door"`
		Items  map[string]int `json:"items"`
	}

	out := []buildingEntry{}
	s.Sim.View(func() {
		for _, b := range s.Sim.World.Buildings() {
			out = append(out, buildingEntry{
				ID:     b.ID,
				Type:   b.Type.String(),
				X:      b.X,
				Y:      b.Y,
				Width:  b.Width,
				Height: b.Height,
				Door:   b.DoorTile(),
				Items:  b.Items.Summary(),
			})
		}
	})
	writeJSON(w, out)
}

type resourceEntry struct {
	ID          uint64      `json:"id"`
	Type        string      `json:"type"`
	Tile        world.Coord `json:"tile"`
	Items       int         `json:"items"`
	Harvestable bool        `json:"harvestable"`
	RespawnAt   uint64      `json:"respawn_at,omitempty"`
}

// handleResources lists resources. ?type=tree filters by kind.
func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	out := []resourceEntry{}
	s.Sim.View(func() {
		for _, res := range s.Sim.World.Resources() {
			if kind != "" && res.Type.String() != kind {
				continue
			}
			out = append(out, resourceEntry{
				ID:          res.ID,
				Type:        res.Type.String(),
				Tile:        s.Sim.World.ToGrid(res.Pos),
				Items:       res.Items.Count(),
				Harvestable: res.Harvestable,
				RespawnAt:   res.RespawnAt,
			})
		}
	})
	writeJSON(w, out)
}

// handleMapRoutes dispatches between the bulk map (GET /api/v1/map) and tile
// detail (GET /api/v1/map/{x}/{y}).
func (s *Server) handleMapRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/map")
	if path == "" || path == "/" {
		s.handleBulkMap(w, r)
		return
	}
	s.handleTileDetail(w, r, strings.Trim(path, "/"))
}

var tileGlyphs = map[world.TileType]byte{
	world.TileWater: '~',
	world.TileDirt:  '.',
	world.TileGrass: ',',
	world.TileSand:  ':',
}

// handleBulkMap returns one string per row. Roads are '#' and building
// footprints 'B'; other glyphs follow the legend.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.Sim.View(func() {
		wd, ht := s.Sim.World.Width(), s.Sim.World.Height()
		grid := make([][]byte, ht)
		for y := 0; y < ht; y++ {
			row := make([]byte, wd)
			for x := 0; x < wd; x++ {
				t, _ := s.Sim.World.TileAt(x, y)
				row[x] = tileGlyphs[t.Type]
				if t.Road {
					row[x] = '#'
				}
			}
			grid[y] = row
		}
		for _, b := range s.Sim.World.Buildings() {
			for _, c := range b.Footprint() {
				if s.Sim.World.InBounds(c) {
					grid[c.Y][c.X] = 'B'
				}
			}
		}
		rows := make([]string, ht)
		for y := range grid {
			rows[y] = string(grid[y])
		}
		resp = map[string]any{
			"width":     wd,
			"height":    ht,
			"tile_size": s.Sim.World.TileSize(),
			"rows":      rows,
			"legend": map[string]string{
				"~": "water", ".": "dirt", ",": "grass", ":": "sand", "#": "road", "B": "building",
			},
		}
	})
	writeJSON(w, resp)
}

func (s *Server) handleTileDetail(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.Error(w, "expected /api/v1/map/{x}/{y}", http.StatusBadRequest)
		return
	}
	x, errX := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	var resp map[string]any
	s.Sim.View(func() {
		t, ok := s.Sim.World.TileAt(x, y)
		if !ok {
			return
		}
		c := world.Coord{X: x, Y: y}
		res := []resourceEntry{}
		for _, rr := range s.Sim.World.Resources() {
			if s.Sim.World.ToGrid(rr.Pos) == c {
				res = append(res, resourceEntry{
					ID: rr.ID, Type: rr.Type.String(), Tile: c,
					Items: rr.Items.Count(), Harvestable: rr.Harvestable, RespawnAt: rr.RespawnAt,
				})
			}
		}
		var building *uint64
		for _, b := range s.Sim.World.Buildings() {
			for _, fc := range b.Footprint() {
				if fc == c {
					id := b.ID
					building = &id
				}
			}
		}
		var villagers []uint64
		for _, v := range s.Sim.Villagers() {
			if s.Sim.World.ToGrid(v.Pos) == c {
				villagers = append(villagers, v.ID)
			}
		}
		resp = map[string]any{
			"x":           x,
			"y":           y,
			"type":        t.Type.String(),
			"walkable":    t.Walkable,
			"road":        t.Road,
			"resources":   res,
			"building_id": building,
			"villagers":   villagers,
		}
	})
	if resp == nil {
		http.Error(w, "tile out of bounds", http.StatusNotFound)
		return
	}
	writeJSON(w, resp)
}

// handleEvents returns recent in-memory events. ?category= filters, ?limit= caps.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Sim.RecentEvents(0)
	if cat := r.URL.Query().Get("category"); cat != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == cat {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := events[start:]
	if out == nil {
		out = []engine.Event{}
	}
	writeJSON(w, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	fromTick := uint64(0)
	toTick := uint64(1<<63 - 1) // Max int64; SQLite integers are signed.
	limit := 30

	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.ParseUint(f, 10, 64); err == nil {
			fromTick = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.ParseUint(t, 10, 64); err == nil && v < toTick {
			toTick = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	rows, err := s.DB.LoadStatsHistory(fromTick, toTick, limit)
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		writeJSON(w, []persistence.StatsRow{})
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write json failed", "error", err)
	}
}
