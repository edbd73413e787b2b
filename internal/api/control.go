package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Netflux/Villa/internal/engine"
)

const (
	maxSpeed         = 1000
	maxStepTicks     = 10000
	maxSpawnCount    = 50
	maxProvisionQty  = 200
	maxResourceItems = 50
)

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > maxSpeed {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleStep advances a paused engine by a number of ticks.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Ticks int `json:"ticks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Ticks <= 0 || req.Ticks > maxStepTicks {
		http.Error(w, "ticks must be 1-10000", http.StatusBadRequest)
		return
	}
	if s.Eng.Running() && s.Eng.Speed() > 0 {
		http.Error(w, "pause the engine (speed 0) before stepping", http.StatusConflict)
		return
	}

	s.Eng.Step(req.Ticks)
	writeJSON(w, map[string]any{"tick": s.Eng.Tick()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveSnapshot(s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    s.Eng.Tick(),
		"message": "snapshot saved",
	})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type        string `json:"type"`
		Description string `json:"description,omitempty"`
		Category    string `json:"category,omitempty"`
		Count       int    `json:"count,omitempty"`
		BuildingID  uint64 `json:"building_id,omitempty"`
		Good        string `json:"good,omitempty"`
		Quantity    int    `json:"quantity,omitempty"`
		Kind        string `json:"kind,omitempty"`
		X           int    `json:"x"`
		Y           int    `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var (
		desc string
		err  error
	)
	switch req.Type {
	case "event":
		if req.Description == "" {
			http.Error(w, "description required for event type", http.StatusBadRequest)
			return
		}
		cat := req.Category
		if cat == "" {
			cat = "intervention"
		}
		s.Sim.Update(func() {
			s.Sim.EmitEvent(engine.Event{Description: req.Description, Category: cat})
		})
		desc = "event injected"

	case "spawn":
		if req.Count <= 0 || req.Count > maxSpawnCount {
			http.Error(w, "count must be 1-50 for spawn type", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.SpawnVillagers(req.Count)

	case "provision":
		if req.BuildingID == 0 || req.Good == "" || req.Quantity <= 0 {
			http.Error(w, "building_id, good, and quantity required for provision type", http.StatusBadRequest)
			return
		}
		if req.Quantity > maxProvisionQty {
			http.Error(w, "max 200 items per provision", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.ProvisionBuilding(req.BuildingID, req.Good, req.Quantity)

	case "resource":
		if req.Kind == "" || req.Quantity <= 0 || req.Quantity > maxResourceItems {
			http.Error(w, "kind and quantity 1-50 required for resource type", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.PlaceResource(req.Kind, req.X, req.Y, req.Quantity)

	case "building":
		if req.Kind == "" {
			http.Error(w, "kind required for building type", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.PlaceBuilding(req.Kind, req.X, req.Y)

	default:
		http.Error(w, "unknown intervention type (use: event, spawn, provision, resource, building)", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": desc})
}
