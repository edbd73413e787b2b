// Package gardener implements the village steward. It observes the village
// through the public API, triages its health with fixed rules, and acts
// through the admin intervention endpoint.
package gardener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status    Status         `json:"status"`
	Buildings []BuildingInfo `json:"buildings"`
	Resources []ResourceInfo `json:"resources"`
	Map       MapInfo        `json:"map"`
	History   []StatsRow     `json:"history"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Name        string  `json:"name"`
	RunID       string  `json:"run_id"`
	Tick        uint64  `json:"tick"`
	SimTime     string  `json:"sim_time"`
	Speed       float64 `json:"speed"`
	Running     bool    `json:"running"`
	Population  int     `json:"population"`
	Buildings   int     `json:"buildings"`
	Resources   int     `json:"resources"`
	Harvestable int     `json:"harvestable"`
	Deaths      int     `json:"deaths"`
	Births      int     `json:"births"`
	AvgHealth   float64 `json:"avg_health"`
	AvgHunger   float64 `json:"avg_hunger"`
	AvgThirst   float64 `json:"avg_thirst"`
	AvgFatigue  float64 `json:"avg_fatigue"`
}

// BuildingInfo mirrors items from GET /api/v1/buildings.
type BuildingInfo struct {
	ID    uint64         `json:"id"`
	Type  string         `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Door  Tile           `json:"door"`
	Items map[string]int `json:"items"`
}

// ResourceInfo mirrors items from GET /api/v1/resources.
type ResourceInfo struct {
	ID          uint64 `json:"id"`
	Type        string `json:"type"`
	Tile        Tile   `json:"tile"`
	Items       int    `json:"items"`
	Harvestable bool   `json:"harvestable"`
}

// MapInfo mirrors GET /api/v1/map.
type MapInfo struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// Tile is a grid coordinate.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StatsRow mirrors items from GET /api/v1/stats/history (oldest first).
type StatsRow struct {
	Tick       uint64  `json:"tick"`
	Population int     `json:"population"`
	Deaths     int     `json:"deaths"`
	Births     int     `json:"births"`
	AvgHealth  float64 `json:"avg_health"`
	AvgHunger  float64 `json:"avg_hunger"`
	AvgThirst  float64 `json:"avg_thirst"`
}

// Observer fetches village state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches every endpoint the steward needs. Stats history is
// optional since the village may run without a database.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/buildings", &snap.Buildings); err != nil {
		return nil, fmt.Errorf("fetch buildings: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/resources", &snap.Resources); err != nil {
		return nil, fmt.Errorf("fetch resources: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/map", &snap.Map); err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/stats/history?limit=10", &snap.History); err != nil {
		snap.History = nil
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
