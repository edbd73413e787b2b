package gardener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// InterventionResult is the response from POST /api/v1/intervention.
type InterventionResult struct {
	Success bool   `json:"success"`
	Details string `json:"details"`
}

// Actor executes interventions via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends an intervention to POST /api/v1/intervention.
func (a *Actor) Act(ctx context.Context, iv *Intervention) (*InterventionResult, error) {
	body, err := json.Marshal(iv)
	if err != nil {
		return nil, fmt.Errorf("marshal intervention: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/v1/intervention", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST intervention: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intervention failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result InterventionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Steward runs observe, triage, decide and act cycles.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
}

// Cycle executes one observe → decide → act pass and records it.
func (s *Steward) Cycle(ctx context.Context) (*Decision, error) {
	snap, err := s.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	h := Triage(snap)
	slog.Info("observation complete",
		"tick", snap.Status.Tick,
		"population", snap.Status.Population,
		"crisis", h.CrisisLevel,
		"food_stored", h.FoodStored,
		"water_stored", h.WaterStored,
	)

	d := Decide(snap, h, s.Memory)
	ratio := h.DeathBirthRatio
	if math.IsInf(ratio, 1) {
		ratio = -1 // JSON has no infinity; births stalled
	}
	rec := CycleRecord{
		Tick:        snap.Status.Tick,
		Action:      d.Action,
		DeathBirth:  ratio,
		CrisisLevel: h.CrisisLevel,
		Rationale:   d.Rationale,
	}
	defer func() {
		if s.Memory != nil {
			s.Memory.Record(rec)
		}
	}()

	if d.Intervention == nil {
		slog.Info("gardener cycle complete, no intervention", "rationale", d.Rationale)
		return d, nil
	}

	d.Intervention.Category = "gardener"
	res, err := s.Actor.Act(ctx, d.Intervention)
	if err != nil {
		rec.Action = "failed_" + d.Action
		return d, fmt.Errorf("act: %w", err)
	}
	rec.Details = res.Details
	slog.Info("intervention executed", "type", d.Intervention.Type, "details", res.Details)
	return d, nil
}
