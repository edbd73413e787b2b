package gardener

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const (
	maxRecords     = 20
	cooldownCycles = 3
)

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Tick        uint64  `json:"tick"`
	Action      string  `json:"action"`
	DeathBirth  float64 `json:"death_birth_ratio"`
	CrisisLevel string  `json:"crisis_level"`
	Rationale   string  `json:"rationale,omitempty"`
	Details     string  `json:"details,omitempty"`
}

// CycleMemory is a ring of recent cycle records, persisted as JSON.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file. Returns empty memory if it is missing
// or unreadable.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("gardener memory corrupted, starting fresh", "error", err)
		return &CycleMemory{}
	}
	return &mem
}

// Save writes the memory to path.
func (m *CycleMemory) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gardener memory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write gardener memory: %w", err)
	}
	return nil
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// RecentlyDid reports whether action was taken in the last n cycles.
func (m *CycleMemory) RecentlyDid(action string, n int) bool {
	start := len(m.Records) - n
	if start < 0 {
		start = 0
	}
	for _, r := range m.Records[start:] {
		if r.Action == action {
			return true
		}
	}
	return false
}
