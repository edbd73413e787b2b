package engine

import (
	"log/slog"
	"sync"
)

const (
	maxEvents     = 1000
	maxPending    = 1000 // Undrained events kept for persistence
	subscriberBuf = 64
)

// Event is a notable occurrence in the village.
type Event struct {
	Tick        uint64         `json:"tick"`
	Time        uint64         `json:"time"` // Sim ms
	Description string         `json:"description"`
	Category    string         `json:"category"` // "death", "birth", "building", "respawn", "intervention"
	Meta        map[string]any `json:"meta,omitempty"`
}

// eventBus fans events out to subscribers. Slow subscribers miss events
// rather than block the tick.
type eventBus struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan Event
	dropped uint64
}

func (b *eventBus) subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]chan Event)
	}
	b.nextID++
	ch := make(chan Event, subscriberBuf)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

func (b *eventBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *eventBus) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
			slog.Debug("event dropped for slow subscriber", "sub_id", id, "category", e.Category)
		}
	}
}

// EmitEvent records an event in the recent-events ring, queues it for
// persistence and publishes it to subscribers. Callers hold the write lock.
// Without a drainer the queue keeps only the newest maxPending events.
func (s *Simulation) EmitEvent(e Event) {
	if e.Tick == 0 {
		e.Tick = s.LastTick
	}
	if e.Time == 0 {
		e.Time = s.Now
	}
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
	s.pending = append(s.pending, e)
	if len(s.pending) > maxPending {
		s.pending = s.pending[len(s.pending)-maxPending:]
	}
	s.bus.publish(e)
}

// Subscribe returns a channel of future events and an id for Unsubscribe.
func (s *Simulation) Subscribe() (int, <-chan Event) {
	return s.bus.subscribe()
}

// Unsubscribe closes a subscription.
func (s *Simulation) Unsubscribe(id int) {
	s.bus.unsubscribe(id)
}

// DrainEvents returns and clears events emitted since the last drain.
func (s *Simulation) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// RecentEvents returns up to limit of the newest events, oldest first.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.Events) > limit {
		start = len(s.Events) - limit
	}
	out := make([]Event, len(s.Events)-start)
	copy(out, s.Events[start:])
	return out
}
