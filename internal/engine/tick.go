// Package engine provides the fixed-timestep simulation loop and the
// simulation that decides and executes villager work each tick.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward at a fixed tick rate scaled by a
// speed multiplier. Tick, speed and running state are safe to read from
// other goroutines.
type Engine struct {
	Rate     int           // Ticks per real second at speed 1
	Interval time.Duration // Base tick interval, derived from Rate

	tick    atomic.Uint64
	speed   atomic.Uint64 // math.Float64bits
	running atomic.Bool
	stop    chan struct{}

	stepMu sync.Mutex // Run and Step never advance a tick concurrently

	// Callbacks for each tick layer, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnSecond func(tick uint64) // Every Rate ticks
	OnMinute func(tick uint64) // Every 60·Rate ticks
}

// NewEngine creates an engine ticking rate times per second at speed 1.
func NewEngine(rate int) *Engine {
	if rate <= 0 {
		rate = 60
	}
	e := &Engine{
		Rate:     rate,
		Interval: time.Second / time.Duration(rate),
		stop:     make(chan struct{}),
	}
	e.SetSpeed(1)
	return e
}

// Tick returns the number of ticks processed.
func (e *Engine) Tick() uint64 {
	return e.tick.Load()
}

// SetTick sets the tick counter, used before Run.
func (e *Engine) SetTick(t uint64) {
	e.tick.Store(t)
}

// Speed returns the current multiplier: 1.0 is real time, 0 is paused.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the multiplier. Negative values pause.
func (e *Engine) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	e.speed.Store(math.Float64bits(v))
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until Stop is called or ctx ends.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed(), "rate", e.Rate)

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Tick(), "reason", ctx.Err())
			return
		case <-e.stop:
			slog.Info("simulation engine stopped", "tick", e.Tick())
			return
		default:
		}

		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

// Stop halts the simulation loop. Safe to call more than once.
func (e *Engine) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// Step advances the simulation by n ticks without sleeping.
func (e *Engine) Step(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the simulation by one tick. Callbacks for one tick finish
// before the next tick starts.
func (e *Engine) step() {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	t := e.tick.Add(1)

	if e.OnTick != nil {
		e.OnTick(t)
	}
	perSecond := uint64(e.Rate)
	if t%perSecond == 0 && e.OnSecond != nil {
		e.OnSecond(t)
	}
	if t%(perSecond*60) == 0 && e.OnMinute != nil {
		e.OnMinute(t)
	}
}

// SimTime formats simulated milliseconds as a clock reading.
func SimTime(ms uint64) string {
	total := ms / 1000
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := total / 3600
	days := hours/24 + 1
	return fmt.Sprintf("Day %d, %02d:%02d:%02d", days, hours%24, minutes, seconds)
}
