// Package entropy provides the single random source a simulation draws from.
// Everything stochastic (idle rolls, jitter, spawns, respawns, wandering) goes
// through one Rand so that a seed reproduces a run.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the minimal generator a Rand needs. *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Rand wraps a Source with the draws the simulation uses.
type Rand struct {
	src Source
}

// New returns a Rand seeded deterministically.
func New(seed int64) *Rand {
	return &Rand{src: mrand.New(mrand.NewSource(seed))}
}

// FromSource wraps an arbitrary source, e.g. a Script in tests.
func FromSource(src Source) *Rand {
	return &Rand{src: src}
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.src.Intn(n)
}

// Between returns a value in [lo, hi], inclusive on both ends.
func (r *Rand) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Roll returns a uniform percentile roll in 1..100.
func (r *Rand) Roll() int {
	return r.Between(1, 100)
}

// Percent reports true with probability p/100.
func (r *Rand) Percent(p int) bool {
	return r.Roll() <= p
}

// OneIn reports true with probability 1/n.
func (r *Rand) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return r.Intn(n) == 0
}

// Pick returns an index into weights chosen proportionally to its weight.
// Non-positive weights are never chosen; an all-zero table returns 0.
func (r *Rand) Pick(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	n := r.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}

// CryptoSeed returns a seed from crypto/rand, used when no seed is configured.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
