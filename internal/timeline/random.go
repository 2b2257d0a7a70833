package timeline

import "math/rand/v2"

// Source yields uniform draws in [0, 1].
type Source interface {
	Float64() float64
}

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// LCG is the linear congruential generator used for reproducible runs:
// state = (1103515245*state + 12345) mod 2^31, output state/(2^31-1).
type LCG struct {
	state int64
}

// NewLCG seeds a generator. Negative seeds are folded into [0, 2^31).
func NewLCG(seed int64) *LCG {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &LCG{state: s}
}

// Float64 advances the generator and returns the next draw.
func (g *LCG) Float64() float64 {
	g.state = (lcgMultiplier*g.state + lcgIncrement) % lcgModulus
	return float64(g.state) / float64(lcgModulus-1)
}

type systemSource struct{}

func (systemSource) Float64() float64 { return rand.Float64() }

// Randomizer hands out draw sources for one generation run. A seeded
// randomizer keys every source by seed+callCount so draws are reproducible
// and independent of each other; an unseeded one uses the process source.
type Randomizer struct {
	seed   int64
	seeded bool
	calls  int64
}

// NewRandomizer returns a seeded randomizer when seed is non-nil.
func NewRandomizer(seed *int64) *Randomizer {
	if seed == nil {
		return &Randomizer{}
	}
	return &Randomizer{seed: *seed, seeded: true}
}

// Seed returns the base seed, or nil for an unseeded run.
func (r *Randomizer) Seed() *int64 {
	if !r.seeded {
		return nil
	}
	s := r.seed
	return &s
}

// Keyed returns a source derived from seed+callCount.
func (r *Randomizer) Keyed(callCount int64) Source {
	if !r.seeded {
		return systemSource{}
	}
	return NewLCG(r.seed + callCount)
}

// Next returns a fresh keyed source from the internal call counter. The
// counter lives in its own range so it does not collide with repeat keys.
func (r *Randomizer) Next() Source {
	r.calls++
	return r.Keyed(drawKeyBase + r.calls)
}

const drawKeyBase = 1 << 24

// drawInt returns an inclusive integer in [min, max].
func drawInt(src Source, min, max int) int {
	if max <= min {
		return min
	}
	n := min + int(src.Float64()*float64(max-min+1))
	if n > max {
		n = max
	}
	return n
}
