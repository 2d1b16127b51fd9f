// Package backoff computes retry wait durations: exponential growth with a
// cap and symmetric jitter. Policies are stateless; Delay is a pure function
// of the attempt index and the policy's fields.
package backoff

import (
	"math/rand"
	"time"
)

// Policy describes an exponential backoff curve. The zero value is not
// usable; construct with New or fill every field.
type Policy struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64 // fraction in [0,1]; 0.1 means ±10%

	// Rand overrides the jitter source; nil uses math/rand/v2. Tests inject
	// a deterministic source here.
	Rand func() float64
}

// New returns a Policy with the conventional multiplier (2.0) and jitter
// fraction (0.10).
func New(base, max time.Duration) *Policy {
	return &Policy{
		Base:       base,
		Max:        max,
		Multiplier: 2.0,
		Jitter:     0.10,
	}
}

// Delay returns the wait before retry number attempt (0-indexed). The raw
// delay is min(Base * Multiplier^attempt, Max); symmetric jitter of
// ±raw*Jitter is applied and the result clamped to be non-negative. Output
// never exceeds Max * (1 + Jitter).
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Cap the exponent to keep the float math out of overflow territory.
	if attempt > 30 {
		attempt = 30
	}

	raw := time.Duration(float64(p.Base) * pow(p.Multiplier, attempt))
	if raw < 0 || raw > p.Max {
		raw = p.Max
	}

	jitter := clampJitter(p.Jitter)
	if jitter == 0 {
		return raw
	}

	random := rand.Float64
	if p.Rand != nil {
		random = p.Rand
	}

	// Random value in [-raw*jitter, +raw*jitter].
	offset := (random()*2 - 1) * float64(raw) * jitter
	d := time.Duration(float64(raw) + offset)
	if d < 0 {
		return 0
	}
	return d
}

// Reset is a no-op: the policy keeps no state across calls. Retained for
// symmetry with stateful backoff designs.
func (p *Policy) Reset() {}

// clampJitter ensures jitter is within valid bounds [0, 1].
func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

// pow calculates base^exponent using integer exponentiation.
func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}
