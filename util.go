package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"

	"github.com/google/uuid"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateUUID returns a random UUID v4 string, used for session IDs
func GenerateUUID() string {
	return uuid.NewString()
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// LerpAngle interpolates between two angles taking the short path
func LerpAngle(from, to, t float64) float64 {
	diff := NormalizeAngle(to - from)
	return from + diff*t
}

// round1 rounds to one decimal place to shrink broadcast payloads
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Rand is a seedable xorshift generator. Each World owns one so two worlds
// advanced with equal seeds and equal steps produce identical trajectories.
type Rand struct {
	state uint64
}

// NewRand creates a generator from a seed. Zero is remapped because xorshift
// cannot leave the zero state.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &Rand{state: seed}
}

// RandomSeed draws a seed from crypto/rand
func RandomSeed() uint64 {
	b := make([]byte, 8)
	rand.Read(b)
	var s uint64
	for i, v := range b {
		s |= uint64(v) << (uint(i) * 8)
	}
	return s
}

// NewSeededRand creates a generator seeded from crypto/rand
func NewSeededRand() *Rand {
	return NewRand(RandomSeed())
}

func (r *Rand) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}

// Float64 returns a value in [0, 1)
func (r *Rand) Float64() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}

// Range returns a value in [min, max)
func (r *Rand) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// Intn returns a value in [0, n)
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}
