// Package randutil derives reproducible random streams from a single seed.
//
// Every trial gets its own seed derived from the run's master seed, and
// every agent gets its own stream derived from the trial seed, so no
// random state is shared between agents or between concurrently running
// trials.
package randutil

import (
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns the seed of sub-stream i of seed. Distinct (seed, i)
// pairs give well separated seeds, and the result does not depend on how
// many other streams were derived before it.
func Derive(seed int64, i int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(i)+1)*goldenRatio64))
}

// Stream is shorthand for New(Derive(seed, i)).
func Stream(seed int64, i int) *rand.Rand {
	return New(Derive(seed, i))
}

// NewReader returns a deterministic byte stream for seed. It is used where
// an io.Reader of random bytes is needed, such as generating identifiers.
func NewReader(seed int64) *rand.ChaCha8 {
	var key [32]byte
	u := uint64(seed)
	for i := range 4 {
		u = mix(u + goldenRatio64)
		binary.LittleEndian.PutUint64(key[i*8:], u)
	}
	return rand.NewChaCha8(key)
}

// splitmix64 finalizer
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
