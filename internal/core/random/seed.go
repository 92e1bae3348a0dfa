// Package random provides seed generation and resolution for dice rolls.
//
// Seeds are generated with crypto/rand and then drive a math/rand source,
// so a reported seed replays the exact same rolls.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// SeedSource records where the seed used for an evaluation came from.
type SeedSource string

const (
	// SeedSourceClient marks a caller-supplied seed.
	SeedSourceClient SeedSource = "CLIENT"
	// SeedSourceServer marks a freshly generated seed.
	SeedSourceServer SeedSource = "SERVER"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns the requested seed when present, otherwise a seed from
// seedFunc (NewSeed when nil).
func ResolveSeed(requested *int64, seedFunc func() (int64, error)) (int64, SeedSource, error) {
	if requested != nil {
		return *requested, SeedSourceClient, nil
	}
	if seedFunc == nil {
		seedFunc = NewSeed
	}
	seed, err := seedFunc()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceServer, nil
}

// NewSource returns a deterministic pseudorandom source for seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
