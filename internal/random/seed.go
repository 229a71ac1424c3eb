// Package random builds the pseudo-random sources used to shuffle teams
// and deal players.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a generator seeded by NewSeed. If the system source fails
// the clock is used instead.
func New() *rand.Rand {
	return newRand(NewSeed, time.Now)
}

func newRand(seed func() (int64, error), now func() time.Time) *rand.Rand {
	s, err := seed()
	if err != nil {
		s = now().UnixNano()
	}
	return rand.New(rand.NewSource(s)) //nolint:gosec // game randomness, not security
}
