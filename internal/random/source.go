package random

import (
	"math/rand/v2"
)

// streamConstant is the PCG increment paired with every seed. Changing it
// changes every generated sequence.
const streamConstant uint64 = 0x6361726466726765

// Source is a seeded pseudo-random stream. It is not safe for concurrent use;
// owners serialize access.
type Source struct {
	seed uint32
	pcg  *rand.PCG
	rng  *rand.Rand
}

// NewSource creates a stream positioned at the start of seed's sequence.
func NewSource(seed uint32) *Source {
	pcg := rand.NewPCG(uint64(seed), streamConstant)
	return &Source{seed: seed, pcg: pcg, rng: rand.New(pcg)}
}

// NewUnseededSource creates a stream from a fresh crypto seed. The seed is
// recorded so the run can be reproduced.
func NewUnseededSource() (*Source, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSource(seed), nil
}

// Seed returns the seed most recently applied.
func (s *Source) Seed() uint32 {
	return s.seed
}

// Reseed restarts the stream at the beginning of seed's sequence.
func (s *Source) Reseed(seed uint32) {
	s.seed = seed
	s.pcg.Seed(uint64(seed), streamConstant)
}

// State is a saved stream position.
type State struct {
	seed uint32
	pcg  []byte
}

// Save captures the current seed and stream position.
func (s *Source) Save() (State, error) {
	pcg, err := s.pcg.MarshalBinary()
	if err != nil {
		return State{}, err
	}
	return State{seed: s.seed, pcg: pcg}, nil
}

// Restore rewinds the stream to a position captured by Save.
func (s *Source) Restore(state State) error {
	if err := s.pcg.UnmarshalBinary(state.pcg); err != nil {
		return err
	}
	s.seed = state.seed
	return nil
}

// IntRange returns a uniform integer in [low, high]. When high <= low it
// returns low without advancing the stream.
func (s *Source) IntRange(low, high int) int {
	if high <= low {
		return low
	}
	return low + s.rng.IntN(high-low+1)
}

// FloatRange returns a uniform float in [low, high).
func (s *Source) FloatRange(low, high float64) float64 {
	if high <= low {
		return low
	}
	return low + s.rng.Float64()*(high-low)
}

// Choose returns a uniformly chosen element of items. It reports false and
// leaves the stream untouched when items is empty.
func Choose[T any](s *Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[s.rng.IntN(len(items))], true
}
