// Package random provides the seeded pseudo-random stream every generator
// draws from, plus cryptographic seed helpers.
//
// A Source created from the same seed and driven by the same call order
// yields the same values on every platform and every release.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
)

// NewSeed generates a random 32-bit seed using crypto/rand.
func NewSeed() (uint32, error) {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ParseSeed parses a seed supplied by a caller. An empty or negative value
// means "no seed" and reports ok=false.
func ParseSeed(raw string) (seed uint32, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperrors.WrapWithMetadata(
			apperrors.CodeSeedOutOfRange,
			"parse seed",
			map[string]string{"Seed": raw},
			err,
		)
	}
	if value < 0 {
		return 0, false, nil
	}
	if value > math.MaxUint32 {
		return 0, false, apperrors.WithMetadata(
			apperrors.CodeSeedOutOfRange,
			fmt.Sprintf("seed %d exceeds %d", value, uint32(math.MaxUint32)),
			map[string]string{"Seed": raw},
		)
	}
	return uint32(value), true, nil
}
