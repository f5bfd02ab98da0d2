// Package seed turns user input into reproducible generator seeds.
package seed

import (
	"encoding/binary"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// FromPhrase hashes a phrase into a seed. Surrounding whitespace and case
// are ignored so "Dark Tower" and "dark tower " share a maze.
func FromPhrase(phrase string) int64 {
	normalized := strings.ToLower(strings.TrimSpace(phrase))
	sum := blake2b.Sum256([]byte(normalized))
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// Parse reads a decimal seed, falling back to FromPhrase for anything else.
// An empty string yields a time-based seed.
func Parse(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Now()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return FromPhrase(s)
}

// Now returns a seed derived from the wall clock.
func Now() int64 {
	return time.Now().UnixNano()
}

// Rand returns a deterministic random source for seed.
func Rand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
