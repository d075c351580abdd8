package random

import (
	crand "crypto/rand"
	"math/rand/v2"
	"strings"
	"sync"
)

// LowerAlphaNumeric is the alphabet for connection identifiers
const LowerAlphaNumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// Source implements Random on a ChaCha8 generator.
// It is safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Source seeded from crypto/rand
func New() *Source {
	var seed [32]byte
	_, _ = crand.Read(seed[:]) // Never fails on supported platforms
	return NewSeeded(seed)
}

// NewSeeded creates a Source that produces the same sequence for the same seed
func NewSeeded(seed [32]byte) *Source {
	return &Source{rng: rand.New(rand.NewChaCha8(seed))}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// String generates a random string of the given length from the given alphabet
func (s *Source) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(length)

	s.mu.Lock()
	defer s.mu.Unlock()
	for range length {
		b.WriteByte(alphabet[s.rng.IntN(len(alphabet))])
	}
	return b.String()
}
