package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator creates opaque IDs used to correlate log lines of one run.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct {
	prefix string
	size   int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 16}
}

// NewRunIDGenerator yields short ids such as "run-3f9a0c1b2d4e".
func NewRunIDGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: strings.TrimSpace(prefix), size: 6}
}

func (g *RandomGenerator) NewID() (string, error) {
	size := g.size
	if size <= 0 {
		size = 16
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	id := hex.EncodeToString(buf)
	if g.prefix == "" {
		return id, nil
	}
	return g.prefix + "-" + id, nil
}
