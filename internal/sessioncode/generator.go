// Package sessioncode produces short human-shareable session codes.
package sessioncode

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Alphabet excludes visually confusable characters (0/O, 1/I).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length is the number of characters in a session code.
const Length = 6

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a generator with a deterministic seed, for tests.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewRandom returns a generator seeded from the current time.
func NewRandom() *Generator {
	return New(time.Now().UnixNano())
}

// Generate draws codes until one does not already exist according to exists.
func (g *Generator) Generate(exists func(code string) (bool, error)) (string, error) {
	for {
		code := g.next()
		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("sessioncode: exists check: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}

func (g *Generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = Alphabet[g.rnd.Intn(len(Alphabet))]
	}
	return string(buf)
}
