package simple

import (
	"context"
	"sync"
)

type Generator struct {
	mu      sync.Mutex
	counter int
}

func New() *Generator {
	//nolint:exhaustruct
	return &Generator{}
}

// StartAfter makes the next id n+1. Seeded data uses it to keep ids unique.
func (g *Generator) StartAfter(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n > g.counter {
		g.counter = n
	}
}

func (g *Generator) GetID(_ context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return g.counter, nil
}
