package mocks

import (
	"fmt"
	"sync"

	"github.com/klfajardo/registro-evento-chile/internal/dependencies/ids"
)

// SequenceIDs is a mock Generator that issues queued values, then
// predictable "uuid-N" values
type SequenceIDs struct {
	mu     sync.Mutex
	queued []string
	next   int
}

// Ensure SequenceIDs implements Generator
var _ ids.Generator = (*SequenceIDs)(nil)

// NewSequenceIDs creates a SequenceIDs generator
func NewSequenceIDs() *SequenceIDs {
	return &SequenceIDs{}
}

// New returns the next queued value, or the next sequence value if none remain
func (g *SequenceIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("uuid-%d", g.next)
}

// Queue adds values to be returned before the sequence resumes
func (g *SequenceIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, values...)
}
