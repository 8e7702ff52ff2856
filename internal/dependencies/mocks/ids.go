package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/tourney/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing. Queued IDs
// are returned first, after which IDs are issued sequentially as id-1, id-2...
type MockIDs struct {
	mu      sync.Mutex
	queued  []string
	counter int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued ID or the next sequential ID
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// QueueID adds values to the ID queue
func (g *MockIDs) QueueID(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, values...)
}
