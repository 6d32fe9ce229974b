// Package session tracks the flight session currently being recorded.
package session

import (
	"sync"

	"github.com/openfdm/flightsim/internal/model"
)

// Context holds the current flight session. Safe for concurrent reads
// from the recorder worker and monitor while the driver owns writes.
type Context struct {
	mu      sync.RWMutex
	session *model.FlightSession
	tick    uint64
}

// NewContext creates a Context with a placeholder session.
func NewContext() *Context {
	return &Context{
		session: &model.FlightSession{Aircraft: "No session started"},
	}
}

// Get returns the current session.
func (c *Context) Get() *model.FlightSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Set replaces the current session and resets the tick counter.
func (c *Context) Set(s *model.FlightSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.tick = 0
}

// Tick returns the last published simulation tick.
func (c *Context) Tick() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tick
}

// SetTick publishes the current simulation tick.
func (c *Context) SetTick(t uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = t
}
