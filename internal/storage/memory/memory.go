// Package memory implements the storage.Backend interface in process
// memory, exporting the session to a (optionally gzipped) JSON file on
// EndSession.
package memory

import (
	"sync"

	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/pkg/core"
)

// Config holds settings for the in-memory backend.
type Config struct {
	OutputDir      string
	CompressOutput bool
}

// Backend stores flight data in memory and exports to JSON.
type Backend struct {
	cfg     Config
	session *model.FlightSession

	samples    []core.FlightSample
	touchdowns []core.Touchdown
	perf       []core.PerfSample

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session and assigns a local ID.
func (b *Backend) StartSession(s *model.FlightSession) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	b.session = s

	b.samples = nil
	b.touchdowns = nil
	b.perf = nil

	return nil
}

// EndSession finalizes and exports the session data.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	return b.exportJSON()
}

// RecordSample stores a telemetry sample.
func (b *Backend) RecordSample(s *core.FlightSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, *s)
	return nil
}

// RecordLanding stores a graded touchdown.
func (b *Backend) RecordLanding(t *core.Touchdown) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touchdowns = append(b.touchdowns, *t)
	return nil
}

// RecordPerformance stores a driver-health sample.
func (b *Backend) RecordPerformance(p *core.PerfSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.perf = append(b.perf, *p)
	return nil
}

// Samples returns a copy of the recorded samples.
func (b *Backend) Samples() []core.FlightSample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.FlightSample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Touchdowns returns a copy of the recorded touchdowns.
func (b *Backend) Touchdowns() []core.Touchdown {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Touchdown, len(b.touchdowns))
	copy(out, b.touchdowns)
	return out
}

// ExportedFilePath returns the path of the last JSON export.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
