// Package worker runs the telemetry recorder: it accepts samples from
// the simulation loop, downsamples them, and drains them into the
// configured storage backend on a flush interval.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/openfdm/flightsim/internal/queue"
	"github.com/openfdm/flightsim/internal/storage"
	"github.com/openfdm/flightsim/pkg/core"
)

// Dependencies holds all dependencies for the recorder manager.
type Dependencies struct {
	Log *slog.Logger

	// SampleEvery keeps one sample per N ticks. Zero or one records
	// every sample.
	SampleEvery uint64

	// FlushInterval is the pause between backend flushes. Zero means
	// the default of 1 second.
	FlushInterval time.Duration
}

// Manager owns the recorder queues and the flush goroutine.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	samples  *queue.Queue[core.FlightSample]
	landings *queue.Queue[core.Touchdown]
	perf     *queue.Queue[core.PerfSample]

	stopChan    chan struct{}
	lastWriteNs atomic.Int64

	samplesRecorded  metric.Int64Counter
	landingsRecorded metric.Int64Counter
}

// NewManager creates a new recorder manager.
func NewManager(deps Dependencies, backend storage.Backend) (*Manager, error) {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = time.Second
	}

	m := &Manager{
		deps:     deps,
		backend:  backend,
		samples:  queue.New[core.FlightSample](),
		landings: queue.New[core.Touchdown](),
		perf:     queue.New[core.PerfSample](),
	}

	var err error
	mt := meter()

	m.samplesRecorded, err = mt.Int64Counter(
		"recorder.samples.recorded",
		metric.WithDescription("Telemetry samples written to storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating samples counter: %w", err)
	}

	m.landingsRecorded, err = mt.Int64Counter(
		"recorder.landings.recorded",
		metric.WithDescription("Landing events written to storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating landings counter: %w", err)
	}

	return m, nil
}

// Start launches the flush goroutine.
func (m *Manager) Start() {
	m.stopChan = make(chan struct{})
	go m.flushLoop(m.stopChan)
}

// Stop halts the flush goroutine and performs a final flush.
func (m *Manager) Stop() {
	if m.stopChan != nil {
		close(m.stopChan)
		m.stopChan = nil
	}
	m.Flush()
}

// OfferSample queues a telemetry sample, applying the downsampling
// policy. Returns true when the sample was kept.
func (m *Manager) OfferSample(s core.FlightSample) bool {
	if m.deps.SampleEvery > 1 && s.Tick%m.deps.SampleEvery != 0 {
		return false
	}
	m.samples.Push(s)
	return true
}

// OfferLanding queues a graded touchdown. Landings are never
// downsampled.
func (m *Manager) OfferLanding(t core.Touchdown) {
	m.landings.Push(t)
}

// OfferPerf queues a driver-health sample.
func (m *Manager) OfferPerf(p core.PerfSample) {
	m.perf.Push(p)
}

// QueueLens returns the current sample and landing backlogs.
func (m *Manager) QueueLens() (samples, landings int) {
	return m.samples.Len(), m.landings.Len()
}

// LastWriteDuration returns how long the most recent flush took.
func (m *Manager) LastWriteDuration() time.Duration {
	return time.Duration(m.lastWriteNs.Load())
}

// Flush drains every queue into the backend once.
func (m *Manager) Flush() {
	start := time.Now()
	ctx := context.Background()

	for _, s := range m.samples.DrainAll() {
		if err := m.backend.RecordSample(&s); err != nil {
			m.deps.Log.Error("failed to record sample", "tick", s.Tick, "error", err)
			continue
		}
		m.samplesRecorded.Add(ctx, 1)
	}

	for _, t := range m.landings.DrainAll() {
		if err := m.backend.RecordLanding(&t); err != nil {
			m.deps.Log.Error("failed to record landing", "tick", t.Tick, "error", err)
			continue
		}
		m.landingsRecorded.Add(ctx, 1)
	}

	for _, p := range m.perf.DrainAll() {
		if err := m.backend.RecordPerformance(&p); err != nil {
			m.deps.Log.Error("failed to record perf sample", "error", err)
		}
	}

	m.lastWriteNs.Store(int64(time.Since(start)))
}

func (m *Manager) flushLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}
