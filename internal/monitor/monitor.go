// Package monitor watches driver-loop health: achieved tick rate,
// recorder backlog and storage write latency. It writes a status file
// for quick inspection and feeds performance samples back into the
// telemetry pipeline.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openfdm/flightsim/internal/influx"
	"github.com/openfdm/flightsim/internal/worker"
	"github.com/openfdm/flightsim/pkg/core"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Log      *slog.Logger
	Recorder *worker.Manager
	Influx   *influx.Manager // optional

	// TickSource reports the driver's current tick count.
	TickSource func() uint64

	// StatusDir is where status.txt is written. Empty disables the
	// file.
	StatusDir string

	// Interval between health samples. Zero means 1 second.
	Interval time.Duration
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}

	lastTick uint64
	lastTime time.Time
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample measures current driver health. The tick rate is derived from
// the tick delta since the previous call.
func (s *Service) Sample() core.PerfSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	tick := uint64(0)
	if s.deps.TickSource != nil {
		tick = s.deps.TickSource()
	}

	var rate float64
	if !s.lastTime.IsZero() && tick >= s.lastTick {
		elapsed := now.Sub(s.lastTime).Seconds()
		if elapsed > 0 {
			rate = float64(tick-s.lastTick) / elapsed
		}
	}
	s.lastTick = tick
	s.lastTime = now

	samples, landings := 0, 0
	var lastWrite time.Duration
	if s.deps.Recorder != nil {
		samples, landings = s.deps.Recorder.QueueLens()
		lastWrite = s.deps.Recorder.LastWriteDuration()
	}

	return core.PerfSample{
		Time:            now,
		TicksPerSecond:  rate,
		SampleQueueLen:  samples,
		LandingQueueLen: landings,
		LastWriteMs:     float64(lastWrite.Microseconds()) / 1000.0,
	}
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Log.Debug("Starting status monitor goroutine")

		var statusFile *os.File
		if s.deps.StatusDir != "" {
			var err error
			statusFile, err = os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
			if err != nil {
				s.deps.Log.Error("Error creating status file", "error", err)
			}
		}
		if statusFile != nil {
			defer statusFile.Close()
		}

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				perf := s.Sample()

				if statusFile != nil {
					s.writeStatus(statusFile, perf)
				}

				if s.deps.Recorder != nil {
					s.deps.Recorder.OfferPerf(perf)
				}

				if s.deps.Influx != nil {
					err := s.deps.Influx.WritePoint(context.Background(),
						influx.BucketSimPerformance, influx.PerfPoint(perf))
					if err != nil {
						s.deps.Log.Error("Error writing perf point to InfluxDB", "error", err)
					}
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

func (s *Service) writeStatus(f *os.File, perf core.PerfSample) {
	body, err := json.MarshalIndent(perf, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}

	f.Truncate(0)
	f.Seek(0, 0)
	f.Write(append(body, '\n'))
}
