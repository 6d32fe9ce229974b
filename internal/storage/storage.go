// Package storage defines the backend interface the telemetry recorder
// writes through, and the factory that selects an implementation from
// configuration.
package storage

import (
	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/pkg/core"
)

// Backend is the interface all storage implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management. StartSession assigns the backend's session ID
	// to the passed row.
	StartSession(s *model.FlightSession) error
	EndSession() error

	// Telemetry recording
	RecordSample(s *core.FlightSample) error
	RecordLanding(t *core.Touchdown) error
	RecordPerformance(p *core.PerfSample) error
}

// Exportable is an optional interface for backends that produce a
// replayable artifact on EndSession.
type Exportable interface {
	ExportedFilePath() string
}
