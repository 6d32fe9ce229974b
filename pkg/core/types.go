// Package core defines the domain types exchanged between the flight
// model, the simulation driver and the telemetry pipeline. It has no
// dependencies beyond the math primitives so every layer can import it.
package core

import (
	"time"

	"github.com/openfdm/flightsim/pkg/mathx"
)

// Controls are the pilot inputs sampled once per simulation tick.
// Roll and pitch are in [-1, 1] and snap back to 0 on release; power is
// a throttle setting in [0, 10]; flaps is 0 or 1.
type Controls struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Power float64 `json:"power"`
	Flaps float64 `json:"flaps"`
}

// Runway is the legal landing rectangle, centered at the world origin.
// Dimensions are half-extents in meters.
type Runway struct {
	HalfWidth  float64 `json:"halfWidth"`
	HalfLength float64 `json:"halfLength"`
}

// Contains reports whether a ground position is inside the rectangle.
func (r Runway) Contains(pos mathx.Vec3) bool {
	return pos.X > -r.HalfWidth && pos.X < r.HalfWidth &&
		pos.Z > -r.HalfLength && pos.Z < r.HalfLength
}

// Environment is the read-only per-tick environment.
type Environment struct {
	Wind       mathx.Vec3 `json:"wind"`       // m/s, world frame
	Gravity    float64    `json:"gravity"`    // m/s^2, applied downward
	AirDensity float64    `json:"airDensity"` // kg/m^3
	Runway     Runway     `json:"runway"`
}

// DefaultEnvironment returns still air at sea level over a 100x4000 m
// runway.
func DefaultEnvironment() Environment {
	return Environment{
		Gravity:    9.8,
		AirDensity: 1.225,
		Runway:     Runway{HalfWidth: 50, HalfLength: 2000},
	}
}

// Forces is the per-tick force breakdown in newtons, recomputed every
// Advance call. Exposed for display and telemetry only.
type Forces struct {
	Lift   mathx.Vec3 `json:"lift"`
	Drag   mathx.Vec3 `json:"drag"`
	Thrust mathx.Vec3 `json:"thrust"`
	Net    mathx.Vec3 `json:"net"`
	Accel  mathx.Vec3 `json:"accel"` // m/s^2, includes gravity and wind bias
}

// LandingReport is the verdict produced when ground contact ends a
// sustained period of flight. It persists on the state until the next
// evaluation or until the stale-result timeout clears it.
type LandingReport struct {
	Message string `json:"message"`
	Success bool   `json:"success"`

	// Per-criterion results, with the measured values they were graded on.
	SpeedOK   bool    `json:"speedOk"`
	SinkOK    bool    `json:"sinkOk"`
	PitchOK   bool    `json:"pitchOk"`
	RollOK    bool    `json:"rollOk"`
	OnRunway  bool    `json:"onRunway"`
	Speed     float64 `json:"speed"`
	SinkRate  float64 `json:"sinkRate"`
	PitchDeg  float64 `json:"pitchDeg"`
	RollDeg   float64 `json:"rollDeg"`
	Evaluated bool    `json:"evaluated"`
}

// Touchdown pairs a landing report with when and where it was graded.
type Touchdown struct {
	Tick     uint64        `json:"tick"`
	SimTime  float64       `json:"simTime"`
	Position mathx.Vec3    `json:"position"`
	Report   LandingReport `json:"report"`
}

// PerfSample reports driver-loop health: the achieved tick rate and the
// recorder backlog at the time of measurement.
type PerfSample struct {
	Time            time.Time `json:"time"`
	TicksPerSecond  float64   `json:"ticksPerSecond"`
	SampleQueueLen  int       `json:"sampleQueueLen"`
	LandingQueueLen int       `json:"landingQueueLen"`
	LastWriteMs     float64   `json:"lastWriteMs"`
}

// FlightSample is one telemetry record captured after an Advance call.
type FlightSample struct {
	Tick     uint64     `json:"tick"`
	SimTime  float64    `json:"simTime"` // seconds since session start
	Position mathx.Vec3 `json:"position"`
	Velocity mathx.Vec3 `json:"velocity"`
	Speed    float64    `json:"speed"`
	AoA      float64    `json:"aoa"`
	RollDeg  float64    `json:"rollDeg"`
	PitchDeg float64    `json:"pitchDeg"`
	Heading  float64    `json:"heading"`
	Controls Controls   `json:"controls"`
	Forces   Forces     `json:"forces"`
	Airborne bool       `json:"airborne"`
}

// SessionSummary describes a recorded flight session for export tooling.
type SessionSummary struct {
	ID        uint      `json:"id"`
	Aircraft  string    `json:"aircraft"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Samples   int       `json:"samples"`
	Landings  int       `json:"landings"`
}
