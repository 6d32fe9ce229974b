// Package flightmodel implements the rigid-body flight dynamics model:
// a per-tick state advance computing lift, drag and thrust from the
// current velocity and orientation, with orientation updated through a
// directional-stability heuristic instead of full rotational dynamics.
//
// The model intentionally tracks no angular velocity, torque or inertia
// tensor. The body chases the velocity direction at a fixed damping
// rate, which produces directional stability and stalls but cannot
// sustain a flat spin. See the design notes on the stability policy for
// how a full angular-momentum model could be substituted.
package flightmodel

import (
	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

// Model constants. These are tuned as a set; the feedback between the
// orientation chase and the velocity steering is only stable at the
// fixed timestep below.
const (
	// DefaultDT is the fixed integration timestep in seconds. Larger
	// steps destabilize the explicit Euler integration.
	DefaultDT = 0.001

	// DefaultMaxSpeed caps the airspeed at 500 m/s (1800 kph).
	DefaultMaxSpeed = 500.0

	// DefaultMass is the body mass in kg.
	DefaultMass = 0.1

	// DefaultLiftFactor and DefaultDragFactor scale dynamic pressure
	// into lift and drag force.
	DefaultLiftFactor = 0.0001
	DefaultDragFactor = 0.0001

	// DefaultStabilityDamping is the fraction of the forward-to-velocity
	// rotation applied per tick.
	DefaultStabilityDamping = 0.001

	// Pitch authority: on the ground the accumulator is forced to full
	// authority so the aircraft can rotate for takeoff; in the air it
	// low-pass filters the live pitch input.
	groundPitchAuthority = 1.1
	pitchAdvanceDecay    = 0.9995
	pitchAdvanceBlend    = 0.005
	pitchSteerRate       = 0.0001

	// Roll deflection per tick per unit of input; doubles as yaw rate
	// when taxiing (ground rudder).
	rollRate = 0.001

	groundEpsilon  = 0.00001
	groundFriction = 0.9999

	// LandingMinAirborneTicks gates landing evaluation: ground contact
	// is graded only after this many consecutive airborne ticks, so
	// ground roll and brief hops are not scored as landings.
	LandingMinAirborneTicks = 2000

	// Ticks airborne after which a stale landing report is cleared.
	landingReportTTLTicks = 3200
)

// FlightState is the sole persistent entity of the simulation. It is
// owned by exactly one driving loop and mutated only by Advance.
type FlightState struct {
	Position    mathx.Vec3
	Velocity    mathx.Vec3
	Orientation mathx.Quat

	// Pilot inputs, written by the input collector before each tick.
	Roll  float64
	Pitch float64
	Power float64
	Flaps float64

	// PitchAdvance is the smoothed pitch-authority accumulator. It
	// decays toward the live pitch input in the air and is forced to
	// full authority on the ground.
	PitchAdvance float64

	// AirborneTicks counts consecutive ticks since last ground contact.
	AirborneTicks int

	// Landing is the last landing verdict; cleared after
	// landingReportTTLTicks airborne ticks.
	Landing core.LandingReport

	// Transient diagnostics, recomputed every tick. Display only.
	Forces core.Forces
	Speed  float64
	AoA    float64
}

// NewState returns a FlightState at the initial takeoff condition:
// 10 m over the runway threshold, 200 m/s down the runway centerline,
// throttle at 3.
func NewState() *FlightState {
	s := &FlightState{}
	s.Reset()
	return s
}

// Reset reinitializes the state in place. There is no destruction; a
// reset is a reassignment of the initial values.
func (s *FlightState) Reset() {
	*s = FlightState{
		Position:      mathx.Vec3{X: 0, Y: 10, Z: 0},
		Velocity:      mathx.Vec3{X: 0, Y: 0, Z: 200},
		Orientation:   mathx.QuatFromDirectionAndRoll(mathx.Vec3{Z: 1}, 0),
		Power:         3,
		AirborneTicks: 1,
	}
}

// Controls returns the current pilot inputs as a value.
func (s *FlightState) Controls() core.Controls {
	return core.Controls{Roll: s.Roll, Pitch: s.Pitch, Power: s.Power, Flaps: s.Flaps}
}

// Airborne reports whether the aircraft is off the ground.
func (s *FlightState) Airborne() bool {
	return s.Position.Y > groundEpsilon
}

// Config holds the tunable model parameters.
type Config struct {
	LiftFactor float64
	DragFactor float64
	Mass       float64
	MaxSpeed   float64
	Stability  StabilityPolicy
}

// DefaultConfig returns the stock parameter set.
func DefaultConfig() Config {
	return Config{
		LiftFactor: DefaultLiftFactor,
		DragFactor: DefaultDragFactor,
		Mass:       DefaultMass,
		MaxSpeed:   DefaultMaxSpeed,
		Stability:  DampedChase{Damping: DefaultStabilityDamping},
	}
}

// Model advances FlightStates. It is stateless between calls; all
// mutable simulation state lives in the FlightState.
type Model struct {
	cfg Config
}

// New creates a Model, filling zero config fields with defaults.
func New(cfg Config) *Model {
	def := DefaultConfig()
	if cfg.LiftFactor == 0 {
		cfg.LiftFactor = def.LiftFactor
	}
	if cfg.DragFactor == 0 {
		cfg.DragFactor = def.DragFactor
	}
	if cfg.Mass == 0 {
		cfg.Mass = def.Mass
	}
	if cfg.MaxSpeed == 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}
	if cfg.Stability == nil {
		cfg.Stability = def.Stability
	}
	return &Model{cfg: cfg}
}
