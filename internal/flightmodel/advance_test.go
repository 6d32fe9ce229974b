package flightmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

func TestAdvance_OrientationStaysUnit(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	env := core.DefaultEnvironment()

	// Exercise roll and pitch aggressively; composition must never let
	// the quaternion drift off unit length.
	for i := 0; i < 5000; i++ {
		switch (i / 500) % 4 {
		case 0:
			s.Roll, s.Pitch = 1, 0
		case 1:
			s.Roll, s.Pitch = 0, 1
		case 2:
			s.Roll, s.Pitch = -1, -1
		default:
			s.Roll, s.Pitch = 0, 0
		}
		m.Advance(s, env, DefaultDT)

		n := s.Orientation.Length()
		require.InDelta(t, 1, n, 1e-9, "tick %d", i)
		require.True(t, s.Orientation.IsFinite(), "tick %d", i)
	}
}

func TestAdvance_SpeedStaysBounded(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Velocity = mathx.Vec3{Z: 600} // over the limit on purpose
	s.Power = 10
	env := core.DefaultEnvironment()

	for i := 0; i < 3000; i++ {
		m.Advance(s, env, DefaultDT)

		require.GreaterOrEqual(t, s.Speed, 0.0)
		require.LessOrEqual(t, s.Speed, DefaultMaxSpeed)
		require.LessOrEqual(t, s.Velocity.Length(), DefaultMaxSpeed+0.001)
	}
}

func TestAdvance_GlidingDescends(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Power = 0
	env := core.DefaultEnvironment()

	// Only the airborne phase descends monotonically; on contact the
	// ground handler forces pitch authority up and the nose rises.
	start := s.Position.Y
	prev := start
	ticks := 0
	for i := 0; i < 5000 && s.Airborne(); i++ {
		m.Advance(s, env, DefaultDT)
		ticks++
		if s.Airborne() && i%100 == 99 {
			require.LessOrEqual(t, s.Position.Y, prev+1e-9, "tick %d", i)
			prev = s.Position.Y
		}
	}
	require.Greater(t, ticks, 100, "glide ended before it started")
	assert.Less(t, prev, start)
}

func TestAdvance_TrimmedFlightHoldsAltitudeAndSpeed(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	env := core.DefaultEnvironment()

	// Level trim: with forward aligned to velocity the AoA sits at its
	// floor of 1 degree, so CL = sin(0.2). Solve lift = gravity for the
	// trim speed, then set power so thrust cancels drag at that speed.
	cl := math.Sin(0.2)
	liftPerV2 := cl * 0.5 * env.AirDensity * DefaultLiftFactor * 0.5 / DefaultMass
	v := math.Sqrt(env.Gravity / liftPerV2)
	dragAccel := 0.5 * env.AirDensity * v * v * DefaultDragFactor / DefaultMass
	power := dragAccel * DefaultMass

	require.LessOrEqual(t, power, 10.0, "trim power must be reachable")

	s.Position = mathx.Vec3{Y: 1000}
	s.Velocity = mathx.Vec3{Z: v}
	s.Power = power

	for i := 0; i < 2000; i++ {
		m.Advance(s, env, DefaultDT)
	}

	assert.InDelta(t, 1000, s.Position.Y, 3)
	assert.InDelta(t, v, s.Speed, 3)
}

func TestAdvance_GroundContactClampsState(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Position = mathx.Vec3{X: 0, Y: -0.0005, Z: 0}
	s.Velocity = mathx.Vec3{Y: -0.5}
	s.Power = 0
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)

	assert.Equal(t, 0.0, s.Position.Y)
	// The trailing velocity integration re-adds at most one tick of the
	// residual body-force acceleration.
	assert.InDelta(t, 0, s.Velocity.Y, 1e-6)
	assert.Equal(t, 0, s.AirborneTicks)
}

func TestAdvance_GroundRollActsAsRudder(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Position = mathx.Vec3{Y: 0}
	s.Velocity = mathx.Vec3{Z: 50}
	s.Roll = -1 // left input taxies left
	env := core.DefaultEnvironment()

	for i := 0; i < 500; i++ {
		m.Advance(s, env, DefaultDT)
	}

	// Velocity turned with the body instead of banking.
	assert.Greater(t, math.Abs(s.Velocity.X), 1e-6)
	roll, pitch, _ := s.Orientation.Euler()
	assert.InDelta(t, 0, pitch, 0.5)
	assert.InDelta(t, 0, roll, 0.5)
}

func TestAdvance_PositiveRollInputRollsPositive(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Roll = 1
	env := core.DefaultEnvironment()

	for i := 0; i < 200; i++ {
		m.Advance(s, env, DefaultDT)
	}

	roll, _, _ := s.Orientation.Euler()
	assert.Greater(t, roll, 5.0)
}

func TestAdvance_AntiparallelVelocityDoesNotPoisonOrientation(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Velocity = mathx.Vec3{Z: -100} // exactly opposite body forward
	env := core.DefaultEnvironment()

	before := s.Orientation
	m.Advance(s, env, DefaultDT)

	require.True(t, s.Orientation.IsFinite())
	require.True(t, s.Velocity.IsFinite())
	// The reorientation is skipped for the tick; with zero roll input
	// the orientation is unchanged.
	assert.InDelta(t, before.W, s.Orientation.W, 1e-12)
	assert.InDelta(t, before.X, s.Orientation.X, 1e-12)
	assert.InDelta(t, before.Y, s.Orientation.Y, 1e-12)
	assert.InDelta(t, before.Z, s.Orientation.Z, 1e-12)
}

func TestAdvance_PitchAuthorityForcedOnGround(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Position = mathx.Vec3{}
	s.Velocity = mathx.Vec3{Z: 10}
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)
	assert.InDelta(t, 1.1*0.9995, s.PitchAdvance, 1e-12)

	// Airborne, the accumulator decays toward the (zero) pitch input.
	s.Position = mathx.Vec3{Y: 100}
	m.Advance(s, env, DefaultDT)
	assert.Less(t, s.PitchAdvance, 1.1*0.9995)
}

func TestAdvance_LandingReportExpires(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	s.Position = mathx.Vec3{Y: 500}
	s.Landing = core.LandingReport{Message: "LANDED!", Success: true, Evaluated: true}
	s.AirborneTicks = landingReportTTLTicks // one tick away from expiry
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)

	assert.Empty(t, s.Landing.Message)
	assert.False(t, s.Landing.Evaluated)
}

func TestReset_RestoresInitialCondition(t *testing.T) {
	m := New(DefaultConfig())
	s := NewState()
	env := core.DefaultEnvironment()
	for i := 0; i < 100; i++ {
		s.Roll = 1
		m.Advance(s, env, DefaultDT)
	}

	s.Reset()

	assert.Equal(t, mathx.Vec3{Y: 10}, s.Position)
	assert.Equal(t, mathx.Vec3{Z: 200}, s.Velocity)
	assert.Equal(t, 3.0, s.Power)
	assert.Equal(t, 1, s.AirborneTicks)
}
