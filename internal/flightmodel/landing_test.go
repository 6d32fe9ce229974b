package flightmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

func testRunway() core.Runway {
	return core.Runway{HalfWidth: 50, HalfLength: 2000}
}

func TestEvaluateLanding_AllCriteriaPass(t *testing.T) {
	r := EvaluateLanding(60, -1, 2, 3, mathx.Vec3{Z: 100}, testRunway())

	assert.True(t, r.Success)
	assert.True(t, r.SpeedOK)
	assert.True(t, r.SinkOK)
	assert.True(t, r.PitchOK)
	assert.True(t, r.RollOK)
	assert.True(t, r.OnRunway)
	assert.Contains(t, r.Message, "LANDED!")
}

func TestEvaluateLanding_TooFast(t *testing.T) {
	r := EvaluateLanding(150, -1, 2, 3, mathx.Vec3{Z: 100}, testRunway())

	assert.False(t, r.Success)
	assert.False(t, r.SpeedOK)
	assert.True(t, r.SinkOK)
	assert.Contains(t, r.Message, "CRASH")
	assert.Contains(t, r.Message, "Speed (<80): 150.0 m/s     FAIL")
}

func TestEvaluateLanding_OffRunway(t *testing.T) {
	r := EvaluateLanding(60, -1, 2, 3, mathx.Vec3{X: 80, Z: 100}, testRunway())

	assert.False(t, r.Success)
	assert.False(t, r.OnRunway)
	assert.Contains(t, r.Message, "No     FAIL")
}

func TestEvaluateLanding_HardSink(t *testing.T) {
	r := EvaluateLanding(60, -6, 2, 3, mathx.Vec3{Z: 100}, testRunway())

	assert.False(t, r.Success)
	assert.False(t, r.SinkOK)
}

func TestEvaluateLanding_NegativeAnglesUseMagnitude(t *testing.T) {
	r := EvaluateLanding(60, -1, -4.5, -4.5, mathx.Vec3{}, testRunway())
	assert.True(t, r.Success)

	r = EvaluateLanding(60, -1, -6, 0, mathx.Vec3{}, testRunway())
	assert.False(t, r.RollOK)
}

// touchdownState positions the aircraft a hair under the ground plane so
// the next Advance detects contact, with the given touchdown speed,
// sink rate and attitude.
func touchdownState(speed, sink, rollDeg, pitchDeg float64) *FlightState {
	s := NewState()
	vz := math.Sqrt(speed*speed - sink*sink)
	dir := mathx.Vec3{
		Y: math.Sin(mathx.DegToRad(pitchDeg)),
		Z: math.Cos(mathx.DegToRad(pitchDeg)),
	}
	s.Position = mathx.Vec3{X: 0, Y: -0.0005, Z: 100}
	s.Velocity = mathx.Vec3{Y: sink, Z: vz}
	s.Orientation = mathx.QuatFromDirectionAndRoll(dir, mathx.DegToRad(rollDeg))
	s.Power = 0
	s.AirborneTicks = 2500
	return s
}

func TestAdvance_GradesLandingOnTouchdown(t *testing.T) {
	m := New(DefaultConfig())
	s := touchdownState(60, -1, 2, 3)
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)

	require.True(t, s.Landing.Evaluated)
	assert.True(t, s.Landing.Success, "message: %s", s.Landing.Message)
	assert.Equal(t, 0, s.AirborneTicks)
}

func TestAdvance_GradesCrashWhenTooFast(t *testing.T) {
	m := New(DefaultConfig())
	s := touchdownState(150, -1, 2, 3)
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)

	require.True(t, s.Landing.Evaluated)
	assert.False(t, s.Landing.Success)
	assert.False(t, s.Landing.SpeedOK)
	assert.Contains(t, s.Landing.Message, "CRASH")
}

func TestAdvance_BriefGroundGrazeIsNotGraded(t *testing.T) {
	m := New(DefaultConfig())
	s := touchdownState(60, -1, 0, 0)
	s.AirborneTicks = 100 // just lifted off
	env := core.DefaultEnvironment()

	m.Advance(s, env, DefaultDT)

	assert.False(t, s.Landing.Evaluated)
	assert.Equal(t, 0, s.AirborneTicks)
}
