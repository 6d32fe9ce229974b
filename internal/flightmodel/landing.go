package flightmodel

import (
	"fmt"
	"math"

	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

// Landing grading thresholds.
const (
	maxLandingSpeed    = 80.0 // m/s
	maxLandingSinkRate = 2.0  // m/s
	maxLandingPitchDeg = 5.0
	maxLandingRollDeg  = 5.0
)

// EvaluateLanding grades a touchdown against the fixed thresholds and
// produces the verdict shown to the pilot. It is a pure function over
// the touchdown measurements.
func EvaluateLanding(speed, sinkRate, rollDeg, pitchDeg float64, pos mathx.Vec3, runway core.Runway) core.LandingReport {
	r := core.LandingReport{
		Evaluated: true,
		Speed:     speed,
		SinkRate:  sinkRate,
		RollDeg:   rollDeg,
		PitchDeg:  pitchDeg,
	}
	r.SpeedOK = speed < maxLandingSpeed
	r.SinkOK = math.Abs(sinkRate) < maxLandingSinkRate
	r.PitchOK = math.Abs(pitchDeg) < maxLandingPitchDeg
	r.RollOK = math.Abs(rollDeg) < maxLandingRollDeg
	r.OnRunway = runway.Contains(pos)
	r.Success = r.SpeedOK && r.SinkOK && r.PitchOK && r.RollOK && r.OnRunway

	verdict := "CRASH"
	if r.Success {
		verdict = "LANDED!"
	}
	runwayText := "No     FAIL"
	if r.OnRunway {
		runwayText = "Yes     OK"
	}
	r.Message = fmt.Sprintf(
		"%s\n Speed (<80): %4.1f m/s     %s\n Sink rate (<2): %4.1f m/s      %s\n Pitch (<5): %4.1f deg     %s\n Roll (<5): %4.1f deg     %s\n On Runway: %s\n",
		verdict,
		speed, okFail(r.SpeedOK),
		sinkRate, okFail(r.SinkOK),
		math.Abs(pitchDeg), okFail(r.PitchOK),
		math.Abs(rollDeg), okFail(r.RollOK),
		runwayText,
	)
	return r
}

func okFail(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}

// checkLanding runs on every ground contact. A touchdown is only graded
// when the aircraft has been airborne long enough; this keeps a
// single-tick ground graze right after takeoff from producing a
// verdict. The airborne counter resets either way.
func (m *Model) checkLanding(s *FlightState, env core.Environment) {
	if s.AirborneTicks > LandingMinAirborneTicks {
		rollDeg, pitchDeg, _ := s.Orientation.Euler()
		s.Landing = EvaluateLanding(s.Speed, s.Velocity.Y, rollDeg, pitchDeg, s.Position, env.Runway)
	}
	s.AirborneTicks = 0
}
