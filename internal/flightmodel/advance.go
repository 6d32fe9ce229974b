package flightmodel

import (
	"math"

	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

// Advance moves the state forward by one timestep dt given the current
// environment. It mutates position, velocity, orientation, the pitch
// accumulator, the airborne counter and the landing report, and fills
// the transient force diagnostics.
//
// The integration is explicit Euler with a deliberate one-step lag:
// position integrates from the pre-update velocity, and velocity picks
// up this tick's acceleration last. Both orderings are part of the
// model's tuning and must not be "fixed".
func (m *Model) Advance(s *FlightState, env core.Environment, dt float64) {
	// Body frame of reference.
	fwd := s.Orientation.Forward()
	up := s.Orientation.Up()
	right := s.Orientation.Right()

	// Velocity axis and speed limit. At exactly zero speed the aircraft
	// has no velocity direction of its own; borrow the body forward
	// axis instead of dividing by zero.
	speed := s.Velocity.Length()
	if speed > m.cfg.MaxSpeed {
		speed = m.cfg.MaxSpeed
	}
	var vaxis mathx.Vec3
	if speed == 0 {
		vaxis = fwd
	} else {
		vaxis = s.Velocity.Scale(1 / s.Velocity.Length())
	}
	s.Speed = speed

	// Pitch authority. Grounded: full elevator authority so the nose
	// can rotate for takeoff. Airborne: low-pass filter the live pitch
	// input, modeling control-surface lag without simulating inertia.
	if s.Position.Y <= 0 {
		s.PitchAdvance = groundPitchAuthority
	}
	s.PitchAdvance = s.PitchAdvance*pitchAdvanceDecay + s.Pitch*pitchAdvanceBlend

	// Pitch steers the velocity vector directly: a small rotation about
	// the body right axis, reapplied to the velocity at constant speed.
	ctrlPitch := mathx.QuatFromAngleAxis(s.PitchAdvance*pitchSteerRate, right)
	vaxis = ctrlPitch.Rotate(vaxis).Normalize()
	s.Velocity = vaxis.Scale(speed)

	// Flaps trade drag for low-speed lift; the lift bonus fades out as
	// speed approaches the limit.
	flapLift := s.Flaps * math.Cos(speed/m.cfg.MaxSpeed*(math.Pi/2))
	wingArea := 1 + s.Flaps

	// Dynamic pressure from airspeed plus the headwind component.
	airflow := speed + env.Wind.Dot(vaxis.Scale(-1))
	dynamicPressure := 0.5 * env.AirDensity * airflow * airflow

	// Angle of attack between body forward and the velocity direction.
	// Rounding can push the dot product outside the acos domain when
	// the vectors are near antiparallel; substitute the floor value.
	if a, ok := mathx.SafeAcos(fwd.Dot(vaxis)); ok {
		s.AoA = mathx.RadToDeg(a) + 1
	} else {
		s.AoA = 1
	}

	// Lift. The CL curve is approximated with a sine over the AoA.
	cl := math.Sin(s.AoA*0.2) + flapLift
	lift := up.Scale(cl * dynamicPressure * m.cfg.LiftFactor * 0.5)

	// Drag opposes the velocity axis.
	drag := vaxis.Scale(dynamicPressure * m.cfg.DragFactor * -1 * wingArea)

	// Thrust along body forward.
	thrust := fwd.Scale(s.Power)

	net := lift.Add(drag).Add(thrust)

	// Directional stability: reorient the body toward the velocity
	// axis at the policy's damping rate. Skipped when degenerate.
	if q, ok := m.cfg.Stability.Reorient(s.Orientation, vaxis); ok {
		s.Orientation = q
	}

	// Roll input deflects the body about its forward axis.
	ctrlRoll := mathx.QuatFromAngleAxis(s.Roll*rollRate, mathx.Vec3{X: 1})
	s.Orientation = s.Orientation.Mul(ctrlRoll).Normalize()

	// Acceleration: body forces, gravity, and wind pressure on the
	// frontal area as a constant bias. The bias does not couple through
	// the relative airflow like the drag term does; that inconsistency
	// is a known simplification carried over from the original model.
	accel := net.Scale(1 / m.cfg.Mass)
	accel = accel.Add(mathx.Vec3{Y: -env.Gravity})
	accel = accel.Add(env.Wind.Scale(env.AirDensity * 0.1))

	s.Position = s.Position.Add(s.Velocity.Scale(dt))

	if s.Position.Y <= groundEpsilon {
		// Ground contact. Grade the landing before the state is
		// flattened, using the pre-clamp sink rate and orientation.
		m.checkLanding(s, env)

		s.Position.Y = 0
		s.Velocity.Y = 0
		accel = accel.Add(mathx.Vec3{Y: env.Gravity})
		s.Velocity = s.Velocity.Scale(groundFriction)

		// Wheels on the ground: pitch and roll snap to zero, and the
		// roll input becomes a rudder turning both the body and the
		// velocity about world up.
		s.Orientation = mathx.QuatFromDirectionAndRoll(mathx.Vec3{X: fwd.X, Z: fwd.Z}, 0)
		rudder := mathx.QuatFromAngleAxis(-s.Roll*rollRate, mathx.Vec3{Y: 1})
		s.Orientation = s.Orientation.Mul(rudder).Normalize()
		s.Velocity = rudder.Rotate(s.Velocity)
	} else {
		s.AirborneTicks++
		if s.AirborneTicks > landingReportTTLTicks {
			s.Landing = core.LandingReport{}
		}
	}

	s.Velocity = s.Velocity.Add(accel.Scale(dt))

	s.Forces = core.Forces{
		Lift:   lift,
		Drag:   drag,
		Thrust: thrust,
		Net:    net,
		Accel:  accel,
	}
}
