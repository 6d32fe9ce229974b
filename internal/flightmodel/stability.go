package flightmodel

import "github.com/openfdm/flightsim/pkg/mathx"

// StabilityPolicy decides how the body orientation follows the velocity
// direction each tick. The stock policy is a damped chase; a full
// angular-momentum model could be substituted here without touching the
// force computation.
type StabilityPolicy interface {
	// Reorient returns the updated orientation given the current body
	// orientation and the world-space unit velocity axis. It reports
	// false when the update was skipped because the rotation is
	// degenerate (velocity exactly opposite the forward axis).
	Reorient(orient mathx.Quat, velAxis mathx.Vec3) (mathx.Quat, bool)
}

// DampedChase rotates the body a fixed fraction of the way from its
// forward axis toward the velocity axis every tick. With the default
// damping of 0.001 the body covers 0.1% of the remaining angle per
// tick, which at dt=0.001 yields aircraft-like directional stability.
type DampedChase struct {
	Damping float64
}

// Reorient implements StabilityPolicy. The delta is computed in the
// body frame and right-multiplied onto the orientation.
func (p DampedChase) Reorient(orient mathx.Quat, velAxis mathx.Vec3) (mathx.Quat, bool) {
	velLocal := orient.Conj().Rotate(velAxis)
	delta, ok := mathx.QuatBetween(mathx.Vec3{X: 1}, velLocal, p.Damping)
	if !ok {
		return orient, false
	}
	return orient.Mul(delta).Normalize(), true
}
