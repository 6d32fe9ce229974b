package mathx

import "math"

// Quat is a unit quaternion describing a body orientation. The body
// frame convention is: forward = rotated world X, up = rotated world Y,
// right = rotated world Z. Orientation deltas are body-local and are
// applied by right-multiplication followed by renormalization.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAngleAxis builds the rotation of angle radians about the given
// unit axis (right-hand rule).
func QuatFromAngleAxis(angle float64, axis Vec3) Quat {
	half := angle * 0.5
	s := math.Sin(half)
	return Quat{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// QuatFromDirectionAndRoll builds the orientation whose body-forward
// axis points along dir with the given roll (radians) about that axis.
// dir need not be unit length.
func QuatFromDirectionAndRoll(dir Vec3, roll float64) Quat {
	d, ok := dir.NormalizeSafe(1e-12)
	if !ok {
		return QuatFromAngleAxis(roll, Vec3{X: 1})
	}
	heading := math.Atan2(-d.Z, d.X)
	pitch := math.Asin(clamp(d.Y, -1, 1))

	qh := QuatFromAngleAxis(heading, Vec3{Y: 1})
	qp := QuatFromAngleAxis(pitch, Vec3{Z: 1})
	qr := QuatFromAngleAxis(roll, Vec3{X: 1})
	return qh.Mul(qp).Mul(qr).Normalize()
}

// QuatBetween builds the rotation carrying the unit vector from onto the
// unit vector to, with its rotation angle scaled down by damping (the
// vector part is scaled before normalization, so the result is a partial
// rotation toward the target). It reports false for the degenerate
// antiparallel case, where no unique shortest rotation exists; callers
// skip the update for that tick instead of dividing by zero.
func QuatBetween(from, to Vec3, damping float64) (Quat, bool) {
	axis := from.Cross(to)
	w := 1 + from.Dot(to)
	q := Quat{
		W: w,
		X: axis.X * damping,
		Y: axis.Y * damping,
		Z: axis.Z * damping,
	}
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-12 || math.IsNaN(n) {
		return QuatIdentity(), false
	}
	return Quat{q.W / n, q.X / n, q.Y / n, q.Z / n}, true
}

// Mul returns the Hamilton product q*other, composing other after q in
// the body-local sense.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Conj returns the conjugate (inverse for unit quaternions).
func (q Quat) Conj() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Length returns the quaternion magnitude.
func (q Quat) Length() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize rescales q to unit length. Composition drifts the magnitude
// over thousands of ticks, so every composition site renormalizes.
func (q Quat) Normalize() Quat {
	n := q.Length()
	if n == 0 {
		return QuatIdentity()
	}
	return Quat{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// Rotate applies the rotation to a world-space vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = q v q* expanded via t = 2(q_vec x v)
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// Forward returns the body forward axis in world space.
func (q Quat) Forward() Vec3 { return q.Rotate(Vec3{X: 1}) }

// Up returns the body up axis in world space.
func (q Quat) Up() Vec3 { return q.Rotate(Vec3{Y: 1}) }

// Right returns the body right axis in world space.
func (q Quat) Right() Vec3 { return q.Rotate(Vec3{Z: 1}) }

// Euler extracts roll, pitch and heading in degrees. The convention
// matches QuatFromDirectionAndRoll: heading about world Y, then pitch
// about the intermediate Z, then roll about the body X.
func (q Quat) Euler() (roll, pitch, heading float64) {
	roll = math.Atan2(2*(q.X*q.W-q.Y*q.Z), 1-2*(q.X*q.X+q.Z*q.Z))
	pitch = math.Asin(clamp(2*(q.X*q.Y+q.Z*q.W), -1, 1))
	heading = math.Atan2(2*(q.Y*q.W-q.X*q.Z), 1-2*(q.Y*q.Y+q.Z*q.Z))
	return RadToDeg(roll), RadToDeg(pitch), RadToDeg(heading)
}

// IsFinite reports whether all components are finite numbers.
func (q Quat) IsFinite() bool {
	return !math.IsNaN(q.W) && !math.IsInf(q.W, 0) &&
		!math.IsNaN(q.X) && !math.IsInf(q.X, 0) &&
		!math.IsNaN(q.Y) && !math.IsInf(q.Y, 0) &&
		!math.IsNaN(q.Z) && !math.IsInf(q.Z, 0)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
