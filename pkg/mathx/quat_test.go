package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuatFromAngleAxis_RotatesRightHanded(t *testing.T) {
	// Quarter turn about world Y carries +X onto -Z.
	q := QuatFromAngleAxis(math.Pi/2, Vec3{Y: 1})
	v := q.Rotate(Vec3{X: 1})

	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 0, v.Y, 1e-12)
	assert.InDelta(t, -1, v.Z, 1e-12)
}

func TestQuatFromDirectionAndRoll_ForwardMatchesDirection(t *testing.T) {
	dirs := []Vec3{
		{Z: 1},
		{X: 1},
		{X: 0.5, Y: 0.3, Z: 0.8},
		{X: -1, Y: 0.1, Z: -0.2},
	}
	for _, dir := range dirs {
		q := QuatFromDirectionAndRoll(dir, 0)
		fwd := q.Forward()
		want := dir.Normalize()

		assert.InDelta(t, want.X, fwd.X, 1e-12)
		assert.InDelta(t, want.Y, fwd.Y, 1e-12)
		assert.InDelta(t, want.Z, fwd.Z, 1e-12)
		assert.InDelta(t, 1, q.Length(), 1e-12)
	}
}

func TestQuatFromDirectionAndRoll_NonUnitDirection(t *testing.T) {
	// Ground handling passes the forward axis projected onto the ground
	// plane, which is not unit length.
	q := QuatFromDirectionAndRoll(Vec3{X: 3, Z: 4}, 0)
	fwd := q.Forward()

	assert.InDelta(t, 0.6, fwd.X, 1e-12)
	assert.InDelta(t, 0, fwd.Y, 1e-12)
	assert.InDelta(t, 0.8, fwd.Z, 1e-12)
}

func TestEuler_RoundTrip(t *testing.T) {
	dir := Vec3{Y: math.Sin(DegToRad(3)), Z: math.Cos(DegToRad(3))}
	q := QuatFromDirectionAndRoll(dir, DegToRad(2))

	roll, pitch, _ := q.Euler()
	assert.InDelta(t, 2, roll, 1e-9)
	assert.InDelta(t, 3, pitch, 1e-9)
}

func TestEuler_AxisConvention(t *testing.T) {
	// x-angle is roll: rotation purely about the body forward axis.
	q := QuatFromAngleAxis(DegToRad(10), Vec3{X: 1})
	roll, pitch, heading := q.Euler()
	assert.InDelta(t, 10, roll, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)
	assert.InDelta(t, 0, heading, 1e-9)

	// z-angle is heading: rotation about world up.
	q = QuatFromAngleAxis(DegToRad(25), Vec3{Y: 1})
	roll, pitch, heading = q.Euler()
	assert.InDelta(t, 0, roll, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)
	assert.InDelta(t, 25, heading, 1e-9)
}

func TestQuatBetween_FullRotation(t *testing.T) {
	from := Vec3{X: 1}
	to := Vec3{X: 0, Y: 1, Z: 0}

	q, ok := QuatBetween(from, to, 1)
	require.True(t, ok)

	got := q.Rotate(from)
	assert.InDelta(t, to.X, got.X, 1e-12)
	assert.InDelta(t, to.Y, got.Y, 1e-12)
	assert.InDelta(t, to.Z, got.Z, 1e-12)
}

func TestQuatBetween_DampedRotationIsPartial(t *testing.T) {
	from := Vec3{X: 1}
	angle := DegToRad(4)
	to := Vec3{X: math.Cos(angle), Y: math.Sin(angle)}

	q, ok := QuatBetween(from, to, 0.001)
	require.True(t, ok)

	got := q.Rotate(from)
	moved := math.Acos(got.Dot(from))
	// Small-angle damping: the applied rotation is ~0.1% of the full angle.
	assert.InDelta(t, angle*0.001, moved, angle*0.0002)
	assert.Less(t, moved, angle)
}

func TestQuatBetween_AntiparallelIsDegenerate(t *testing.T) {
	_, ok := QuatBetween(Vec3{X: 1}, Vec3{X: -1}, 0.001)
	assert.False(t, ok)

	// Near-antiparallel within rounding is also rejected rather than
	// blowing up the normalization.
	_, ok = QuatBetween(Vec3{X: 1}, Vec3{X: -1, Y: 1e-15}, 0.001)
	assert.False(t, ok)
}

func TestMul_ComposesBodyLocalDeltas(t *testing.T) {
	// Rolling after pitching keeps the forward axis of the pitched
	// frame: a body-local roll must not move body forward.
	q := QuatFromDirectionAndRoll(Vec3{Y: 0.3, Z: 1}, 0)
	fwd := q.Forward()

	rolled := q.Mul(QuatFromAngleAxis(DegToRad(30), Vec3{X: 1})).Normalize()
	got := rolled.Forward()

	assert.InDelta(t, fwd.X, got.X, 1e-12)
	assert.InDelta(t, fwd.Y, got.Y, 1e-12)
	assert.InDelta(t, fwd.Z, got.Z, 1e-12)
}

func TestNormalize_RestoresUnitLength(t *testing.T) {
	q := Quat{W: 0.9, X: 0.1, Y: 0.2, Z: 0.3}
	assert.InDelta(t, 1, q.Normalize().Length(), 1e-15)
}
