package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// EulerAngles are roll, pitch and yaw in radians, applied in z-y'-x" order.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewQuaternion returns the normalized quaternion w + xi + yj + zk.
func NewQuaternion(w, x, y, z float64) quat.Number {
	return Normalize(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})
}

// Normalize returns the unit quaternion pointing the same way as q. The zero quaternion becomes
// the identity rotation.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// QuatFromAxisAngle returns the rotation of theta radians about the given axis.
func QuatFromAxisAngle(axis r3.Vector, theta float64) quat.Number {
	if axis.Norm() == 0 {
		return quat.Number{Real: 1}
	}
	axis = axis.Normalize()
	s := math.Sin(theta / 2)
	return quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// QuatFromYaw returns the rotation of yaw radians about +Z.
func QuatFromYaw(yaw float64) quat.Number {
	return QuatFromAxisAngle(r3.Vector{Z: 1}, yaw)
}

// QuatFromEulerAngles converts roll, pitch and yaw to a unit quaternion.
func QuatFromEulerAngles(ea EulerAngles) quat.Number {
	cr, sr := math.Cos(ea.Roll/2), math.Sin(ea.Roll/2)
	cp, sp := math.Cos(ea.Pitch/2), math.Sin(ea.Pitch/2)
	cy, sy := math.Cos(ea.Yaw/2), math.Sin(ea.Yaw/2)
	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// QuatToEulerAngles converts a rotation unit quaternion to euler angles.
// See https://en.wikipedia.org/wiki/Conversion_between_quaternions_and_Euler_angles
func QuatToEulerAngles(q quat.Number) EulerAngles {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinp := 2 * (w*y - x*z)
	// clamp for numerical noise near the poles
	sinp = math.Max(-1, math.Min(1, sinp))

	return EulerAngles{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(sinp),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuaternionAlmostEqual returns whether two quaternions describe the same rotation within
// epsilon per component. q and -q are treated as equal.
func QuaternionAlmostEqual(a, b quat.Number, epsilon float64) bool {
	return quatComponentsClose(a, b, epsilon) || quatComponentsClose(a, Flip(b), epsilon)
}

func quatComponentsClose(a, b quat.Number, epsilon float64) bool {
	return math.Abs(a.Real-b.Real) <= epsilon &&
		math.Abs(a.Imag-b.Imag) <= epsilon &&
		math.Abs(a.Jmag-b.Jmag) <= epsilon &&
		math.Abs(a.Kmag-b.Kmag) <= epsilon
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}
