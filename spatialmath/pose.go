// Package spatialmath defines spatial mathematical operations on rigid transforms.
// Poses are stored as unit dual quaternions; translations are in metres.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/spottraj/utils"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin of some
// parent frame. A Pose read as a_T_b maps points expressed in frame b into frame a.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
}

// dualQuaternion implements Pose. The real part holds the rotation; the dual part holds
// 0.5 * translation * rotation.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the same orientation as its parent frame.
func NewZeroPose() Pose {
	return &dualQuaternion{dualquat.Number{Real: quat.Number{Real: 1}}}
}

// NewPose returns a pose at the given point with the given orientation. The orientation is
// normalized; a zero quaternion is treated as no rotation.
func NewPose(p r3.Vector, q quat.Number) Pose {
	q = Normalize(q)
	dq := &dualQuaternion{dualquat.Number{Real: q}}
	dq.setTranslation(p)
	return dq
}

// NewPoseFromPoint returns a pose at the given point with no rotation relative to its parent.
func NewPoseFromPoint(p r3.Vector) Pose {
	return NewPose(p, quat.Number{Real: 1})
}

// NewPoseFromOrientation returns a pose at the origin with the given orientation.
func NewPoseFromOrientation(q quat.Number) Pose {
	return NewPose(r3.Vector{}, q)
}

func (dq *dualQuaternion) setTranslation(p r3.Vector) {
	dq.Dual = quat.Scale(0.5, quat.Mul(quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}, dq.Real))
}

// Point returns the translation of the pose.
func (dq *dualQuaternion) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(dq.Dual, quat.Conj(dq.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation of the pose as a unit quaternion.
func (dq *dualQuaternion) Orientation() quat.Number {
	return dq.Real
}

func (dq *dualQuaternion) String() string {
	return PoseString(dq)
}

func asDualQuaternion(p Pose) *dualQuaternion {
	if dq, ok := p.(*dualQuaternion); ok {
		return dq
	}
	return NewPose(p.Point(), p.Orientation()).(*dualQuaternion)
}

// Compose returns a_T_c given a_T_b and b_T_c. Composition is associative but not commutative.
func Compose(a, b Pose) Pose {
	result := &dualQuaternion{dualquat.Mul(asDualQuaternion(a).Number, asDualQuaternion(b).Number)}
	// keep the rotation unit length so that long chains do not drift
	if n := quat.Abs(result.Real); n != 1 && n != 0 {
		result.Real = quat.Scale(1/n, result.Real)
		result.Dual = quat.Scale(1/n, result.Dual)
	}
	return result
}

// ComposeAll composes the given poses left to right.
func ComposeAll(poses ...Pose) Pose {
	result := NewZeroPose()
	for _, p := range poses {
		result = Compose(result, p)
	}
	return result
}

// PoseInverse returns b_T_a given a_T_b.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(Normalize(p.Orientation()))
	t := RotateVector(inv, p.Point())
	return NewPose(t.Mul(-1), inv)
}

// PoseBetween returns a_T_b given world_T_a and world_T_b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual returns whether two poses are within a small tolerance of each other.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps returns whether the translations of two poses are within epsilon metres of
// each other and their orientations are within epsilon per quaternion component.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PointAlmostEqual(a.Point(), b.Point(), epsilon) &&
		QuaternionAlmostEqual(a.Orientation(), b.Orientation(), epsilon)
}

// PointAlmostEqual returns whether two points are within epsilon of each other.
func PointAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return a.Sub(b).Norm() <= epsilon
}

// PoseString renders a pose as translation plus roll/pitch/yaw in degrees.
func PoseString(p Pose) string {
	pt := p.Point()
	ea := QuatToEulerAngles(p.Orientation())
	return fmt.Sprintf("X:%.3f Y:%.3f Z:%.3f Roll:%.2f Pitch:%.2f Yaw:%.2f",
		pt.X, pt.Y, pt.Z, utils.RadToDeg(ea.Roll), utils.RadToDeg(ea.Pitch), utils.RadToDeg(ea.Yaw))
}
