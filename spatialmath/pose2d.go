package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/spottraj/utils"
)

// Pose2D is a planar rigid transform: a translation in the xy plane and a heading about +Z.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2D returns a planar pose with its heading wrapped to (-pi, pi].
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: utils.WrapAngle(theta)}
}

// Compose2D returns a_T_c given a_T_b and b_T_c.
func Compose2D(a, b Pose2D) Pose2D {
	c, s := math.Cos(a.Theta), math.Sin(a.Theta)
	return NewPose2D(
		a.X+c*b.X-s*b.Y,
		a.Y+s*b.X+c*b.Y,
		a.Theta+b.Theta,
	)
}

// Inverse returns b_T_a given a_T_b.
func (p Pose2D) Inverse() Pose2D {
	c, s := math.Cos(p.Theta), math.Sin(p.Theta)
	return NewPose2D(-c*p.X-s*p.Y, s*p.X-c*p.Y, -p.Theta)
}

// AsPose lifts the planar pose into SE(3) with z = 0 and rotation only about +Z.
func (p Pose2D) AsPose() Pose {
	return NewPose(r3.Vector{X: p.X, Y: p.Y}, QuatFromYaw(p.Theta))
}

func (p Pose2D) String() string {
	return fmt.Sprintf("X:%.3f Y:%.3f Theta:%.2f", p.X, p.Y, utils.RadToDeg(p.Theta))
}

// Pose2DAlmostEqual returns whether two planar poses are within epsilon in translation and heading.
func Pose2DAlmostEqual(a, b Pose2D, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		math.Abs(utils.WrapAngle(a.Theta-b.Theta)) <= epsilon
}

// ClosestSE2 projects a 3D pose onto the xy plane. The translation keeps x and y and drops z;
// the heading is the yaw of the rotation with its roll and pitch components removed. Any
// out-of-plane tilt of the original pose is lost.
func ClosestSE2(p Pose) Pose2D {
	pt := p.Point()
	q := p.Orientation()
	w, z := q.Real, q.Kmag
	if w == 0 && z == 0 {
		// a pure half turn about an in-plane axis has no defined heading
		return NewPose2D(pt.X, pt.Y, 0)
	}
	return NewPose2D(pt.X, pt.Y, 2*math.Atan2(z, w))
}
