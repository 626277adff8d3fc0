package trajectory

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/utils"
)

// Rhodonea returns an arm trajectory tracing a rose curve with the given number of petals in
// the task frame's xy plane. One full curve takes period seconds; radius is in metres.
func Rhodonea(petals int, period, radius float64) Func[spatialmath.Pose] {
	return func(t float64) spatialmath.Pose {
		tNorm := t / period
		r := radius * math.Sin(math.Pi*float64(petals)*tNorm)
		return spatialmath.NewPoseFromPoint(r3.Vector{
			X: r * math.Cos(math.Pi*tNorm),
			Y: r * math.Sin(math.Pi*tNorm),
		})
	}
}

// BodySway returns a body trajectory holding a fixed forward offset while the heading swings
// sinusoidally by up to amplitude radians once per period seconds.
func BodySway(forward, amplitude, period float64) Func[spatialmath.Pose2D] {
	return func(t float64) spatialmath.Pose2D {
		tNorm := t / period
		return spatialmath.NewPose2D(forward, 0, amplitude*math.Sin(2*math.Pi*tNorm))
	}
}

// GripperPulse returns a gripper trajectory that closes and opens cycles times per period
// seconds. Values are in [-1, 0]; 0 is closed.
func GripperPulse(cycles int, period float64) Func[float64] {
	return func(t float64) float64 {
		tNorm := t / period
		return -math.Abs(math.Sin(math.Pi * float64(cycles) * tNorm))
	}
}

// Default curves drawn by the batch routine: a five petal rose with the hand, a +/-20 degree
// body sway and a gripper that pulses eight times, all with a ten second period.
var (
	DefaultArmCurve     = Rhodonea(5, 10, 0.4)
	DefaultBodyCurve    = BodySway(0.1, utils.DegToRad(20), 10)
	DefaultGripperCurve = GripperPulse(8, 10)
)
