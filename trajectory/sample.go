package trajectory

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/spottraj/spatialmath"
)

// Timing describes how a continuous function is sampled.
type Timing struct {
	// RampUp is added to every point's offset so the actuator can reach the starting setpoint.
	RampUp time.Duration `json:"ramp_up"`
	// Duration is the half-open sampling window [0, Duration).
	Duration time.Duration `json:"duration"`
	// Step is the sampling interval.
	Step time.Duration `json:"step"`
}

// MaxPoints caps the number of points a single sampling may produce.
const MaxPoints = 1 << 20

// Validate ensures the timing describes a finite, non-empty sampling of at most MaxPoints points.
func (timing Timing) Validate() error {
	if timing.Step <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "step must be positive, got %s", timing.Step)
	}
	if timing.Duration <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "duration must be positive, got %s", timing.Duration)
	}
	if timing.RampUp < 0 {
		return errors.Wrapf(ErrInvalidParameter, "ramp up must not be negative, got %s", timing.RampUp)
	}
	if timing.RampUp > math.MaxInt64-timing.Duration {
		return errors.Wrapf(ErrInvalidParameter, "ramp up %s plus duration %s overflows", timing.RampUp, timing.Duration)
	}
	if n := timing.NumPoints(); n > MaxPoints {
		return errors.Wrapf(ErrInvalidParameter, "%d points exceeds the limit of %d", n, MaxPoints)
	}
	return nil
}

// NumPoints returns ceil(Duration/Step), the number of points Sample produces.
func (timing Timing) NumPoints() int {
	if timing.Step <= 0 || timing.Duration <= 0 {
		return 0
	}
	n := timing.Duration / timing.Step
	if timing.Duration%timing.Step != 0 {
		n++
	}
	return int(n)
}

// End returns the offset at which a trajectory sampled with this timing finishes.
func (timing Timing) End() time.Duration {
	return timing.RampUp + timing.Duration
}

// Sample evaluates fn at 0, Step, 2*Step, ... for every t < Duration. Each point's offset from
// referenceTime is t + RampUp. Sample times are integer multiples of Step, so no error
// accumulates over long trajectories.
func Sample[T any](referenceTime time.Time, timing Timing, fn Func[T]) (Trajectory[T], error) {
	if err := timing.Validate(); err != nil {
		return Trajectory[T]{}, err
	}
	if fn == nil {
		return Trajectory[T]{}, errors.Wrap(ErrInvalidParameter, "trajectory function is nil")
	}

	n := timing.NumPoints()
	points := make([]Waypoint[T], 0, n)
	for k := 0; k < n; k++ {
		t := time.Duration(k) * timing.Step
		points = append(points, Waypoint[T]{
			Value:              fn(t.Seconds()),
			TimeSinceReference: t + timing.RampUp,
		})
	}
	return Trajectory[T]{
		ReferenceTime: referenceTime,
		Interpolation: InterpolationNone,
		Points:        points,
	}, nil
}

// SampleScalar samples a scalar function and requests cubic interpolation.
func SampleScalar(referenceTime time.Time, timing Timing, fn Func[float64]) (Trajectory[float64], error) {
	traj, err := Sample(referenceTime, timing, fn)
	if err != nil {
		return traj, err
	}
	traj.Interpolation = InterpolationCubic
	return traj, nil
}

// SampleSE2 samples a planar pose function.
func SampleSE2(referenceTime time.Time, timing Timing, fn Func[spatialmath.Pose2D]) (Trajectory[spatialmath.Pose2D], error) {
	return Sample(referenceTime, timing, fn)
}

// SampleSE3 samples a spatial pose function.
func SampleSE3(referenceTime time.Time, timing Timing, fn Func[spatialmath.Pose]) (Trajectory[spatialmath.Pose], error) {
	return Sample(referenceTime, timing, fn)
}
