// Package trajectory samples continuous functions of time into discrete, time-stamped
// trajectories and re-expresses pose trajectories in other frames.
package trajectory

import (
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrInvalidParameter is returned when sampling parameters cannot produce a finite trajectory.
var ErrInvalidParameter = errors.New("invalid parameter")

// Interpolation tells the controller how to interpolate between points.
type Interpolation int

const (
	// InterpolationNone leaves the choice to the controller's default.
	InterpolationNone Interpolation = iota
	// InterpolationCubic requests cubic interpolation between points.
	InterpolationCubic
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationNone:
		return "none"
	case InterpolationCubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// Func is a continuous trajectory: a pure function from elapsed seconds to a setpoint.
type Func[T any] func(t float64) T

// Waypoint is one sampled setpoint.
type Waypoint[T any] struct {
	Value              T
	TimeSinceReference time.Duration
}

// Trajectory is an ordered list of waypoints relative to an absolute reference time.
type Trajectory[T any] struct {
	ReferenceTime time.Time
	Interpolation Interpolation
	Points        []Waypoint[T]
}

// Len returns the number of points.
func (traj Trajectory[T]) Len() int {
	return len(traj.Points)
}

// Span returns the offsets of the first and last points.
func (traj Trajectory[T]) Span() (first, last time.Duration) {
	if len(traj.Points) == 0 {
		return 0, 0
	}
	return traj.Points[0].TimeSinceReference, traj.Points[len(traj.Points)-1].TimeSinceReference
}

// EndTime returns the absolute time of the last point.
func (traj Trajectory[T]) EndTime() time.Time {
	_, last := traj.Span()
	return traj.ReferenceTime.Add(last)
}

// Values returns the setpoints in order.
func (traj Trajectory[T]) Values() []T {
	return lo.Map(traj.Points, func(p Waypoint[T], _ int) T {
		return p.Value
	})
}

// Validate checks that the trajectory is non-empty and strictly increasing in time.
func (traj Trajectory[T]) Validate() error {
	if len(traj.Points) == 0 {
		return errors.Wrap(ErrInvalidParameter, "trajectory has no points")
	}
	for i := 1; i < len(traj.Points); i++ {
		if traj.Points[i].TimeSinceReference <= traj.Points[i-1].TimeSinceReference {
			return errors.Wrapf(ErrInvalidParameter, "point %d at %s does not follow point %d at %s",
				i, traj.Points[i].TimeSinceReference, i-1, traj.Points[i-1].TimeSinceReference)
		}
	}
	return nil
}

// Map returns a new trajectory with fn applied to every setpoint. Timing and interpolation are kept.
func Map[T, U any](traj Trajectory[T], fn func(T) U) Trajectory[U] {
	return Trajectory[U]{
		ReferenceTime: traj.ReferenceTime,
		Interpolation: traj.Interpolation,
		Points: lo.Map(traj.Points, func(p Waypoint[T], _ int) Waypoint[U] {
			return Waypoint[U]{Value: fn(p.Value), TimeSinceReference: p.TimeSinceReference}
		}),
	}
}
