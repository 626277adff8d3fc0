package batch

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// ActuatorSummary describes the trajectory sent to one actuator.
type ActuatorSummary struct {
	Actuator      string
	Frame         string
	Points        int
	First         time.Duration
	Last          time.Duration
	Interpolation trajectory.Interpolation
	// Quantity names the tracked value. Min, Max and Mean are taken over every point.
	Quantity string
	Min      float64
	Max      float64
	Mean     float64
}

// Summary returns one entry per commanded actuator, in arm, body, gripper order.
func (p *Plan) Summary() ([]ActuatorSummary, error) {
	var out []ActuatorSummary
	synced := p.Command.Synchronized
	if synced == nil {
		return out, nil
	}
	if synced.Arm != nil {
		s, err := summarize("arm", synced.Arm.RootFrameName, "reach (m)", synced.Arm.PoseTrajectoryInTask,
			func(pose spatialmath.Pose) float64 { return pose.Point().Norm() })
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if synced.Mobility != nil {
		s, err := summarize("body", synced.Mobility.SE2FrameName, "heading (rad)", synced.Mobility.Trajectory,
			func(pose spatialmath.Pose2D) float64 { return pose.Theta })
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if synced.Gripper != nil {
		s, err := summarize("gripper", "", "opening", synced.Gripper.Trajectory,
			func(v float64) float64 { return v })
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func summarize[T any](
	actuator, frame, quantity string,
	traj trajectory.Trajectory[T],
	value func(T) float64,
) (ActuatorSummary, error) {
	data := stats.Float64Data(trajectory.Map(traj, value).Values())
	summary := ActuatorSummary{
		Actuator:      actuator,
		Frame:         frame,
		Points:        traj.Len(),
		Interpolation: traj.Interpolation,
		Quantity:      quantity,
	}
	summary.First, summary.Last = traj.Span()

	var err error
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, errors.Wrap(err, actuator)
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, errors.Wrap(err, actuator)
	}
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, errors.Wrap(err, actuator)
	}
	return summary, nil
}
