package command

import (
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// ToProto renders the command as the descriptor handed to the robot transport. Times are
// encoded with the fields of google.protobuf.Timestamp and google.protobuf.Duration. Actuators
// that are not commanded have no key.
func (c *RobotCommand) ToProto() (*structpb.Struct, error) {
	if c == nil {
		return nil, errors.New("nil robot command")
	}
	if c.ArmPreset != ArmPresetNone {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			"arm_command": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"named_arm_position": structpb.NewStringValue(c.ArmPreset.String()),
			}}),
		}}, nil
	}
	if c.Synchronized == nil {
		return nil, errors.New("robot command has neither a preset nor a synchronized command")
	}

	synced := map[string]*structpb.Value{}
	if arm := c.Synchronized.Arm; arm != nil {
		synced["arm_command"] = structValue(map[string]*structpb.Value{
			"arm_cartesian_command": structValue(map[string]*structpb.Value{
				"root_frame_name":         structpb.NewStringValue(arm.RootFrameName),
				"root_tform_task":         se3Value(arm.RootTTask),
				"wrist_tform_tool":        se3Value(arm.WristTTool),
				"pose_trajectory_in_task": trajectoryValue(arm.PoseTrajectoryInTask, "pose", se3Value),
				"max_linear_velocity":     structpb.NewNumberValue(arm.Limits.MaxLinearVelocity),
				"max_angular_velocity":    structpb.NewNumberValue(arm.Limits.MaxAngularVelocity),
				"maximum_acceleration":    structpb.NewNumberValue(arm.Limits.MaxAcceleration),
			}),
		})
	}
	if mobility := c.Synchronized.Mobility; mobility != nil {
		synced["mobility_command"] = structValue(map[string]*structpb.Value{
			"se2_trajectory_request": structValue(map[string]*structpb.Value{
				"se2_frame_name": structpb.NewStringValue(mobility.SE2FrameName),
				"trajectory":     trajectoryValue(mobility.Trajectory, "pose", se2Value),
			}),
		})
	}
	if gripper := c.Synchronized.Gripper; gripper != nil {
		synced["gripper_command"] = structValue(map[string]*structpb.Value{
			"claw_gripper_command": structValue(map[string]*structpb.Value{
				"trajectory": trajectoryValue(gripper.Trajectory, "point", structpb.NewNumberValue),
			}),
		})
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"synchronized_command": structValue(synced),
	}}, nil
}

// MarshalJSON renders the descriptor as JSON.
func (c *RobotCommand) MarshalJSON() ([]byte, error) {
	pb, err := c.ToProto()
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(pb)
}

func structValue(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func timestampValue(t time.Time) *structpb.Value {
	ts := timestamppb.New(t)
	return structValue(map[string]*structpb.Value{
		"seconds": structpb.NewNumberValue(float64(ts.GetSeconds())),
		"nanos":   structpb.NewNumberValue(float64(ts.GetNanos())),
	})
}

func durationValue(d time.Duration) *structpb.Value {
	dur := durationpb.New(d)
	return structValue(map[string]*structpb.Value{
		"seconds": structpb.NewNumberValue(float64(dur.GetSeconds())),
		"nanos":   structpb.NewNumberValue(float64(dur.GetNanos())),
	})
}

func se3Value(p spatialmath.Pose) *structpb.Value {
	pt := p.Point()
	q := p.Orientation()
	return structValue(map[string]*structpb.Value{
		"position": structValue(map[string]*structpb.Value{
			"x": structpb.NewNumberValue(pt.X),
			"y": structpb.NewNumberValue(pt.Y),
			"z": structpb.NewNumberValue(pt.Z),
		}),
		"rotation": structValue(map[string]*structpb.Value{
			"w": structpb.NewNumberValue(q.Real),
			"x": structpb.NewNumberValue(q.Imag),
			"y": structpb.NewNumberValue(q.Jmag),
			"z": structpb.NewNumberValue(q.Kmag),
		}),
	})
}

func se2Value(p spatialmath.Pose2D) *structpb.Value {
	return structValue(map[string]*structpb.Value{
		"position": structValue(map[string]*structpb.Value{
			"x": structpb.NewNumberValue(p.X),
			"y": structpb.NewNumberValue(p.Y),
		}),
		"angle": structpb.NewNumberValue(p.Theta),
	})
}

// trajectoryValue encodes a trajectory whose points carry their value under valueKey. The
// interpolation key is left out unless one was requested.
func trajectoryValue[T any](
	traj trajectory.Trajectory[T],
	valueKey string,
	encode func(T) *structpb.Value,
) *structpb.Value {
	points := make([]*structpb.Value, 0, traj.Len())
	for _, p := range traj.Points {
		points = append(points, structValue(map[string]*structpb.Value{
			valueKey:               encode(p.Value),
			"time_since_reference": durationValue(p.TimeSinceReference),
		}))
	}
	fields := map[string]*structpb.Value{
		"reference_time": timestampValue(traj.ReferenceTime),
		"points":         structpb.NewListValue(&structpb.ListValue{Values: points}),
	}
	if traj.Interpolation == trajectory.InterpolationCubic {
		fields["interpolation"] = structpb.NewStringValue("POS_INTERP_CUBIC")
	}
	return structValue(fields)
}
