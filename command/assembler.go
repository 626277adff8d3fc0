package command

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// Calibration holds the fixed, per-robot offsets used by arm commands.
type Calibration struct {
	// BodyTTask places the task frame, in which arm trajectories are drawn, relative to the
	// gravity aligned body.
	BodyTTask spatialmath.Pose
	// WristTTool places the tool point relative to the wrist.
	WristTTool spatialmath.Pose
	// RootFrame is the world-fixed frame arm commands are expressed in.
	RootFrame string
	// MobilityFrame is the world-fixed frame body trajectories are expressed in.
	MobilityFrame string
}

// DefaultCalibration puts the task frame 90cm in front of the body with z pointing back at the
// robot, x off its right side and y up, and the tool 25cm past the wrist.
func DefaultCalibration() Calibration {
	rot := spatialmath.NewQuaternion(0.5, 0.5, -0.5, -0.5)
	return Calibration{
		BodyTTask:     spatialmath.NewPose(r3.Vector{X: 0.9}, rot),
		WristTTool:    spatialmath.NewPose(r3.Vector{X: 0.25}, rot),
		RootFrame:     referenceframe.OdomFrame,
		MobilityFrame: referenceframe.VisionFrame,
	}
}

// Assembler packages per-actuator trajectories into one synchronized robot command.
type Assembler struct {
	Calibration Calibration
	Limits      Limits
}

// NewAssembler returns an Assembler with the given calibration and limits.
func NewAssembler(calibration Calibration, limits Limits) *Assembler {
	return &Assembler{Calibration: calibration, Limits: limits}
}

// Assemble builds a synchronized command. Each actuator is commanded iff its trajectory is
// non-nil; absent actuators are left out rather than sent an empty trajectory. rootTBody is the
// pose of the gravity aligned body in the calibration's root frame at planning time and is only
// needed when arm is non-nil. Present trajectories must be valid; nothing is assembled otherwise.
func (a *Assembler) Assemble(
	rootTBody spatialmath.Pose,
	arm *trajectory.Trajectory[spatialmath.Pose],
	body *trajectory.Trajectory[spatialmath.Pose2D],
	gripper *trajectory.Trajectory[float64],
) (*RobotCommand, error) {
	synced := &SynchronizedCommand{}

	if arm != nil {
		if err := arm.Validate(); err != nil {
			return nil, errors.Wrap(err, "arm trajectory")
		}
		if rootTBody == nil {
			return nil, errors.Wrap(trajectory.ErrInvalidParameter, "arm trajectory requires the body pose in the root frame")
		}
		synced.Arm = &ArmCartesianCommand{
			RootFrameName:        a.Calibration.RootFrame,
			RootTTask:            spatialmath.Compose(rootTBody, a.Calibration.BodyTTask),
			WristTTool:           a.Calibration.WristTTool,
			PoseTrajectoryInTask: *arm,
			Limits:               a.Limits,
		}
	}

	if body != nil {
		if err := body.Validate(); err != nil {
			return nil, errors.Wrap(err, "body trajectory")
		}
		synced.Mobility = &SE2TrajectoryCommand{
			SE2FrameName: a.Calibration.MobilityFrame,
			Trajectory:   *body,
		}
	}

	if gripper != nil {
		if err := gripper.Validate(); err != nil {
			return nil, errors.Wrap(err, "gripper trajectory")
		}
		synced.Gripper = &ClawGripperCommand{Trajectory: *gripper}
	}

	return &RobotCommand{Synchronized: synced}, nil
}
