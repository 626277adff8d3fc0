// Package command defines the command descriptors sent to the robot and assembles per-actuator
// trajectories into one synchronized command.
package command

import (
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// ArmPreset is a parameterless arm posture command.
type ArmPreset int

const (
	// ArmPresetNone means the command is not a preset.
	ArmPresetNone ArmPreset = iota
	// ArmPresetReady unstows the arm in front of the body.
	ArmPresetReady
	// ArmPresetStow folds the arm onto the body.
	ArmPresetStow
)

func (p ArmPreset) String() string {
	switch p {
	case ArmPresetNone:
		return "none"
	case ArmPresetReady:
		return "ready"
	case ArmPresetStow:
		return "stow"
	default:
		return "unknown"
	}
}

// Limits caps the arm's cartesian motion.
type Limits struct {
	MaxLinearVelocity  float64 `json:"max_linear_velocity"`
	MaxAngularVelocity float64 `json:"max_angular_velocity"`
	MaxAcceleration    float64 `json:"max_acceleration"`
}

// DefaultLimits are high enough that the sampled trajectory's own speed is never capped.
func DefaultLimits() Limits {
	return Limits{
		MaxLinearVelocity:  10000,
		MaxAngularVelocity: 10000,
		MaxAcceleration:    10000,
	}
}

// ArmCartesianCommand makes the tool follow a pose trajectory expressed in a task frame.
type ArmCartesianCommand struct {
	RootFrameName        string
	RootTTask            spatialmath.Pose
	WristTTool           spatialmath.Pose
	PoseTrajectoryInTask trajectory.Trajectory[spatialmath.Pose]
	Limits               Limits
}

// SE2TrajectoryCommand makes the body follow a planar trajectory in the named frame.
type SE2TrajectoryCommand struct {
	SE2FrameName string
	Trajectory   trajectory.Trajectory[spatialmath.Pose2D]
}

// ClawGripperCommand makes the gripper follow an opening trajectory.
type ClawGripperCommand struct {
	Trajectory trajectory.Trajectory[float64]
}

// SynchronizedCommand bundles independent actuator commands that share one time reference.
// A nil field means that actuator is not commanded.
type SynchronizedCommand struct {
	Arm      *ArmCartesianCommand
	Mobility *SE2TrajectoryCommand
	Gripper  *ClawGripperCommand
}

// Empty reports whether no actuator is commanded.
func (s *SynchronizedCommand) Empty() bool {
	return s == nil || (s.Arm == nil && s.Mobility == nil && s.Gripper == nil)
}

// RobotCommand is one request to the robot: either an arm preset or a synchronized command.
type RobotCommand struct {
	ArmPreset    ArmPreset
	Synchronized *SynchronizedCommand
}

// ReadyArm returns the command that unstows the arm.
func ReadyArm() *RobotCommand {
	return &RobotCommand{ArmPreset: ArmPresetReady}
}

// StowArm returns the command that stows the arm.
func StowArm() *RobotCommand {
	return &RobotCommand{ArmPreset: ArmPresetStow}
}

// Kind names the command for logs.
func (c *RobotCommand) Kind() string {
	switch {
	case c == nil:
		return "nil"
	case c.ArmPreset == ArmPresetReady:
		return "arm_ready"
	case c.ArmPreset == ArmPresetStow:
		return "arm_stow"
	case c.Synchronized != nil:
		return "synchronized"
	default:
		return "empty"
	}
}
