// Package config defines and validates the configuration of a batch trajectory run.
package config

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/logging"
	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
	"go.viam.com/spottraj/utils"
)

// ExecuteMode decides when the trajectory step of a run counts as finished.
type ExecuteMode string

const (
	// ExecuteAccept finishes the step as soon as the robot accepts the command.
	ExecuteAccept ExecuteMode = "accept"
	// ExecuteComplete additionally waits until the last waypoint's time has passed.
	ExecuteComplete ExecuteMode = "complete"
)

// Rotation is a quaternion in w, x, y, z order.
type Rotation struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PoseConfig is a pose as written in a config file: a translation in metres and a quaternion.
type PoseConfig struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
	Rotation Rotation `json:"rotation"`
}

// Pose converts the config into a spatialmath.Pose.
func (pc PoseConfig) Pose() spatialmath.Pose {
	return spatialmath.NewPose(
		r3.Vector{X: pc.X, Y: pc.Y, Z: pc.Z},
		spatialmath.NewQuaternion(pc.Rotation.W, pc.Rotation.X, pc.Rotation.Y, pc.Rotation.Z),
	)
}

// NewPoseConfig converts a pose into its config form.
func NewPoseConfig(p spatialmath.Pose) PoseConfig {
	pt := p.Point()
	q := p.Orientation()
	return PoseConfig{X: pt.X, Y: pt.Y, Z: pt.Z, Rotation: Rotation{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}}
}

// Calibration holds per-robot fixed offsets.
type Calibration struct {
	BodyTTask  PoseConfig `json:"body_t_task"`
	WristTTool PoseConfig `json:"wrist_t_tool"`
}

// Config is the full configuration of a run.
type Config struct {
	Robot       string            `json:"robot"`
	Sampling    trajectory.Timing `json:"sampling"`
	Calibration Calibration       `json:"calibration"`
	Limits      command.Limits    `json:"limits"`
	IncludeArm  bool              `json:"include_arm"`
	IncludeBody bool              `json:"include_body"`
	// Gripper trajectories are off by default: the robot rejects batched gripper trajectories
	// whose reference time is earlier than its own clock.
	IncludeGripper bool          `json:"include_gripper"`
	FrameTimeout   time.Duration `json:"frame_timeout"`
	StepTimeout    time.Duration `json:"step_timeout"`
	ExecuteMode    ExecuteMode   `json:"execute_mode"`
	LogLevel       string        `json:"log_level"`
}

// Default returns the configuration of the reference batch run: 40 seconds of trajectory sampled
// every 50ms after a 4 second ramp up, arm and body only.
func Default() *Config {
	cal := command.DefaultCalibration()
	return &Config{
		Sampling: trajectory.Timing{
			RampUp:   4 * time.Second,
			Duration: 40 * time.Second,
			Step:     50 * time.Millisecond,
		},
		Calibration: Calibration{
			BodyTTask:  NewPoseConfig(cal.BodyTTask),
			WristTTool: NewPoseConfig(cal.WristTTool),
		},
		Limits:       command.DefaultLimits(),
		IncludeArm:   true,
		IncludeBody:  true,
		FrameTimeout: 10 * time.Second,
		StepTimeout:  time.Minute,
		ExecuteMode:  ExecuteAccept,
		LogLevel:     "info",
	}
}

// Validate ensures all parts of the config are valid. Every problem found is returned.
func (c *Config) Validate(path string) error {
	var errs error
	if c.Robot == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "robot"))
	}
	if err := c.Sampling.Validate(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path+".sampling", err))
	}
	for name, v := range map[string]float64{
		"max_linear_velocity":  c.Limits.MaxLinearVelocity,
		"max_angular_velocity": c.Limits.MaxAngularVelocity,
		"max_acceleration":     c.Limits.MaxAcceleration,
	} {
		if v <= 0 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path+".limits",
				errors.Errorf("%q must be positive, got %v", name, v)))
		}
	}
	if c.FrameTimeout <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"frame_timeout\" must be positive, got %s", c.FrameTimeout)))
	}
	if c.StepTimeout < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"step_timeout\" must not be negative, got %s", c.StepTimeout)))
	}
	if _, err := logging.LevelFromString(c.LogLevel); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	switch c.ExecuteMode {
	case ExecuteAccept, ExecuteComplete:
	default:
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("unknown \"execute_mode\" %q", c.ExecuteMode)))
	}
	return errs
}

// CommandCalibration returns the calibration used by the command assembler.
func (c *Config) CommandCalibration() command.Calibration {
	return command.Calibration{
		BodyTTask:     c.Calibration.BodyTTask.Pose(),
		WristTTool:    c.Calibration.WristTTool.Pose(),
		RootFrame:     referenceframe.OdomFrame,
		MobilityFrame: referenceframe.VisionFrame,
	}
}
