package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spottraj.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Sampling.RampUp, test.ShouldEqual, 4*time.Second)
	test.That(t, cfg.Sampling.NumPoints(), test.ShouldEqual, 800)
	test.That(t, cfg.IncludeArm, test.ShouldBeTrue)
	test.That(t, cfg.IncludeBody, test.ShouldBeTrue)
	test.That(t, cfg.IncludeGripper, test.ShouldBeFalse)
	test.That(t, cfg.ExecuteMode, test.ShouldEqual, ExecuteAccept)

	// only the robot name is missing
	err := cfg.Validate("cfg")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"robot" is required`)

	cfg.Robot = "spot"
	test.That(t, cfg.Validate("cfg"), test.ShouldBeNil)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Sampling.Step = 0
	cfg.Limits.MaxAcceleration = -1
	cfg.FrameTimeout = 0
	cfg.ExecuteMode = "eventually"

	err := cfg.Validate("cfg")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step must be positive")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"max_acceleration" must be positive`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"frame_timeout" must be positive`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown "execute_mode" "eventually"`)
}

func TestRead(t *testing.T) {
	t.Setenv("SPOT_NAME", "spot-7")
	path := writeConfig(t, `{
		"robot": "${SPOT_NAME}",
		"sampling": {"ramp_up": "2s", "duration": 10, "step": "100ms"},
		"calibration": {
			"body_t_task": {"x": 1, "rotation": {"w": 1, "x": 0, "y": 0, "z": 0}},
			"wrist_t_tool": {"x": 0.3, "z": 0.1, "rotation": {"w": 0, "x": 0, "y": 0, "z": 1}}
		},
		"limits": {"max_linear_velocity": 1.5},
		"include_gripper": true,
		"step_timeout": "30s",
		"execute_mode": "complete"
	}`)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Robot, test.ShouldEqual, "spot-7")
	test.That(t, cfg.Sampling.RampUp, test.ShouldEqual, 2*time.Second)
	test.That(t, cfg.Sampling.Duration, test.ShouldEqual, 10*time.Second)
	test.That(t, cfg.Sampling.Step, test.ShouldEqual, 100*time.Millisecond)
	test.That(t, cfg.Limits.MaxLinearVelocity, test.ShouldEqual, 1.5)
	test.That(t, cfg.Limits.MaxAngularVelocity, test.ShouldEqual, command.DefaultLimits().MaxAngularVelocity)
	test.That(t, cfg.IncludeGripper, test.ShouldBeTrue)
	test.That(t, cfg.IncludeArm, test.ShouldBeTrue)
	test.That(t, cfg.StepTimeout, test.ShouldEqual, 30*time.Second)
	test.That(t, cfg.FrameTimeout, test.ShouldEqual, Default().FrameTimeout)
	test.That(t, cfg.ExecuteMode, test.ShouldEqual, ExecuteComplete)

	cal := cfg.CommandCalibration()
	test.That(t, cal.RootFrame, test.ShouldEqual, referenceframe.OdomFrame)
	test.That(t, cal.MobilityFrame, test.ShouldEqual, referenceframe.VisionFrame)
	test.That(t, spatialmath.PoseAlmostEqual(cal.BodyTTask, spatialmath.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(
		cal.WristTTool,
		spatialmath.NewPose(r3.Vector{X: 0.3, Z: 0.1}, spatialmath.NewQuaternion(0, 0, 0, 1)),
	), test.ShouldBeTrue)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Read(writeConfig(t, `{"robot": `))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse config")

	_, err = Read(writeConfig(t, `{"robot": "spot", "sampling": {"step": "fast"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode config")

	_, err = Read(writeConfig(t, `{"robot": "spot", "include_wings": true}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "include_wings")

	_, err = FromReader("inline", strings.NewReader(`{"robot": "spot", "sampling": {"duration": "-1s"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duration must be positive")

	_, err = FromReader("inline", strings.NewReader(`{"robot": "spot", "sampling": {"duration": "2562047h"}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, trajectory.ErrInvalidParameter), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exceeds the limit")
}

func TestPoseConfigRoundTrip(t *testing.T) {
	cal := command.DefaultCalibration()
	pc := NewPoseConfig(cal.WristTTool)
	test.That(t, spatialmath.PoseAlmostEqual(pc.Pose(), cal.WristTTool), test.ShouldBeTrue)
}
