package command

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"google.golang.org/protobuf/types/known/structpb"

	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

var (
	refTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	timing  = trajectory.Timing{RampUp: 4 * time.Second, Duration: time.Second, Step: 250 * time.Millisecond}
)

func sampleAll(t *testing.T) (
	trajectory.Trajectory[spatialmath.Pose],
	trajectory.Trajectory[spatialmath.Pose2D],
	trajectory.Trajectory[float64],
) {
	t.Helper()
	arm, err := trajectory.SampleSE3(refTime, timing, trajectory.DefaultArmCurve)
	test.That(t, err, test.ShouldBeNil)
	body, err := trajectory.SampleSE2(refTime, timing, trajectory.DefaultBodyCurve)
	test.That(t, err, test.ShouldBeNil)
	gripper, err := trajectory.SampleScalar(refTime, timing, trajectory.DefaultGripperCurve)
	test.That(t, err, test.ShouldBeNil)
	return arm, body, gripper
}

func TestAssembleNothing(t *testing.T) {
	assembler := NewAssembler(DefaultCalibration(), DefaultLimits())
	cmd, err := assembler.Assemble(nil, nil, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.Synchronized, test.ShouldNotBeNil)
	test.That(t, cmd.Synchronized.Arm, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Mobility, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Gripper, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Empty(), test.ShouldBeTrue)

	pb, err := cmd.ToProto()
	test.That(t, err, test.ShouldBeNil)
	synced := pb.Fields["synchronized_command"].GetStructValue()
	test.That(t, synced.Fields, test.ShouldBeEmpty)
}

func TestAssembleAll(t *testing.T) {
	arm, body, gripper := sampleAll(t)
	limits := Limits{MaxLinearVelocity: 1, MaxAngularVelocity: 2, MaxAcceleration: 3}
	assembler := NewAssembler(DefaultCalibration(), limits)

	odomTBody := spatialmath.NewPose(r3.Vector{X: 5, Y: -1, Z: 0.45}, spatialmath.QuatFromYaw(0.3))
	cmd, err := assembler.Assemble(odomTBody, &arm, &body, &gripper)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.Kind(), test.ShouldEqual, "synchronized")

	armCmd := cmd.Synchronized.Arm
	test.That(t, armCmd, test.ShouldNotBeNil)
	test.That(t, armCmd.RootFrameName, test.ShouldEqual, "odom")
	test.That(t, armCmd.Limits, test.ShouldResemble, limits)
	test.That(t, armCmd.PoseTrajectoryInTask.Len(), test.ShouldEqual, 4)
	expectedTask := spatialmath.Compose(odomTBody, DefaultCalibration().BodyTTask)
	test.That(t, spatialmath.PoseAlmostEqual(armCmd.RootTTask, expectedTask), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(armCmd.WristTTool, DefaultCalibration().WristTTool), test.ShouldBeTrue)

	test.That(t, cmd.Synchronized.Mobility.SE2FrameName, test.ShouldEqual, "vision")
	test.That(t, cmd.Synchronized.Mobility.Trajectory.Len(), test.ShouldEqual, 4)
	test.That(t, cmd.Synchronized.Gripper.Trajectory.Interpolation, test.ShouldEqual, trajectory.InterpolationCubic)
}

func TestAssembleOnlyPresentActuators(t *testing.T) {
	_, body, _ := sampleAll(t)
	assembler := NewAssembler(DefaultCalibration(), DefaultLimits())
	cmd, err := assembler.Assemble(nil, nil, &body, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Arm, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Gripper, test.ShouldBeNil)
	test.That(t, cmd.Synchronized.Mobility, test.ShouldNotBeNil)

	pb, err := cmd.ToProto()
	test.That(t, err, test.ShouldBeNil)
	synced := pb.Fields["synchronized_command"].GetStructValue()
	test.That(t, synced.Fields, test.ShouldContainKey, "mobility_command")
	test.That(t, synced.Fields, test.ShouldNotContainKey, "arm_command")
	test.That(t, synced.Fields, test.ShouldNotContainKey, "gripper_command")
}

func TestAssembleRejectsInvalid(t *testing.T) {
	arm, _, _ := sampleAll(t)
	assembler := NewAssembler(DefaultCalibration(), DefaultLimits())

	_, err := assembler.Assemble(nil, &arm, nil, nil)
	test.That(t, errors.Is(err, trajectory.ErrInvalidParameter), test.ShouldBeTrue)

	empty := trajectory.Trajectory[float64]{}
	_, err = assembler.Assemble(nil, nil, nil, &empty)
	test.That(t, errors.Is(err, trajectory.ErrInvalidParameter), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "gripper")
}

func TestPresets(t *testing.T) {
	test.That(t, ReadyArm().Kind(), test.ShouldEqual, "arm_ready")
	test.That(t, StowArm().Kind(), test.ShouldEqual, "arm_stow")

	pb, err := StowArm().ToProto()
	test.That(t, err, test.ShouldBeNil)
	arm := pb.Fields["arm_command"].GetStructValue()
	test.That(t, arm.Fields["named_arm_position"].GetStringValue(), test.ShouldEqual, "stow")
}

func TestDescriptorJSON(t *testing.T) {
	_, _, gripper := sampleAll(t)
	assembler := NewAssembler(DefaultCalibration(), DefaultLimits())
	cmd, err := assembler.Assemble(nil, nil, nil, &gripper)
	test.That(t, err, test.ShouldBeNil)

	raw, err := json.Marshal(cmd)
	test.That(t, err, test.ShouldBeNil)

	var decoded map[string]interface{}
	test.That(t, json.Unmarshal(raw, &decoded), test.ShouldBeNil)
	synced := decoded["synchronized_command"].(map[string]interface{})
	traj := synced["gripper_command"].(map[string]interface{})["claw_gripper_command"].(map[string]interface{})["trajectory"].(map[string]interface{})
	test.That(t, traj["interpolation"], test.ShouldEqual, "POS_INTERP_CUBIC")
	test.That(t, traj["reference_time"].(map[string]interface{})["seconds"], test.ShouldEqual, float64(refTime.Unix()))

	points := traj["points"].([]interface{})
	test.That(t, points, test.ShouldHaveLength, 4)
	last := points[3].(map[string]interface{})["time_since_reference"].(map[string]interface{})
	test.That(t, last["seconds"], test.ShouldEqual, 4.0)
	test.That(t, last["nanos"], test.ShouldEqual, 750000000.0)
}

func TestDescriptorPoseTrajectories(t *testing.T) {
	arm, body, gripper := sampleAll(t)
	assembler := NewAssembler(DefaultCalibration(), DefaultLimits())
	odomTBody := spatialmath.NewPose(r3.Vector{Z: 0.5}, spatialmath.QuatFromYaw(0))
	cmd, err := assembler.Assemble(odomTBody, &arm, &body, &gripper)
	test.That(t, err, test.ShouldBeNil)

	pb, err := cmd.ToProto()
	test.That(t, err, test.ShouldBeNil)
	synced := pb.Fields["synchronized_command"].GetStructValue()

	armTraj := synced.Fields["arm_command"].GetStructValue().
		Fields["arm_cartesian_command"].GetStructValue().
		Fields["pose_trajectory_in_task"].GetStructValue()
	bodyTraj := synced.Fields["mobility_command"].GetStructValue().
		Fields["se2_trajectory_request"].GetStructValue().
		Fields["trajectory"].GetStructValue()
	gripperTraj := synced.Fields["gripper_command"].GetStructValue().
		Fields["claw_gripper_command"].GetStructValue().
		Fields["trajectory"].GetStructValue()

	for _, traj := range []*structpb.Struct{armTraj, bodyTraj} {
		test.That(t, traj.Fields, test.ShouldNotContainKey, "interpolation")
		first := traj.Fields["points"].GetListValue().GetValues()[0].GetStructValue()
		test.That(t, first.Fields, test.ShouldContainKey, "pose")
		test.That(t, first.Fields, test.ShouldNotContainKey, "point")
	}
	test.That(t, armTraj.Fields["points"].GetListValue().GetValues()[1].GetStructValue().
		Fields["pose"].GetStructValue().Fields["position"].GetStructValue().
		Fields["x"].GetNumberValue(), test.ShouldNotEqual, 0)

	test.That(t, gripperTraj.Fields["interpolation"].GetStringValue(), test.ShouldEqual, "POS_INTERP_CUBIC")
	first := gripperTraj.Fields["points"].GetListValue().GetValues()[0].GetStructValue()
	test.That(t, first.Fields, test.ShouldContainKey, "point")
}
