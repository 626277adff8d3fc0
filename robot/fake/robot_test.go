package fake

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/logging"
	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/robot"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

func bringUp(t *testing.T, r *Robot) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []robot.SimpleCommand{robot.Claim, robot.PowerOn, robot.Stand} {
		test.That(t, robot.RunCommand(ctx, r, name), test.ShouldBeNil)
	}
}

func TestCommandOrdering(t *testing.T) {
	ctx := context.Background()
	r := NewRobot("opal", WithLogger(logging.NewTestLogger(t)))

	ok, err := r.Command(ctx, robot.Stand)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	ok, err = r.Command(ctx, robot.PowerOn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	bringUp(t, r)
	claimed, powered, standing, armReady := r.State()
	test.That(t, claimed, test.ShouldBeTrue)
	test.That(t, powered, test.ShouldBeTrue)
	test.That(t, standing, test.ShouldBeTrue)
	test.That(t, armReady, test.ShouldBeFalse)

	test.That(t, robot.RunCommand(ctx, r, robot.PowerOff), test.ShouldBeNil)
	_, powered, standing, _ = r.State()
	test.That(t, powered, test.ShouldBeFalse)
	test.That(t, standing, test.ShouldBeFalse)

	_, err = r.Command(ctx, robot.SimpleCommand("dance"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestArmCommands(t *testing.T) {
	ctx := context.Background()
	r := NewRobot("opal")

	// not standing yet
	err := robot.RunRobotCommand(ctx, r, "ready_arm", command.ReadyArm())
	test.That(t, errors.Is(err, robot.ErrCommandRejected), test.ShouldBeTrue)

	bringUp(t, r)
	arm, err := trajectory.SampleSE3(time.Now(), trajectory.Timing{Duration: time.Second, Step: 100 * time.Millisecond}, trajectory.DefaultArmCurve)
	test.That(t, err, test.ShouldBeNil)
	cmd, err := command.NewAssembler(command.DefaultCalibration(), command.DefaultLimits()).Assemble(spatialmath.NewZeroPose(), &arm, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	// arm still stowed
	err = robot.RunRobotCommand(ctx, r, "move_arm", cmd)
	test.That(t, errors.Is(err, robot.ErrCommandRejected), test.ShouldBeTrue)

	test.That(t, robot.RunRobotCommand(ctx, r, "ready_arm", command.ReadyArm()), test.ShouldBeNil)
	test.That(t, robot.RunRobotCommand(ctx, r, "move_arm", cmd), test.ShouldBeNil)
	test.That(t, r.LastCommand(), test.ShouldEqual, cmd)
	test.That(t, robot.RunRobotCommand(ctx, r, "arm_stow", command.StowArm()), test.ShouldBeNil)

	test.That(t, r.CallNames(), test.ShouldResemble, []string{
		"ready_arm", "claim", "power_on", "stand", "move_arm", "ready_arm", "move_arm", "arm_stow",
	})
}

func TestEmptySynchronizedRejected(t *testing.T) {
	r := NewRobot("opal")
	bringUp(t, r)
	ok, err := r.SendAndWait(context.Background(), "move_arm", &command.RobotCommand{Synchronized: &command.SynchronizedCommand{}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInjectedFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("link down")
	r := NewRobot("opal", WithRejection("stand"), WithError("power_on", boom))

	test.That(t, robot.RunCommand(ctx, r, robot.Claim), test.ShouldBeNil)
	err := robot.RunCommand(ctx, r, robot.PowerOn)
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
	test.That(t, errors.Is(err, robot.ErrCommandRejected), test.ShouldBeFalse)

	ok, err := r.Command(ctx, robot.Stand)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestLatencyHonorsContext(t *testing.T) {
	r := NewRobot("opal", WithLatency(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Command(ctx, robot.Claim)
	test.That(t, errors.Is(err, context.DeadlineExceeded), test.ShouldBeTrue)
}

func TestBodyTrajectoryMovesBody(t *testing.T) {
	ctx := context.Background()
	r := NewRobot("opal")
	bringUp(t, r)
	names := referenceframe.NamesFor("opal")

	body, err := trajectory.SampleSE2(time.Now(), trajectory.Timing{Duration: time.Second, Step: 500 * time.Millisecond},
		func(t float64) spatialmath.Pose2D { return spatialmath.NewPose2D(1+t, 2, 0.5) })
	test.That(t, err, test.ShouldBeNil)
	cmd, err := command.NewAssembler(command.DefaultCalibration(), command.DefaultLimits()).Assemble(nil, nil, &body, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, robot.RunRobotCommand(ctx, r, "move_arm", cmd), test.ShouldBeNil)

	visionTBody, err := r.TransformBetween(ctx, names.Vision, names.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visionTBody.Point().X, test.ShouldAlmostEqual, 1.5)
	test.That(t, visionTBody.Point().Y, test.ShouldAlmostEqual, 2.0)
	test.That(t, visionTBody.Point().Z, test.ShouldAlmostEqual, BodyHeight)
	test.That(t, spatialmath.ClosestSE2(visionTBody).Theta, test.ShouldAlmostEqual, 0.5)
}

func TestFrames(t *testing.T) {
	ctx := context.Background()
	names := referenceframe.NamesFor("opal")

	r := NewRobot("opal")
	test.That(t, r.WaitForTransform(ctx, names.Odom, names.FlatBody, time.Second), test.ShouldBeNil)
	test.That(t, r.Frames().FrameNames(), test.ShouldHaveLength, 4)

	bare := NewRobot("opal", WithoutFrames())
	err := bare.WaitForTransform(ctx, names.Odom, names.FlatBody, 20*time.Millisecond)
	test.That(t, errors.Is(err, referenceframe.ErrFrameUnavailable), test.ShouldBeTrue)
}

func TestArmTrajectoryMovesHand(t *testing.T) {
	ctx := context.Background()
	r := NewRobot("opal")
	names := referenceframe.NamesFor("opal")
	bringUp(t, r)
	test.That(t, robot.RunRobotCommand(ctx, r, "ready_arm", command.ReadyArm()), test.ShouldBeNil)

	odomTFlatBody, err := r.TransformBetween(ctx, names.Odom, names.FlatBody)
	test.That(t, err, test.ShouldBeNil)
	arm, err := trajectory.SampleSE3(time.Now(), trajectory.Timing{Duration: time.Second, Step: 100 * time.Millisecond}, trajectory.DefaultArmCurve)
	test.That(t, err, test.ShouldBeNil)
	cal := command.DefaultCalibration()
	cmd, err := command.NewAssembler(cal, command.DefaultLimits()).Assemble(odomTFlatBody, &arm, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, robot.RunRobotCommand(ctx, r, "move_arm", cmd), test.ShouldBeNil)

	odomTHand, err := r.TransformBetween(ctx, names.Odom, names.Hand)
	test.That(t, err, test.ShouldBeNil)
	expected := spatialmath.ComposeAll(
		odomTFlatBody,
		cal.BodyTTask,
		arm.Points[arm.Len()-1].Value,
		spatialmath.PoseInverse(cal.WristTTool),
	)
	test.That(t, spatialmath.PoseAlmostEqualEps(odomTHand, expected, 1e-9), test.ShouldBeTrue)
}
