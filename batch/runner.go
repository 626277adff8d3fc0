// Package batch drives a robot through a full batched trajectory run: take control, stand up,
// ready the arm, send one synchronized command carrying long sampled trajectories, then stow.
package batch

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/config"
	"go.viam.com/spottraj/logging"
	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/robot"
	"go.viam.com/spottraj/sequence"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// Labels identifying the structured commands in the robot's logs.
const (
	ReadyArmLabel = "ready_arm"
	MoveArmLabel  = "move_arm"
	StowArmLabel  = "arm_stow"
)

// Curves are the continuous functions sampled for each actuator. Time is in seconds from the
// start of sampling.
type Curves struct {
	Arm     trajectory.Func[spatialmath.Pose]
	Body    trajectory.Func[spatialmath.Pose2D]
	Gripper trajectory.Func[float64]
}

// DefaultCurves returns the rose, sway and pulse curves.
func DefaultCurves() Curves {
	return Curves{
		Arm:     trajectory.DefaultArmCurve,
		Body:    trajectory.DefaultBodyCurve,
		Gripper: trajectory.DefaultGripperCurve,
	}
}

// Plan is a fully sampled and assembled command that has not been sent yet.
type Plan struct {
	ReferenceTime time.Time
	Timing        trajectory.Timing
	// Trajectories are nil for actuators left out of the run. Arm is in the task frame and Body
	// is in the vision frame.
	Arm     *trajectory.Trajectory[spatialmath.Pose]
	Body    *trajectory.Trajectory[spatialmath.Pose2D]
	Gripper *trajectory.Trajectory[float64]
	Command *command.RobotCommand
}

// End is the time at which the last waypoint is due.
func (p *Plan) End() time.Time {
	return p.ReferenceTime.Add(p.Timing.End())
}

// Runner runs the batched trajectory routine against one robot.
type Runner struct {
	robot     robot.Robot
	cfg       *config.Config
	logger    logging.Logger
	clock     clock.Clock
	curves    Curves
	names     referenceframe.Names
	assembler *command.Assembler
	sequencer *sequence.Runner

	lastPlan *Plan
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used for the reference time and for waiting on completion.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithCurves replaces the sampled curves.
func WithCurves(curves Curves) Option {
	return func(r *Runner) {
		r.curves = curves
	}
}

// NewRunner validates cfg and returns a Runner for rob. Frame names are namespaced by the robot's
// name.
func NewRunner(rob robot.Robot, cfg *config.Config, logger logging.Logger, opts ...Option) (*Runner, error) {
	if rob == nil {
		return nil, errors.New("robot is nil")
	}
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}

	r := &Runner{
		robot:     rob,
		cfg:       cfg,
		logger:    logger,
		clock:     clock.New(),
		curves:    DefaultCurves(),
		names:     referenceframe.NamesFor(rob.Name()),
		assembler: command.NewAssembler(cfg.CommandCalibration(), cfg.Limits),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sequencer = sequence.NewRunner(
		logger.Sublogger("sequence"),
		sequence.WithClock(r.clock),
		sequence.WithStepTimeout(cfg.StepTimeout),
	)
	return r, nil
}

// Names returns the namespaced frame names the runner resolves.
func (r *Runner) Names() referenceframe.Names {
	return r.names
}

// WaitForFrames blocks until the transforms used for planning are available, each for at most the
// configured frame timeout.
func (r *Runner) WaitForFrames(ctx context.Context) error {
	pairs := [][2]string{
		{r.names.Odom, r.names.FlatBody},
		{r.names.Vision, r.names.Body},
	}
	for _, pair := range pairs {
		r.logger.CDebugw(ctx, "waiting for transform", "parent", pair[0], "child", pair[1])
		if err := r.robot.WaitForTransform(ctx, pair[0], pair[1], r.cfg.FrameTimeout); err != nil {
			return err
		}
	}
	return nil
}

// Plan samples every enabled actuator's curve from now and assembles the synchronized command.
// Frames are resolved once, at planning time. Nothing is sent.
func (r *Runner) Plan(ctx context.Context) (*Plan, error) {
	if !r.cfg.IncludeArm && !r.cfg.IncludeBody && !r.cfg.IncludeGripper {
		return nil, errors.Wrap(trajectory.ErrInvalidParameter, "no actuator enabled")
	}

	plan := &Plan{ReferenceTime: r.clock.Now(), Timing: r.cfg.Sampling}

	var odomTFlatBody spatialmath.Pose
	if r.cfg.IncludeArm {
		if r.curves.Arm == nil {
			return nil, errors.Wrap(trajectory.ErrInvalidParameter, "arm curve is nil")
		}
		var err error
		odomTFlatBody, err = r.robot.TransformBetween(ctx, r.names.Odom, r.names.FlatBody)
		if err != nil {
			return nil, err
		}
		arm, err := trajectory.SampleSE3(plan.ReferenceTime, plan.Timing, r.curves.Arm)
		if err != nil {
			return nil, errors.Wrap(err, "arm trajectory")
		}
		plan.Arm = &arm
	}

	if r.cfg.IncludeBody {
		if r.curves.Body == nil {
			return nil, errors.Wrap(trajectory.ErrInvalidParameter, "body curve is nil")
		}
		visionTBody, err := r.robot.TransformBetween(ctx, r.names.Vision, r.names.Body)
		if err != nil {
			return nil, err
		}
		local, err := trajectory.SampleSE2(plan.ReferenceTime, plan.Timing, r.curves.Body)
		if err != nil {
			return nil, errors.Wrap(err, "body trajectory")
		}
		body := trajectory.TransformSE2(visionTBody, local)
		plan.Body = &body
	}

	if r.cfg.IncludeGripper {
		if r.curves.Gripper == nil {
			return nil, errors.Wrap(trajectory.ErrInvalidParameter, "gripper curve is nil")
		}
		gripper, err := trajectory.SampleScalar(plan.ReferenceTime, plan.Timing, r.curves.Gripper)
		if err != nil {
			return nil, errors.Wrap(err, "gripper trajectory")
		}
		plan.Gripper = &gripper
	}

	cmd, err := r.assembler.Assemble(odomTFlatBody, plan.Arm, plan.Body, plan.Gripper)
	if err != nil {
		return nil, err
	}
	plan.Command = cmd
	r.logger.CDebugw(ctx, "planned command",
		"kind", cmd.Kind(),
		"points", plan.Timing.NumPoints(),
		"reference_time", plan.ReferenceTime,
		"end", plan.End())
	return plan, nil
}

// LastPlan returns the plan built by the most recent execute step, if any.
func (r *Runner) LastPlan() *Plan {
	return r.lastPlan
}

// Steps returns the fixed sequence of the routine. Every step is required.
func (r *Runner) Steps() []sequence.Step {
	executeTimeout := time.Duration(0)
	if r.cfg.ExecuteMode == config.ExecuteComplete && r.cfg.StepTimeout > 0 {
		executeTimeout = r.cfg.StepTimeout + r.cfg.Sampling.End()
	}
	return []sequence.Step{
		{Name: "claim", State: sequence.Claimed, Action: r.simple(robot.Claim), Required: true},
		{Name: "power_on", State: sequence.Powered, Action: r.simple(robot.PowerOn), Required: true},
		{Name: "stand", State: sequence.Standing, Action: r.simple(robot.Stand), Required: true},
		{Name: "ready_arm", State: sequence.ArmReady, Action: r.send(ReadyArmLabel, command.ReadyArm()), Required: true},
		{Name: "execute", State: sequence.Executing, Action: r.execute, Required: true, Timeout: executeTimeout},
		{Name: "stow", State: sequence.ArmStowed, Action: r.send(StowArmLabel, command.StowArm()), Required: true},
	}
}

// WaitForFramesStep is the name of the step that precedes the routine in Run.
const WaitForFramesStep = "wait_for_frames"

// Run waits for the robot's frames and then runs the routine. The result names the first failing
// step, if any; a frame wait failure is reported as WaitForFramesStep and skips the routine.
func (r *Runner) Run(ctx context.Context) sequence.Result {
	r.logger.Infow("starting batch trajectory run",
		"robot", r.robot.Name(),
		"execute_mode", r.cfg.ExecuteMode,
		"points", r.cfg.Sampling.NumPoints())
	wait := sequence.Step{
		Name:     WaitForFramesStep,
		Action:   r.WaitForFrames,
		Required: true,
		// both transforms get the full frame timeout
		Timeout: 2*r.cfg.FrameTimeout + time.Second,
	}
	return r.sequencer.Run(ctx, append([]sequence.Step{wait}, r.Steps()...))
}

func (r *Runner) simple(name robot.SimpleCommand) sequence.Action {
	return func(ctx context.Context) error {
		return robot.RunCommand(ctx, r.robot, name)
	}
}

func (r *Runner) send(label string, cmd *command.RobotCommand) sequence.Action {
	return func(ctx context.Context) error {
		return robot.RunRobotCommand(ctx, r.robot, label, cmd)
	}
}

func (r *Runner) execute(ctx context.Context) error {
	plan, err := r.Plan(ctx)
	if err != nil {
		return err
	}
	r.lastPlan = plan
	if err := robot.RunRobotCommand(ctx, r.robot, MoveArmLabel, plan.Command); err != nil {
		return err
	}
	if r.cfg.ExecuteMode != config.ExecuteComplete {
		return nil
	}
	return r.waitUntil(ctx, plan.End())
}

func (r *Runner) waitUntil(ctx context.Context, deadline time.Time) error {
	wait := deadline.Sub(r.clock.Now())
	if wait <= 0 {
		return nil
	}
	r.logger.CDebugw(ctx, "waiting for trajectory to finish", "remaining", wait)
	timer := r.clock.Timer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
