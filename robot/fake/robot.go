// Package fake implements a simulated robot that acknowledges commands in memory.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/logging"
	"go.viam.com/spottraj/referenceframe"
	"go.viam.com/spottraj/robot"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// BodyHeight is the simulated standing height of the body above the ground, in metres.
const BodyHeight = 0.5

// Call is one command received by the fake robot.
type Call struct {
	Name string
	Kind string
	At   time.Time
}

// Robot is a fake robot that tracks claim, power, stance and arm state and refuses commands
// issued out of order, the way the real robot would.
type Robot struct {
	mu     sync.Mutex
	name   string
	names  referenceframe.Names
	logger logging.Logger
	clock  clock.Clock
	tree   *referenceframe.Tree

	noFrames   bool
	latency    time.Duration
	rejections map[string]bool
	errs       map[string]error

	claimed  bool
	powered  bool
	standing bool
	armReady bool

	calls       []Call
	lastCommand *command.RobotCommand
}

var _ robot.Robot = (*Robot)(nil)

// Option configures a fake robot.
type Option func(*Robot)

// WithClock sets the clock used for latency and call stamps.
func WithClock(c clock.Clock) Option {
	return func(r *Robot) {
		r.clock = c
	}
}

// WithLatency makes every command take d to acknowledge.
func WithLatency(d time.Duration) Option {
	return func(r *Robot) {
		r.latency = d
	}
}

// WithRejection makes the named command or label be refused.
func WithRejection(name string) Option {
	return func(r *Robot) {
		r.rejections[name] = true
	}
}

// WithError makes the named command or label fail without an acknowledgement.
func WithError(name string, err error) Option {
	return func(r *Robot) {
		r.errs[name] = err
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Robot) {
		r.logger = logger
	}
}

// WithoutFrames starts the robot with no frames published besides odom.
func WithoutFrames() Option {
	return func(r *Robot) {
		r.noFrames = true
	}
}

// NewRobot returns a fake robot standing at the origin of odom, with vision coincident with odom.
func NewRobot(name string, opts ...Option) *Robot {
	r := &Robot{
		name:       name,
		names:      referenceframe.NamesFor(name),
		logger:     logging.NewBlankLogger(name),
		clock:      clock.New(),
		rejections: map[string]bool{},
		errs:       map[string]error{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tree = referenceframe.NewTree(r.names.Odom, referenceframe.WithClock(r.clock))
	if !r.noFrames {
		r.publishFrames()
	}
	return r
}

func (r *Robot) publishFrames() {
	frames := []struct {
		name, parent string
		pose         spatialmath.Pose
	}{
		{r.names.Vision, r.names.Odom, spatialmath.NewZeroPose()},
		{r.names.Body, r.names.Vision, spatialmath.NewPoseFromPoint(r3.Vector{Z: BodyHeight})},
		{r.names.FlatBody, r.names.Body, spatialmath.NewZeroPose()},
		{r.names.Hand, r.names.Body, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.55, Z: 0.25})},
	}
	for _, f := range frames {
		if err := r.tree.Add(f.name, f.parent, f.pose); err != nil {
			r.logger.Errorw("failed to publish frame", "frame", f.name, "error", err)
		}
	}
}

// Name returns the robot's name.
func (r *Robot) Name() string {
	return r.name
}

// Frames returns the robot's frame tree.
func (r *Robot) Frames() *referenceframe.Tree {
	return r.tree
}

// TransformBetween returns parent_T_child from the robot's frame tree.
func (r *Robot) TransformBetween(ctx context.Context, parent, child string) (spatialmath.Pose, error) {
	return r.tree.TransformBetween(ctx, parent, child)
}

// WaitForTransform waits on the robot's frame tree.
func (r *Robot) WaitForTransform(ctx context.Context, parent, child string, timeout time.Duration) error {
	return r.tree.WaitForTransform(ctx, parent, child, timeout)
}

// Command handles claim, release, power and stance commands.
func (r *Robot) Command(ctx context.Context, name robot.SimpleCommand) (bool, error) {
	if err := r.acknowledge(ctx, string(name), "simple"); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejections[string(name)] {
		return false, nil
	}

	switch name {
	case robot.Claim:
		r.claimed = true
	case robot.Release:
		r.claimed = false
	case robot.PowerOn:
		if !r.claimed {
			return false, nil
		}
		r.powered = true
	case robot.PowerOff:
		if !r.claimed {
			return false, nil
		}
		r.powered = false
		r.standing = false
		r.armReady = false
	case robot.Stand:
		if !r.powered {
			return false, nil
		}
		r.standing = true
	case robot.Sit:
		if !r.powered {
			return false, nil
		}
		r.standing = false
	default:
		return false, errors.Errorf("unknown command %q", name)
	}
	return true, nil
}

// SendAndWait handles arm presets and synchronized trajectory commands. Accepted body
// trajectories move the body frame to their final waypoint.
func (r *Robot) SendAndWait(ctx context.Context, label string, cmd *command.RobotCommand) (bool, error) {
	if cmd == nil {
		return false, errors.Errorf("%q: nil command", label)
	}
	if err := r.acknowledge(ctx, label, cmd.Kind()); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejections[label] || !r.standing {
		return false, nil
	}

	switch {
	case cmd.ArmPreset == command.ArmPresetReady:
		r.armReady = true
	case cmd.ArmPreset == command.ArmPresetStow:
		r.armReady = false
	case cmd.Synchronized != nil:
		if cmd.Synchronized.Empty() {
			return false, nil
		}
		if cmd.Synchronized.Arm != nil && !r.armReady {
			return false, nil
		}
		if mobility := cmd.Synchronized.Mobility; mobility != nil && mobility.Trajectory.Len() > 0 {
			final := mobility.Trajectory.Points[mobility.Trajectory.Len()-1].Value
			pose := spatialmath.Compose(final.AsPose(), spatialmath.NewPoseFromPoint(r3.Vector{Z: BodyHeight}))
			if err := r.tree.Update(r.names.Body, pose); err != nil {
				return false, err
			}
		}
		if arm := cmd.Synchronized.Arm; arm != nil && arm.PoseTrajectoryInTask.Len() > 0 {
			r.moveHand(ctx, arm)
		}
	default:
		return false, nil
	}
	r.lastCommand = cmd
	return true, nil
}

// moveHand places the hand frame where the arm trajectory ends. Must hold r.mu.
func (r *Robot) moveHand(ctx context.Context, arm *command.ArmCartesianCommand) {
	inRoot := trajectory.TransformSE3(arm.RootTTask, arm.PoseTrajectoryInTask)
	rootTTool := inRoot.Points[inRoot.Len()-1].Value
	rootTHand := spatialmath.Compose(rootTTool, spatialmath.PoseInverse(arm.WristTTool))
	rootTBody, err := r.tree.TransformBetween(ctx, r.names.Odom, r.names.Body)
	if err != nil {
		r.logger.Warnw("hand frame not moved", "error", err)
		return
	}
	if err := r.tree.Update(r.names.Hand, spatialmath.PoseBetween(rootTBody, rootTHand)); err != nil {
		r.logger.Warnw("hand frame not moved", "error", err)
	}
}

func (r *Robot) acknowledge(ctx context.Context, name, kind string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Kind: kind, At: r.clock.Now()})
	injected := r.errs[name]
	r.mu.Unlock()

	r.logger.CDebugw(ctx, "received command", "name", name, "kind", kind)
	if r.latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.latency):
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return injected
}

// Calls returns every command received, in order.
func (r *Robot) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallNames returns the names of every command received, in order.
func (r *Robot) CallNames() []string {
	calls := r.Calls()
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return names
}

// LastCommand returns the last structured command the robot accepted.
func (r *Robot) LastCommand() *command.RobotCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCommand
}

// State reports claim, power, stance and arm state.
func (r *Robot) State() (claimed, powered, standing, armReady bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimed, r.powered, r.standing, r.armReady
}
