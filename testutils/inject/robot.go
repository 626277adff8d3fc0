// Package inject provides a robot whose methods can be replaced per test.
package inject

import (
	"context"
	"time"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/robot"
	"go.viam.com/spottraj/spatialmath"
)

// Robot is an injected robot. Methods without an injected func fall through to the embedded
// robot.
type Robot struct {
	robot.Robot
	NameFunc             func() string
	CommandFunc          func(ctx context.Context, name robot.SimpleCommand) (bool, error)
	SendAndWaitFunc      func(ctx context.Context, label string, cmd *command.RobotCommand) (bool, error)
	TransformBetweenFunc func(ctx context.Context, parent, child string) (spatialmath.Pose, error)
	WaitForTransformFunc func(ctx context.Context, parent, child string, timeout time.Duration) error
}

// NewRobot returns an injected robot wrapping r.
func NewRobot(r robot.Robot) *Robot {
	return &Robot{Robot: r}
}

// Name calls the injected Name or the real version.
func (r *Robot) Name() string {
	if r.NameFunc == nil {
		return r.Robot.Name()
	}
	return r.NameFunc()
}

// Command calls the injected Command or the real version.
func (r *Robot) Command(ctx context.Context, name robot.SimpleCommand) (bool, error) {
	if r.CommandFunc == nil {
		return r.Robot.Command(ctx, name)
	}
	return r.CommandFunc(ctx, name)
}

// SendAndWait calls the injected SendAndWait or the real version.
func (r *Robot) SendAndWait(ctx context.Context, label string, cmd *command.RobotCommand) (bool, error) {
	if r.SendAndWaitFunc == nil {
		return r.Robot.SendAndWait(ctx, label, cmd)
	}
	return r.SendAndWaitFunc(ctx, label, cmd)
}

// TransformBetween calls the injected TransformBetween or the real version.
func (r *Robot) TransformBetween(ctx context.Context, parent, child string) (spatialmath.Pose, error) {
	if r.TransformBetweenFunc == nil {
		return r.Robot.TransformBetween(ctx, parent, child)
	}
	return r.TransformBetweenFunc(ctx, parent, child)
}

// WaitForTransform calls the injected WaitForTransform or the real version.
func (r *Robot) WaitForTransform(ctx context.Context, parent, child string, timeout time.Duration) error {
	if r.WaitForTransformFunc == nil {
		return r.Robot.WaitForTransform(ctx, parent, child, timeout)
	}
	return r.WaitForTransformFunc(ctx, parent, child, timeout)
}
