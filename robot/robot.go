// Package robot defines the interfaces used to command a legged robot and read its frames.
package robot

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/spottraj/command"
	"go.viam.com/spottraj/referenceframe"
)

// ErrCommandRejected is returned when the robot acknowledges a command with failure.
var ErrCommandRejected = errors.New("command rejected")

// SimpleCommand is a parameterless named command.
type SimpleCommand string

// Simple commands accepted by the robot.
const (
	Claim    SimpleCommand = "claim"
	Release  SimpleCommand = "release"
	PowerOn  SimpleCommand = "power_on"
	PowerOff SimpleCommand = "power_off"
	Stand    SimpleCommand = "stand"
	Sit      SimpleCommand = "sit"
)

// Commander sends commands to a robot and blocks until each is acknowledged. A false result
// means the robot answered and refused; an error means no definitive answer was received.
type Commander interface {
	// Command issues a simple named command.
	Command(ctx context.Context, name SimpleCommand) (bool, error)

	// SendAndWait issues a structured command. label identifies the request in the robot's
	// logs.
	SendAndWait(ctx context.Context, label string, cmd *command.RobotCommand) (bool, error)
}

// Robot is a commandable robot that also publishes its frame tree.
type Robot interface {
	Commander
	referenceframe.Resolver

	// Name returns the robot's name, also used as its frame namespace.
	Name() string
}

// NewCommandRejectedError wraps ErrCommandRejected with the rejected command's name.
func NewCommandRejectedError(name string) error {
	return errors.Wrapf(ErrCommandRejected, "%q", name)
}

// RunCommand issues a simple command and folds a refusal into ErrCommandRejected.
func RunCommand(ctx context.Context, c Commander, name SimpleCommand) error {
	ok, err := c.Command(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "%q", name)
	}
	if !ok {
		return NewCommandRejectedError(string(name))
	}
	return nil
}

// RunRobotCommand issues a structured command and folds a refusal into ErrCommandRejected.
func RunRobotCommand(ctx context.Context, c Commander, label string, cmd *command.RobotCommand) error {
	ok, err := c.SendAndWait(ctx, label, cmd)
	if err != nil {
		return errors.Wrapf(err, "%q", label)
	}
	if !ok {
		return NewCommandRejectedError(label)
	}
	return nil
}
