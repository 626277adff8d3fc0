package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrFrameUnavailable is returned when no valid transform between two frames is known.
var ErrFrameUnavailable = errors.New("frame unavailable")

// NewFrameUnavailableError returns an error wrapping ErrFrameUnavailable for the parent/child pair.
func NewFrameUnavailableError(parent, child, reason string) error {
	return errors.Wrapf(ErrFrameUnavailable, "%s -> %s: %s", parent, child, reason)
}

// NewFrameExistsError is returned when a frame is added with a name already in use.
func NewFrameExistsError(name string) error {
	return errors.Errorf("frame %q already exists", name)
}

// NewParentFrameMissingError returns an error indicating that a frame's parent is not in the tree.
func NewParentFrameMissingError(name, parent string) error {
	return errors.Errorf("parent %q of frame %q is not in the frame tree", parent, name)
}
