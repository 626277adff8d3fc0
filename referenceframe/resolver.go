package referenceframe

import (
	"context"
	"time"

	"go.viam.com/spottraj/spatialmath"
)

// Resolver looks up the latest rigid transform between two named frames.
type Resolver interface {
	// TransformBetween returns parent_T_child, the pose of child expressed in parent. It fails
	// with ErrFrameUnavailable when no valid estimate exists.
	TransformBetween(ctx context.Context, parent, child string) (spatialmath.Pose, error)

	// WaitForTransform blocks until TransformBetween would succeed, the timeout elapses or ctx is
	// done. On timeout it returns an error wrapping ErrFrameUnavailable.
	WaitForTransform(ctx context.Context, parent, child string, timeout time.Duration) error
}
