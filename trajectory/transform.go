package trajectory

import (
	"go.viam.com/spottraj/spatialmath"
)

// TransformSE3 re-expresses a pose trajectory given target_T_local. Every point becomes
// target_T_local * local_T_point. The same transform is applied to every point.
func TransformSE3(targetTLocal spatialmath.Pose, traj Trajectory[spatialmath.Pose]) Trajectory[spatialmath.Pose] {
	return Map(traj, func(p spatialmath.Pose) spatialmath.Pose {
		return spatialmath.Compose(targetTLocal, p)
	})
}

// TransformSE2 re-expresses a planar trajectory given the 3D transform target_T_local. The
// transform is first projected onto the ground plane with spatialmath.ClosestSE2, which drops z,
// roll and pitch: any tilt of the local frame relative to the target frame is ignored.
func TransformSE2(targetTLocal spatialmath.Pose, traj Trajectory[spatialmath.Pose2D]) Trajectory[spatialmath.Pose2D] {
	planar := spatialmath.ClosestSE2(targetTLocal)
	return Map(traj, func(p spatialmath.Pose2D) spatialmath.Pose2D {
		return spatialmath.Compose2D(planar, p)
	})
}
