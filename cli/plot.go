package cli

import (
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/spottraj/batch"
	"go.viam.com/spottraj/spatialmath"
	"go.viam.com/spottraj/trajectory"
)

// PlotAction is the corresponding Action for 'plot'.
func PlotAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	p, err := curvesPlot(cfg.Sampling, batch.DefaultCurves())
	if err != nil {
		return err
	}
	output := c.Path(outputFlag)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, output); err != nil {
		return errors.Wrapf(err, "cannot save plot to %q", output)
	}
	logger.Infow("saved plot", "file", output, "points", cfg.Sampling.NumPoints())
	printf(c.App.Writer, "wrote %s", output)
	return nil
}

// curvesPlot samples every curve in its local frame and plots each component against the time
// since the reference time.
func curvesPlot(timing trajectory.Timing, curves batch.Curves) (*plot.Plot, error) {
	ref := time.Time{}
	arm, err := trajectory.SampleSE3(ref, timing, curves.Arm)
	if err != nil {
		return nil, errors.Wrap(err, "arm")
	}
	body, err := trajectory.SampleSE2(ref, timing, curves.Body)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}
	gripper, err := trajectory.SampleScalar(ref, timing, curves.Gripper)
	if err != nil {
		return nil, errors.Wrap(err, "gripper")
	}

	p := plot.New()
	p.Title.Text = "sampled trajectories"
	p.X.Label.Text = "time since reference (s)"
	p.Y.Label.Text = "m, rad"
	p.Add(plotter.NewGrid())

	err = plotutil.AddLines(p,
		"arm x", toXYs(arm, func(pose spatialmath.Pose) float64 { return pose.Point().X }),
		"arm y", toXYs(arm, func(pose spatialmath.Pose) float64 { return pose.Point().Y }),
		"body yaw", toXYs(body, func(pose spatialmath.Pose2D) float64 { return pose.Theta }),
		"gripper", toXYs(gripper, func(v float64) float64 { return v }),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func toXYs[T any](traj trajectory.Trajectory[T], value func(T) float64) plotter.XYs {
	xys := make(plotter.XYs, 0, traj.Len())
	for _, pt := range traj.Points {
		xys = append(xys, plotter.XY{X: pt.TimeSinceReference.Seconds(), Y: value(pt.Value)})
	}
	return xys
}
