package batch

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/spottraj/sequence"
)

// RunFleet runs independent routines concurrently, at most limit at a time (no limit if limit is
// not positive). A failing robot does not stop the others. Results are returned in the order of
// runners, along with every failure combined.
func RunFleet(ctx context.Context, runners []*Runner, limit int) ([]sequence.Result, error) {
	results := make([]sequence.Result, len(runners))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, r := range runners {
		g.Go(func() error {
			results[i] = r.Run(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs error
	for i, res := range results {
		if !res.Succeeded() {
			errs = multierr.Append(errs, errors.Wrapf(res.Err, "robot %q", runners[i].robot.Name()))
		}
	}
	return results, errs
}
