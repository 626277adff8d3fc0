package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/spottraj/logging"
)

// Action issues one blocking command and returns once it is acknowledged.
type Action func(ctx context.Context) error

// Step is one entry of a sequence.
type Step struct {
	// Name labels the step in logs and results.
	Name string
	// State is the state reached when the step succeeds.
	State State
	// Action performs the step.
	Action Action
	// Required steps abort the sequence on failure. Optional steps only log a warning.
	Required bool
	// Timeout bounds the action. Zero falls back to the runner's default.
	Timeout time.Duration
}

// StepResult records how one step went.
type StepResult struct {
	Name    string
	Err     error
	Elapsed time.Duration
	Skipped bool
}

// Result is the outcome of a run. FailedStep is empty unless State is Failed.
type Result struct {
	RunID      string
	State      State
	FailedStep string
	Err        error
	Steps      []StepResult
}

// Succeeded reports whether every required step succeeded.
func (r Result) Succeeded() bool {
	return r.State == Done
}

// String renders the per-step results as a table.
func (r Result) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("run %s: %s", r.RunID, r.State))
	tw.AppendHeader(table.Row{"#", "Step", "Outcome", "Elapsed", "Error"})
	for i, step := range r.Steps {
		outcome := "ok"
		errStr := ""
		switch {
		case step.Skipped:
			outcome = "skipped"
		case step.Err != nil:
			outcome = "failed"
			errStr = step.Err.Error()
		}
		tw.AppendRow(table.Row{i + 1, step.Name, outcome, step.Elapsed.Round(time.Millisecond), errStr})
	}
	return tw.Render()
}

// Runner executes steps strictly one after another.
type Runner struct {
	logger      logging.Logger
	clock       clock.Clock
	stepTimeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock sets the clock used to time steps.
func WithClock(c clock.Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithStepTimeout bounds every step that has no timeout of its own.
func WithStepTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.stepTimeout = d
	}
}

// NewRunner returns a Runner logging to logger.
func NewRunner(logger logging.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{logger: logger, clock: clock.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order. The first failing required step moves the run to Failed and
// every later step is skipped: nothing is retried and completed steps are not undone. A cancelled
// ctx fails the run at the next step boundary.
func (r *Runner) Run(ctx context.Context, steps []Step) Result {
	result := Result{RunID: uuid.NewString(), State: Idle}
	ctx, span := trace.StartSpan(ctx, "sequence::Run")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("run_id", result.RunID))

	for i, step := range steps {
		if result.State == Failed {
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Skipped: true})
			continue
		}

		start := r.clock.Now()
		err := r.runStep(ctx, step)
		stepResult := StepResult{Name: step.Name, Err: err, Elapsed: r.clock.Since(start)}
		result.Steps = append(result.Steps, stepResult)

		if err == nil {
			r.logger.CDebugw(ctx, "step succeeded", "run", result.RunID, "step", step.Name, "elapsed", stepResult.Elapsed)
			if step.State != Idle {
				result.State = step.State
			}
			continue
		}
		if !step.Required && ctx.Err() == nil {
			r.logger.Warnw("optional step failed, continuing", "run", result.RunID, "step", step.Name, "error", err)
			continue
		}

		r.logger.Errorw("step failed, aborting sequence",
			"run", result.RunID,
			"step", step.Name,
			"index", i,
			"reached", result.State.String(),
			"error", err)
		result.State = Failed
		result.FailedStep = step.Name
		result.Err = errors.Wrapf(err, "step %q", step.Name)
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: result.Err.Error()})
	}

	if result.State != Failed {
		result.State = Done
		r.logger.Infow("sequence done", "run", result.RunID, "steps", len(steps))
	}
	return result
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if step.Action == nil {
		return errors.New("step has no action")
	}

	ctx, span := trace.StartSpan(ctx, "sequence::"+step.Name)
	defer span.End()

	timeout := step.Timeout
	if timeout == 0 {
		timeout = r.stepTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Infow("running step", "step", step.Name)
	if err := step.Action(ctx); err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
		return err
	}
	return nil
}
