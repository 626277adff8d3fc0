package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/spottraj/batch"
	"go.viam.com/spottraj/config"
	"go.viam.com/spottraj/logging"
	"go.viam.com/spottraj/robot/fake"
)

// RunAction is the corresponding Action for 'run'.
func RunAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	names := c.StringSlice(robotsFlag)
	if len(names) == 0 {
		names = []string{cfg.Robot}
	}
	if cfg.ExecuteMode == config.ExecuteComplete {
		warningf(c.App.ErrWriter, "execute_mode is %q: the run lasts at least %s", cfg.ExecuteMode, cfg.Sampling.End())
	}

	runners := make([]*batch.Runner, 0, len(names))
	for _, name := range names {
		robotCfg := *cfg
		robotCfg.Robot = name
		robotLogger := logger.Sublogger(name)
		rob := fake.NewRobot(name,
			fake.WithLatency(c.Duration(latencyFlag)),
			fake.WithLogger(robotLogger.Sublogger("fake")))
		runner, err := batch.NewRunner(rob, &robotCfg, robotLogger)
		if err != nil {
			return errors.Wrapf(err, "robot %q", name)
		}
		runners = append(runners, runner)
	}

	ctx := c.Context
	if c.Bool(verboseFlag) {
		ctx = logging.EnableDebugMode(ctx, "")
	}
	results, err := batch.RunFleet(ctx, runners, 0)
	for i, res := range results {
		printf(c.App.Writer, "%s: %s", names[i], res.State)
		printf(c.App.Writer, "%s", res.String())
	}
	return err
}

// PlanAction is the corresponding Action for 'plan'.
func PlanAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	plan, err := simulatedPlan(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	if c.Bool(jsonFlag) {
		out, err := plan.Command.MarshalJSON()
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", out)
		return nil
	}
	out, err := planTable(plan, cfg)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}

// FramesAction is the corresponding Action for 'frames'.
func FramesAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	rob := fake.NewRobot(cfg.Robot, fake.WithLogger(logger))
	printf(c.App.Writer, "%s", rob.Frames().String())
	return nil
}

// setup loads the config from the config flag, or the defaults with the robot flag's name if no
// file is given, and builds a logger writing to the app's error writer.
func setup(c *cli.Context) (*config.Config, logging.Logger, error) {
	var cfg *config.Config
	if path := c.String(configFlag); path != "" {
		var err error
		cfg, err = config.Read(path)
		if err != nil {
			return nil, nil, err
		}
	} else {
		cfg = config.Default()
		cfg.Robot = c.String(robotFlag)
		if err := cfg.Validate("flags"); err != nil {
			return nil, nil, err
		}
	}

	logger := logging.NewBlankLogger("spottraj")
	// fleet runs log from several goroutines
	logger.AddAppender(logging.NewWriterAppender(zapcore.Lock(zapcore.AddSync(c.App.ErrWriter))))
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "log_level")
	}
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	if path := c.Path(logFileFlag); path != "" {
		fileAppender := logging.NewFileAppender(path)
		logger.AddAppender(fileAppender)
		c.App.Metadata[logFileKey] = fileAppender
	}
	logger.SetLevel(level)
	return cfg, logger, nil
}

// closeLogFile closes the file appender setup opened, if any.
func closeLogFile(c *cli.Context) error {
	fileAppender, ok := c.App.Metadata[logFileKey].(logging.FileAppender)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, logFileKey)
	return fileAppender.Close()
}

func simulatedPlan(ctx context.Context, cfg *config.Config, logger logging.Logger) (*batch.Plan, error) {
	rob := fake.NewRobot(cfg.Robot, fake.WithLogger(logger.Sublogger("fake")))
	runner, err := batch.NewRunner(rob, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := runner.WaitForFrames(ctx); err != nil {
		return nil, err
	}
	return runner.Plan(ctx)
}

func planTable(plan *batch.Plan, cfg *config.Config) (string, error) {
	summary, err := plan.Summary()
	if err != nil {
		return "", err
	}
	tw := table.NewWriter()
	tw.SetTitle("plan for %s, reference time %s", cfg.Robot, plan.ReferenceTime.Format(time.RFC3339Nano))
	tw.AppendHeader(table.Row{"Actuator", "Frame", "Points", "First", "Last", "Interpolation", "Quantity", "Min", "Max", "Mean"})
	for _, s := range summary {
		tw.AppendRow(table.Row{
			s.Actuator, s.Frame, s.Points, s.First, s.Last, s.Interpolation.String(),
			s.Quantity, fmt.Sprintf("%.3f", s.Min), fmt.Sprintf("%.3f", s.Max), fmt.Sprintf("%.3f", s.Mean),
		})
	}
	tw.AppendFooter(table.Row{"end", "", "", "", plan.End().Sub(plan.ReferenceTime)})
	return tw.Render(), nil
}
