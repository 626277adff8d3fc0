// Package cli contains the spottraj command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	configFlag  = "config"
	debugFlag   = "debug"
	robotFlag   = "robot"
	robotsFlag  = "robots"
	latencyFlag = "latency"
	verboseFlag = "verbose-commands"
	jsonFlag    = "json"
	outputFlag  = "output"
	logFileFlag = "log-file"

	logFileKey = "logFile"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "spottraj",
		Usage:           "plan and run batched trajectories on a legged robot",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Metadata:        map[string]interface{}{},
		After:           closeLogFile,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  robotFlag,
				Value: "spot",
				Usage: "robot name, used when no config file is given",
			},
			&cli.PathFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotated as it grows",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the full routine against simulated robots",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  robotsFlag,
						Usage: "run one simulated robot per name concurrently",
					},
					&cli.DurationFlag{
						Name:  latencyFlag,
						Usage: "simulated acknowledgement latency of every command",
					},
					&cli.BoolFlag{
						Name:  verboseFlag,
						Usage: "log every command and planning detail of this run at debug level",
					},
				},
				Action: RunAction,
			},
			{
				Name:  "plan",
				Usage: "sample and assemble the synchronized command without sending it",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  jsonFlag,
						Usage: "print the command descriptor as JSON",
					},
				},
				Action: PlanAction,
			},
			{
				Name:  "plot",
				Usage: "render the sampled curves to a PNG",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     outputFlag,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write the plot to `FILE`",
					},
				},
				Action: PlotAction,
			},
			{
				Name:   "frames",
				Usage:  "print the frame tree of a simulated robot",
				Action: FramesAction,
			},
		},
	}
}
