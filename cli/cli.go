package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "rigrun"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Build and run firmware tests on an attached target or a remote rig",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	runFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "remote",
			Usage: "Proxy the session to the configured remote rig even if a probe is attached",
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "run",
		Usage:  "Discover and run all tests in the current directory",
		Action: app.run,
		Flags:  runFlags,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous sessions",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "View one session from history",
		ArgsUsage: "[ID|INDEX]",
		Action:    app.view,
		Description: `View a recorded session.

Arguments:
  0           View last session (default)
  -1          View 2nd last session
  -2          View 3rd last session
  <hex-id>    View the session matching the hex ID prefix`,
	})

	// Default action when no subcommand is specified
	app.cli.Action = app.run
	app.cli.Flags = append(app.cli.Flags, runFlags...)

	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
