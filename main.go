package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"moodboard/internal/config"
)

var version = "dev"

func main() {
	// .env and MOODBOARD_* give the flag defaults; flags win and the
	// merged result is validated per command.
	defaults, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrInvalid) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:                  "moodboard",
		Usage:                 "Compose event moodboards from rentable product catalogs",
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for the database, templates and logs",
				Value:   defaults.DataDir,
				Sources: cli.EnvVars(config.EnvDataDir),
			},
			&cli.StringFlag{
				Name:    "db-driver",
				Usage:   "Storage backend (sqlite, postgres, mysql, mongo)",
				Value:   defaults.DBDriver,
				Sources: cli.EnvVars(config.EnvDBDriver),
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Connection URL; sqlite defaults to <data-dir>/moodboard.db",
				Value:   defaults.DBURL,
				Sources: cli.EnvVars(config.EnvDBURL),
			},
			&cli.StringFlag{
				Name:    "templates-dir",
				Usage:   "Directory of user layout templates (default <data-dir>/templates)",
				Value:   defaults.TemplatesDir,
				Sources: cli.EnvVars(config.EnvTemplatesDir),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   defaults.LogLevel,
				Sources: cli.EnvVars(config.EnvLogLevel),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Log file (default <data-dir>/logs/moodboard.log)",
				Value:   defaults.LogFile,
				Sources: cli.EnvVars(config.EnvLogFile),
			},
		},
		Commands: []*cli.Command{
			serveCommand(defaults),
			exportCommand(),
			templatesCommand(),
			scenesCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFrom resolves the global flags into a validated Config.
func configFrom(command *cli.Command) (config.Config, error) {
	c := config.Default()
	c.DataDir = command.String("data-dir")
	c.DBDriver = strings.ToLower(command.String("db-driver"))
	c.DBURL = command.String("db-url")
	c.TemplatesDir = command.String("templates-dir")
	c.LogLevel = strings.ToLower(command.String("log-level"))
	c.LogFile = command.String("log-file")
	if spec := command.String("autosave"); spec != "" {
		c.AutosaveSpec = spec
	}
	return c, c.Validate()
}
