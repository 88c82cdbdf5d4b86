package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"moodboard/internal/config"
	"moodboard/internal/logging"
	mcpserver "moodboard/internal/mcp"
	"moodboard/internal/service"
	"moodboard/internal/storage"
	"moodboard/internal/templates"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(defaults config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the composer as an MCP server over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "autosave",
				Usage:   "Cron spec for saving dirty scenes",
				Value:   defaults.AutosaveSpec,
				Sources: cli.EnvVars(config.EnvAutosave),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := configFrom(command)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	log, err := logging.Stderr(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return err
	}
	defer log.Sync()

	repos, err := storage.OpenRepositories(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Error("open storage", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return err
	}
	defer repos.Close()

	scenes := service.NewSceneService(repos.Scenes, repos.Revisions, service.NopEmitter{}, log)

	reg := templates.NewRegistry(log)
	watcher, err := templates.Watch(reg, cfg.TemplatesPath())
	if err != nil {
		log.Warn("template watcher disabled", zap.Error(err))
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	autosaver, err := service.NewAutosaver(scenes, cfg.AutosaveSpec, log)
	if err != nil {
		return err
	}
	autosaver.Start()

	srv := mcpserver.New(mcpserver.Deps{
		Scenes:    scenes,
		Templates: reg,
		Logger:    log,
		Version:   version,
	})

	log.Info("moodboard ready",
		zap.String("driver", cfg.DBDriver),
		zap.String("templates", cfg.TemplatesPath()),
		zap.String("autosave", cfg.AutosaveSpec),
	)

	errc := make(chan error, 1)
	go func() { errc <- srv.ServeStdio() }()

	select {
	case err = <-errc:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	autosaver.Stop(shutdownCtx)
	scenes.Shutdown(shutdownCtx)
	log.Info("moodboard stopped")
	return err
}
