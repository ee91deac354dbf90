package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:           "nowplaying",
		Usage:          "Spotify now playing overlay for streams",
		Version:        version,
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			watchCommand(),
			initCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}
