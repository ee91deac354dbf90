package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"skidoodle/nowplaying/internal/config"
	"skidoodle/nowplaying/internal/logging"
	"skidoodle/nowplaying/internal/overlay"
	"skidoodle/nowplaying/internal/schedule"
	"skidoodle/nowplaying/internal/spotify"
	"skidoodle/nowplaying/internal/terminal"
	"skidoodle/nowplaying/internal/websocket"
)

// apiTimeout bounds each call to Spotify so a hung connection cannot stall the loop.
const apiTimeout = 10 * time.Second

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to TOML configuration file",
		Sources: cli.EnvVars("NOWPLAYING_CONFIG"),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the overlay page and push updates over websocket",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides SERVER_PORT)",
			},
		},
		Action: serve,
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Show the overlay in the terminal",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of discarding them",
			},
		},
		Action: watch,
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write an example configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Destination path",
				Value:   "config.toml",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.String("output")
			if err := config.CreateConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)
			return nil
		},
	}
}

// loadConfig reads configuration and installs the default logger writing to w.
func loadConfig(cmd *cli.Command, w io.Writer) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(w, cfg.LogLevel, cfg.LogFormat)
	for _, warning := range cfg.Warnings {
		slog.Warn(warning.Error())
	}
	return cfg, nil
}

func newSpotifyClient(cfg *config.Config) (*spotify.Client, *spotify.TokenManager) {
	httpClient := &http.Client{Timeout: apiTimeout}
	tokens := spotify.NewTokenManager(spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
	}, spotify.WithTokenHTTPClient(httpClient))
	return spotify.NewClient(tokens, spotify.WithHTTPClient(httpClient)), tokens
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, os.Stderr)
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		cfg.ServerPort = cmd.String("port")
	}

	client, tokens := newSpotifyClient(cfg)
	loop := schedule.NewLoop()
	hub := websocket.NewHub(cfg.Layout())
	updater := overlay.NewUpdater(hub, loop, cfg.Overlay.VisibleDuration)
	poller := overlay.NewPoller(client, tokens, updater, loop)

	server := websocket.NewServer(net.JoinHostPort("", cfg.ServerPort), cfg.AllowedOrigins, hub, poller, loop)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func watch(ctx context.Context, cmd *cli.Command) error {
	// The terminal belongs to the UI, so logs only go to an explicit file.
	var logOut io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	cfg, err := loadConfig(cmd, logOut)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(terminal.NewModel(cfg.Layout()), tea.WithContext(ctx))

	client, tokens := newSpotifyClient(cfg)
	loop := schedule.NewLoop()
	updater := overlay.NewUpdater(terminal.NewSurface(program), loop, cfg.Overlay.VisibleDuration)
	poller := overlay.NewPoller(client, tokens, updater, loop)

	go loop.Run(ctx)
	go poller.Run(ctx)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui error: %w", err)
	}
	slog.Info("terminal ui closed")
	return nil
}
