package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"skidoodle/nowplaying/internal/overlay"
)

//go:embed config.example.toml
var exampleConf []byte

// Config holds the application configuration.
type Config struct {
	ServerPort     string
	AllowedOrigins []string
	LogLevel       slog.Level
	LogFormat      string
	Spotify        struct {
		ClientID     string
		ClientSecret string
		RefreshToken string
	}
	Overlay struct {
		VisibleDuration time.Duration
		HideAlbumArt    bool
		SlideFrom       overlay.SlideFrom
	}

	// Warnings are non-fatal problems found while loading. They are reported once a
	// logger is installed.
	Warnings []error
}

// fileConfig mirrors config.example.toml.
type fileConfig struct {
	Spotify struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		RefreshToken string `toml:"refresh_token"`
	} `toml:"spotify"`
	Server struct {
		Port           string   `toml:"port"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Overlay struct {
		Duration     float64 `toml:"duration"`
		HideAlbumArt bool    `toml:"hide_album_art"`
		SlideFrom    string  `toml:"slide_from"`
	} `toml:"overlay"`
}

// Load loads the configuration. Values come from the optional TOML file at path,
// then from environment variables (including a .env file), which take precedence.
func Load(path string) (*Config, error) {
	var warnings []error
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, errors.New("no .env file found, using environment variables"))
	}

	var fc fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{}

	cfg.Spotify.ClientID = envOr("SPOTIFY_CLIENT_ID", fc.Spotify.ClientID)
	cfg.Spotify.ClientSecret = envOr("SPOTIFY_CLIENT_SECRET", fc.Spotify.ClientSecret)
	cfg.Spotify.RefreshToken = envOr("SPOTIFY_REFRESH_TOKEN", fc.Spotify.RefreshToken)

	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" || cfg.Spotify.RefreshToken == "" {
		return nil, fmt.Errorf("spotify credentials are not set")
	}

	cfg.ServerPort = envOr("SERVER_PORT", fc.Server.Port)
	if cfg.ServerPort == "" {
		cfg.ServerPort = "3000"
	}

	cfg.AllowedOrigins = fc.Server.AllowedOrigins
	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		cfg.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	cfg.LogLevel = ParseLevel(envOr("LOG_LEVEL", fc.Log.Level))
	cfg.LogFormat = strings.ToLower(envOr("LOG_FORMAT", fc.Log.Format))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	cfg.Overlay.VisibleDuration = secondsToDuration(fc.Overlay.Duration)
	if raw := os.Getenv("OVERLAY_DURATION"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("invalid OVERLAY_DURATION %q, overlay will stay visible", raw))
			seconds = 0
		}
		cfg.Overlay.VisibleDuration = secondsToDuration(seconds)
	}

	cfg.Overlay.HideAlbumArt = fc.Overlay.HideAlbumArt
	if raw, ok := os.LookupEnv("OVERLAY_HIDE_ALBUM_ART"); ok {
		cfg.Overlay.HideAlbumArt = presence(raw)
	}

	slideFrom, err := overlay.ParseSlideFrom(envOr("OVERLAY_SLIDE_FROM", fc.Overlay.SlideFrom))
	if err != nil {
		warnings = append(warnings, fmt.Errorf("falling back to default slide direction: %w", err))
	}
	cfg.Overlay.SlideFrom = slideFrom
	cfg.Warnings = warnings

	return cfg, nil
}

// Layout returns the overlay layout described by the configuration.
func (c *Config) Layout() overlay.Layout {
	return overlay.Layout{SlideFrom: c.Overlay.SlideFrom, HideAlbumArt: c.Overlay.HideAlbumArt}
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CreateConfigFile writes the example configuration to path. Existing files are never
// overwritten.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// presence treats a set variable as true unless it explicitly reads as false.
func presence(raw string) bool {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return true
}

// secondsToDuration treats non-positive values as "never auto-hide".
func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
