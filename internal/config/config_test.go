package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"skidoodle/nowplaying/internal/overlay"
)

var envKeys = []string{
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REFRESH_TOKEN",
	"SERVER_PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"OVERLAY_DURATION", "OVERLAY_HIDE_ALBUM_ART", "OVERLAY_SLIDE_FROM",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "refresh")
}

func TestLoad(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(""); err == nil {
			t.Error("expected error for missing credentials")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)
		setCredentials(t)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.ServerPort != "3000" {
			t.Errorf("expected port 3000, got %s", cfg.ServerPort)
		}
		if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
			t.Errorf("unexpected log settings %v %s", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.Overlay.VisibleDuration != 0 || cfg.Overlay.HideAlbumArt {
			t.Errorf("unexpected overlay defaults %+v", cfg.Overlay)
		}
		if cfg.Overlay.SlideFrom != overlay.SlideFromBottom {
			t.Errorf("expected bottom slide, got %s", cfg.Overlay.SlideFrom)
		}
		if len(cfg.AllowedOrigins) != 0 {
			t.Errorf("expected no origin restrictions, got %v", cfg.AllowedOrigins)
		}
	})

	t.Run("Environment", func(t *testing.T) {
		clearEnv(t)
		setCredentials(t)
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("OVERLAY_DURATION", "7.5")
		t.Setenv("OVERLAY_HIDE_ALBUM_ART", "1")
		t.Setenv("OVERLAY_SLIDE_FROM", "left")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.ServerPort != "8080" {
			t.Errorf("expected port 8080, got %s", cfg.ServerPort)
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
			t.Errorf("unexpected log settings %v %s", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.Overlay.VisibleDuration != 7500*time.Millisecond {
			t.Errorf("expected 7.5s, got %v", cfg.Overlay.VisibleDuration)
		}
		layout := cfg.Layout()
		if !layout.HideAlbumArt || layout.SlideFrom != overlay.SlideFromLeft {
			t.Errorf("unexpected layout %+v", layout)
		}
	})

	t.Run("Invalid Overlay Values Fall Back", func(t *testing.T) {
		clearEnv(t)
		setCredentials(t)
		t.Setenv("OVERLAY_DURATION", "soon")
		t.Setenv("OVERLAY_SLIDE_FROM", "sideways")
		t.Setenv("OVERLAY_HIDE_ALBUM_ART", "false")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Overlay.VisibleDuration != 0 {
			t.Errorf("expected no auto-hide, got %v", cfg.Overlay.VisibleDuration)
		}
		if cfg.Overlay.SlideFrom != overlay.SlideFromBottom {
			t.Errorf("expected bottom fallback, got %s", cfg.Overlay.SlideFrom)
		}
		if cfg.Overlay.HideAlbumArt {
			t.Error("expected explicit false to keep album art")
		}
	})

	t.Run("Warnings Are Returned Not Logged", func(t *testing.T) {
		clearEnv(t)
		setCredentials(t)
		t.Setenv("OVERLAY_DURATION", "soon")
		t.Setenv("OVERLAY_SLIDE_FROM", "sideways")

		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		t.Cleanup(func() { slog.SetDefault(prev) })

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected nothing logged before setup, got %q", buf.String())
		}

		// The package directory has no .env file.
		var joined []string
		for _, w := range cfg.Warnings {
			joined = append(joined, w.Error())
		}
		all := strings.Join(joined, "\n")
		for _, want := range []string{".env", "OVERLAY_DURATION", "slide direction"} {
			if !strings.Contains(all, want) {
				t.Errorf("expected a warning mentioning %q, got %q", want, all)
			}
		}
	})

	t.Run("File With Environment Override", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[spotify]
client_id = "file-id"
client_secret = "file-secret"
refresh_token = "file-refresh"

[server]
port = "4000"
allowed_origins = ["https://obs.local"]

[overlay]
duration = 10
slide_from = "top"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Setenv("SERVER_PORT", "5000")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Spotify.ClientID != "file-id" {
			t.Errorf("expected client id from file, got %s", cfg.Spotify.ClientID)
		}
		if cfg.ServerPort != "5000" {
			t.Errorf("expected env port to win, got %s", cfg.ServerPort)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://obs.local" {
			t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.Overlay.VisibleDuration != 10*time.Second || cfg.Overlay.SlideFrom != overlay.SlideFromTop {
			t.Errorf("unexpected overlay %+v", cfg.Overlay)
		}
	})

	t.Run("Malformed File", func(t *testing.T) {
		clearEnv(t)
		setCredentials(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[spotify\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}
	if cfg.Spotify.ClientID != "your_spotify_client_id" {
		t.Errorf("expected example client id, got %s", cfg.Spotify.ClientID)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("expected example port, got %s", cfg.ServerPort)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("creating config file again should fail")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
