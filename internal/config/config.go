// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/joho/godotenv"
)

// Settings are the process-wide settings.
type Settings struct {
	HubEndpoint string `env:"TASKPIPE_HUB_ENDPOINT,default=https://huggingface.co"`
	CacheDir    string `env:"TASKPIPE_CACHE_DIR"`
	HubToken    string `env:"HF_TOKEN"`
	Offline     bool   `env:"TASKPIPE_OFFLINE,default=false"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	// AccelConfig is a YAML accelerator configuration file; empty means cpu.
	AccelConfig string `env:"TASKPIPE_ACCEL_CONFIG"`
}

// Load reads settings from the environment after loading the given dotenv files.
// Missing dotenv files are ignored; variables already set are not overridden.
func Load(dotenv ...string) (Settings, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	var s Settings
	if _, err := env.UnmarshalFromEnviron(&s); err != nil {
		return Settings{}, fmt.Errorf("config error: %w", err)
	}
	if s.CacheDir == "" {
		s.CacheDir = defaultCacheDir()
	}
	return s, nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "taskpipe")
	}
	return filepath.Join(dir, "taskpipe")
}

// Level parses LogLevel. Unknown values fall back to info.
func (s Settings) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Logger returns a text logger writing to w at the configured level.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.Level()}))
}

// Accelerator returns the configured accelerator, cpu when none is set.
func (s Settings) Accelerator() (accel.Config, error) {
	if s.AccelConfig == "" {
		return accel.Default(), nil
	}
	return accel.Load(s.AccelConfig)
}

// ManifestDir is where the snapshot manifest database lives.
func (s Settings) ManifestDir() string {
	return filepath.Join(s.CacheDir, "manifest")
}

// HubOptions returns the hub client options. The manifest and HTTP client are left to
// the caller.
func (s Settings) HubOptions(log *slog.Logger) hub.Options {
	return hub.Options{
		Endpoint: s.HubEndpoint,
		CacheDir: filepath.Join(s.CacheDir, "hub"),
		Offline:  s.Offline,
		Logger:   log,
	}
}
