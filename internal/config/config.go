package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port int `envconfig:"PORT" default:"8080"`
	// DatabaseURL selects the Postgres store; empty keeps boards in DataDir.
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DataDir           string        `envconfig:"DATA_DIR" default:"./data/boards"`
	AssetDir          string        `envconfig:"ASSET_DIR" default:"./data/assets"`
	BoardID           string        `envconfig:"BOARD_ID" default:"default"`
	AllowedOrigins    string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	AutosaveInterval  time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"30s"`
	ExportWidth       float64       `envconfig:"EXPORT_WIDTH" default:"1280"`
	ExportHeight      float64       `envconfig:"EXPORT_HEIGHT" default:"720"`
	DefaultBackground string        `envconfig:"DEFAULT_BACKGROUND" default:"#ffffff"`
	HistoryLimit      int           `envconfig:"HISTORY_LIMIT" default:"100"`
	LogLevel          slog.Level    `envconfig:"LOG_LEVEL" default:"INFO"`
}

// Load reads the environment, after loading envFiles (if they exist) into
// it. Variables already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AutosaveInterval <= 0 {
		return nil, fmt.Errorf("AUTOSAVE_INTERVAL must be positive, got %s", cfg.AutosaveInterval)
	}
	if cfg.ExportWidth <= 0 || cfg.ExportHeight <= 0 {
		return nil, fmt.Errorf("export size must be positive, got %vx%v", cfg.ExportWidth, cfg.ExportHeight)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
