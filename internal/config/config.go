package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"fpl-points-lab/internal/domain"
)

// Config is the full pipeline configuration.
// Precedence: defaults < TOML file < FPL_* environment < CLI flags.
type Config struct {
	General  GeneralConfig  `toml:"general"  envPrefix:"FPL_"`
	Storage  StorageConfig  `toml:"storage"  envPrefix:"FPL_"`
	Panel    PanelConfig    `toml:"panel"    envPrefix:"FPL_"`
	Backtest BacktestConfig `toml:"backtest" envPrefix:"FPL_"`
	Server   ServerConfig   `toml:"server"   envPrefix:"FPL_"`
}

type GeneralConfig struct {
	Season    string `toml:"season"     env:"SEASON"`
	DataDir   string `toml:"data_dir"   env:"DATA_DIR"`
	OutputDir string `toml:"output_dir" env:"OUTPUT_DIR"`
	LogLevel  string `toml:"log_level"  env:"LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"LOG_FORMAT"`
}

type StorageConfig struct {
	PostgresDSN   string `toml:"postgres_dsn"   env:"POSTGRES_DSN"`
	ClickhouseDSN string `toml:"clickhouse_dsn" env:"CLICKHOUSE_DSN"`
	RegistryPath  string `toml:"registry_path"  env:"REGISTRY_PATH"`
}

type PanelConfig struct {
	Windows []int `toml:"windows" env:"WINDOWS" envSeparator:","`
}

type BacktestConfig struct {
	Models      []string `toml:"models"       env:"MODELS"       envSeparator:","`
	StartCutoff int      `toml:"start_cutoff" env:"START_CUTOFF"`
	Workers     int      `toml:"workers"      env:"WORKERS"`
}

type ServerConfig struct {
	Addr     string   `toml:"addr"     env:"ADDR"`
	Interval Duration `toml:"interval" env:"INTERVAL"`
}

// Duration wraps time.Duration for TOML and env unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Load reads defaults, then the TOML file at path (if non-empty), then
// FPL_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DataDir:   "./data",
			OutputDir: "./out",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Storage: StorageConfig{
			RegistryPath: "./out/registry.db",
		},
		Panel: PanelConfig{
			Windows: []int{3, 5},
		},
		Backtest: BacktestConfig{
			Models:      []string{domain.ModelForm, domain.ModelTwoStage},
			StartCutoff: 5,
			Workers:     4,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Interval: Duration{6 * time.Hour},
		},
	}
}

var knownModels = map[string]bool{
	domain.ModelForm:     true,
	domain.ModelTwoStage: true,
}

// Validate checks parameter ranges. Returns *domain.ConfigError.
func (c *Config) Validate() error {
	if len(c.Panel.Windows) == 0 {
		return &domain.ConfigError{Field: "panel.windows", Detail: "at least one window size required"}
	}
	seen := make(map[int]bool, len(c.Panel.Windows))
	for _, w := range c.Panel.Windows {
		if w < 1 {
			return &domain.ConfigError{Field: "panel.windows", Detail: fmt.Sprintf("window size %d must be >= 1", w)}
		}
		if seen[w] {
			return &domain.ConfigError{Field: "panel.windows", Detail: fmt.Sprintf("duplicate window size %d", w)}
		}
		seen[w] = true
	}
	sort.Ints(c.Panel.Windows)

	if len(c.Backtest.Models) == 0 {
		return &domain.ConfigError{Field: "backtest.models", Detail: "at least one model required"}
	}
	for _, m := range c.Backtest.Models {
		if !knownModels[m] {
			return &domain.ConfigError{Field: "backtest.models", Detail: fmt.Sprintf("unknown model %q", m)}
		}
	}
	if c.Backtest.StartCutoff < 1 {
		return &domain.ConfigError{Field: "backtest.start_cutoff", Detail: "must be >= 1"}
	}
	if c.Backtest.Workers < 1 {
		return &domain.ConfigError{Field: "backtest.workers", Detail: "must be >= 1"}
	}

	switch c.General.LogFormat {
	case "text", "json":
	default:
		return &domain.ConfigError{Field: "general.log_format", Detail: fmt.Sprintf("unknown format %q", c.General.LogFormat)}
	}

	if c.Server.Interval.Duration <= 0 {
		return &domain.ConfigError{Field: "server.interval", Detail: "must be positive"}
	}
	return nil
}

// ParseWindows parses a comma-separated list of window sizes ("3,5").
func ParseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil {
			return nil, &domain.ConfigError{Field: "panel.windows", Detail: fmt.Sprintf("window size %q is not an integer", part)}
		}
		out = append(out, w)
	}
	return out, nil
}
