package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ftracker "github.com/lucasjlepore/fit-tracker"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultFormat    = "parquet"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultOutputDir = "ftracker_out"

	// EnvPath names the environment variable holding the default config path.
	EnvPath = "FTRACKER_CONFIG"
)

// Config is the top-level tracker configuration.
type Config struct {
	Athlete  ftracker.Athlete   `yaml:"athlete"`
	Packages []ftracker.Package `yaml:"packages"`
	// FitFiles are activity files analyzed after the packages.
	FitFiles []string      `yaml:"fit_files"`
	Output   OutputConfig  `yaml:"output"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Log      LogConfig     `yaml:"log"`
}

// OutputConfig controls the export pipeline.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Format is the tabular report format: parquet | csv.
	Format    string `yaml:"format"`
	Overwrite bool   `yaml:"overwrite"`
}

// MetricsConfig controls the Prometheus textfile.
type MetricsConfig struct {
	// Textfile is written after every run when set.
	Textfile string `yaml:"textfile"`
}

// LogConfig controls the slog handler built by the commands.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps Level to a slog.Level. Unknown levels map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
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

// NewHandler builds the slog handler the commands install: JSON unless
// Format is "text", filtered at SlogLevel.
func (l LogConfig) NewHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, f := range cfg.FitFiles {
		if !filepath.IsAbs(f) {
			cfg.FitFiles[i] = filepath.Join(base, f)
		}
	}
	return cfg, nil
}

// Parse decodes a YAML document, applies defaults and validates the result.
// Relative fit_files are left untouched.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:       DefaultOutputDir,
			Format:    DefaultFormat,
			Overwrite: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Athlete.WeightKG < 0 {
		return fmt.Errorf("athlete.weight_kg must be positive")
	}
	if cfg.Athlete.HeightCM < 0 {
		return fmt.Errorf("athlete.height_cm must be positive")
	}
	for i, pkg := range cfg.Packages {
		kind, err := ftracker.ParseCode(pkg.Code)
		if err != nil {
			return fmt.Errorf("packages[%d]: %w", i, err)
		}
		if len(pkg.Values) != kind.Arity() {
			return fmt.Errorf("packages[%d] %s: %w: want %d values, got %d",
				i, pkg.Code, ftracker.ErrArityMismatch, kind.Arity(), len(pkg.Values))
		}
	}
	for i, f := range cfg.FitFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("fit_files[%d]: path is empty", i)
		}
	}
	switch cfg.Output.Format {
	case "parquet", "csv":
	default:
		return fmt.Errorf("output.format: unknown format %q", cfg.Output.Format)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	return nil
}
