// Package config loads the csvinfer command settings.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
)

// Output formats of the analysis report
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Schema renderers
const (
	RenderNone   = ""
	RenderGo     = "go"
	RenderSQLite = "sqlite"
	RenderArrow  = "arrow"
)

// Config holds the command configuration.
// Values come from an optional YAML file with CSVINFER_* environment variable overrides;
// command-line flags are applied on top by the caller.
type Config struct {
	// Analysis configuration
	Analysis AnalysisConfig `yaml:"analysis"`

	// Output configuration
	Output OutputConfig `yaml:"output"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// AnalysisConfig holds the sampling and resolution settings.
type AnalysisConfig struct {
	MaxRowsToAnalyze    int64   `yaml:"max_rows" env:"CSVINFER_MAX_ROWS" env-default:"10000"`
	HeadRows            int64   `yaml:"head_rows" env:"CSVINFER_HEAD_ROWS" env-default:"5000"`
	TailRows            int64   `yaml:"tail_rows" env:"CSVINFER_TAIL_ROWS" env-default:"1000"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"CSVINFER_CONFIDENCE_THRESHOLD" env-default:"0.95"`
	TolerateOutliers    bool    `yaml:"tolerate_outliers" env:"CSVINFER_TOLERATE_OUTLIERS" env-default:"false"`
	// ReservoirSeed seeds the single-pass sampler used for standard input.
	ReservoirSeed uint64 `yaml:"reservoir_seed" env:"CSVINFER_RESERVOIR_SEED" env-default:"1"`
	// Concurrency is how many files are analyzed at once.
	Concurrency int `yaml:"concurrency" env:"CSVINFER_CONCURRENCY" env-default:"4"`
	// MemoryLimitMB is the heap ceiling; 0 disables the guard.
	MemoryLimitMB int64 `yaml:"memory_limit_mb" env:"CSVINFER_MEMORY_LIMIT_MB" env-default:"512"`
	// MemoryWarningThreshold is the share of the limit at which a warning is logged.
	MemoryWarningThreshold float64 `yaml:"memory_warning_threshold" env:"CSVINFER_MEMORY_WARNING_THRESHOLD" env-default:"0.8"`
	// StdinFormat is the format of standard input: csv, tsv, xlsx or parquet.
	StdinFormat string `yaml:"stdin_format" env:"CSVINFER_STDIN_FORMAT" env-default:"csv"`
}

// OutputConfig holds the report settings.
type OutputConfig struct {
	Format string `yaml:"format" env:"CSVINFER_FORMAT" env-default:"table"`
	Render string `yaml:"render" env:"CSVINFER_RENDER" env-default:""`
	// PackageName and TypeName are used by the Go renderer.
	PackageName string `yaml:"package_name" env:"CSVINFER_PACKAGE_NAME" env-default:"model"`
	TypeName    string `yaml:"type_name" env:"CSVINFER_TYPE_NAME" env-default:"Record"`
	// Progress prints progress updates to standard error.
	Progress bool `yaml:"progress" env:"CSVINFER_PROGRESS" env-default:"false"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level    string `yaml:"level" env:"CSVINFER_LOG_LEVEL" env-default:"warn"`
	Encoding string `yaml:"encoding" env:"CSVINFER_LOG_ENCODING" env-default:"console"`
}

// Load reads the configuration. An empty path reads environment variables only;
// otherwise the YAML file is read and environment variables override its values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the analyzer does not check itself.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{FormatTable, FormatJSON, FormatYAML}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("unknown output format %q (want table, json or yaml)", c.Output.Format))
	}
	if !slices.Contains([]string{RenderNone, RenderGo, RenderSQLite, RenderArrow}, c.Output.Render) {
		errs = append(errs, fmt.Errorf("unknown renderer %q (want go, sqlite or arrow)", c.Output.Render))
	}
	if !slices.Contains([]string{"console", "json"}, c.Log.Encoding) {
		errs = append(errs, fmt.Errorf("unknown log encoding %q (want console or json)", c.Log.Encoding))
	}
	return errors.Join(errs...)
}

// Usage returns the description of every environment variable.
func Usage() (string, error) {
	return cleanenv.GetDescription(&Config{}, nil)
}
