package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Cleaner   CleanerConfig   `yaml:"cleaner" envconfig:"CLEANER"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// CleanerConfig controls where the cleaner reads and writes and how
// delimited files are interpreted
type CleanerConfig struct {
	InputPath   string   `yaml:"input_path" envconfig:"INPUT_PATH"`
	OutputPath  string   `yaml:"output_path" envconfig:"OUTPUT_PATH"`
	Delimiter   string   `yaml:"delimiter" envconfig:"DELIMITER"`
	NATokens    []string `yaml:"na_tokens" envconfig:"NA_TOKENS"`
	TrimHeaders bool     `yaml:"trim_headers" envconfig:"TRIM_HEADERS"`
	BOMPrefix   bool     `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Sheet       string   `yaml:"sheet" envconfig:"SHEET"`
}

// ReportsConfig holds the defaults of the report commands
type ReportsConfig struct {
	Dir            string   `yaml:"dir" envconfig:"DIR"`
	FilterColumn   string   `yaml:"filter_column" envconfig:"FILTER_COLUMN"`
	FilterValue    string   `yaml:"filter_value" envconfig:"FILTER_VALUE"`
	ExcludeColumns []string `yaml:"exclude_columns" envconfig:"EXCLUDE_COLUMNS"`
	GroupColumn    string   `yaml:"group_column" envconfig:"GROUP_COLUMN"`
	GroupBy        string   `yaml:"group_by" envconfig:"GROUP_BY"`
	EntityColumn   string   `yaml:"entity_column" envconfig:"ENTITY_COLUMN"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	SaveDir         string          `yaml:"save_dir" envconfig:"SAVE_DIR"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig toggles tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then the YAML file at
// configFile (or the first of the usual locations when empty), then
// FINCLEANER_* environment variables. Later sources win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. An empty path means
// ".env", which may be missing.
func LoadEnvFile(path string) error {
	optional := path == ""
	if optional {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Cleaner.InputPath == "" {
		return fmt.Errorf("cleaner input path must be set")
	}
	if c.Cleaner.OutputPath == "" {
		return fmt.Errorf("cleaner output path must be set")
	}
	if c.Cleaner.InputPath == c.Cleaner.OutputPath {
		return fmt.Errorf("cleaner output path must differ from the input path")
	}
	if len([]rune(c.Cleaner.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Cleaner.Delimiter)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.SaveDir == "" {
		return fmt.Errorf("server save dir must be set")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// DelimiterRune returns the configured delimiter as a rune
func (c CleanerConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"fincleaner.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Cleaner: CleanerConfig{
			InputPath:  DefaultInputPath,
			OutputPath: DefaultOutputPath,
			Delimiter:  DefaultDelimiter,
		},
		Reports: ReportsConfig{
			Dir:            ".",
			FilterColumn:   DefaultFilterColumn,
			FilterValue:    DefaultFilterValue,
			ExcludeColumns: append([]string(nil), DefaultExcludeColumns...),
			GroupColumn:    DefaultGroupColumn,
			GroupBy:        DefaultGroupBy,
			EntityColumn:   DefaultEntityColumn,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			SaveDir:         DefaultSaveDir,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracingEnabled: false,
			MetricsEnabled: true,
		},
	}
}
