package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/sartorproj/tfpforecast/dataset"
)

// EnvPrefix prefixes every environment variable, e.g. TFP_FIT_TIMEOUT.
const EnvPrefix = "TFP"

// Config represents the complete application configuration
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" envconfig:"DATASET"`
	Fit     FitConfig     `yaml:"fit" envconfig:"FIT"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
}

// DatasetConfig locates the productivity dataset
type DatasetConfig struct {
	Source    string        `yaml:"source" envconfig:"SOURCE" validate:"oneof=csv sqlite"`
	URL       string        `yaml:"url" envconfig:"URL" validate:"required_if=Source csv,omitempty,url"`
	CachePath string        `yaml:"cache_path" envconfig:"CACHE_PATH" validate:"required_if=Source csv"`
	DBPath    string        `yaml:"db_path" envconfig:"DB_PATH" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// FitConfig bounds model fitting
type FitConfig struct {
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
	MaxIterations int           `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gte=0"`
	Concurrency   int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=3"`
}

// OutputConfig controls chart rendering
type OutputConfig struct {
	ChartWidth  float64 `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"gt=0"`   // inches
	ChartHeight float64 `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"gt=0"` // inches
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// Addr returns host:port for listening.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:    "csv",
			URL:       dataset.DefaultURL,
			CachePath: "downloads/data.csv",
			DBPath:    "downloads/tfp.db",
			Timeout:   60 * time.Second,
		},
		Fit: FitConfig{
			Timeout:     30 * time.Second,
			Concurrency: 1,
		},
		Output: OutputConfig{
			ChartWidth:  10,
			ChartHeight: 6,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/tfpforecast.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration from, in increasing precedence, the built-in
// defaults, the YAML file at path (or $TFP_CONFIG), and TFP_* environment
// variables. A .env file (or $TFP_ENV_FILE) is read into the environment
// first without overriding variables that are already set.
func Load(path string) (*Config, error) {
	envFile := os.Getenv(EnvPrefix + "_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
