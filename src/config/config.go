package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"liftbank/src/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHTTPAddr   = ":8000"
	DefaultQUICAddr   = ":8443"
	DefaultLogLevel   = "info"
	DefaultConfigFile = "liftbank.yaml"
	DefaultEnvFile    = ".env"

	OpenStreamTimeout = 2 * time.Second
	CommandTimeout    = 5 * time.Second
	MaxCommandSize    = 64 << 10
	MaxResponseSize   = 4 << 20
	ShutdownTimeout   = 5 * time.Second
)

// Environment variables, read from the process first and then from the .env file.
const (
	EnvHTTPAddr     = "LIFTBANK_HTTP_ADDR"
	EnvQUICAddr     = "LIFTBANK_QUIC_ADDR"
	EnvLogLevel     = "LIFTBANK_LOG_LEVEL"
	EnvLogFile      = "LIFTBANK_LOG_FILE"
	EnvStepInterval = "LIFTBANK_STEP_INTERVAL"
	EnvElevators    = "LIFTBANK_ELEVATORS"
)

type Config struct {
	// Empty disables the listener.
	HTTPAddr string `yaml:"http_addr"`
	QUICAddr string `yaml:"quic_addr"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// StepInterval > 0 steps the whole fleet on every tick.
	StepInterval time.Duration `yaml:"step_interval"`
	// Elevators > 0 initializes the fleet at startup.
	Elevators int `yaml:"elevators"`
}

func Default() Config {
	return Config{
		HTTPAddr: DefaultHTTPAddr,
		QUICAddr: DefaultQUICAddr,
		LogLevel: DefaultLogLevel,
	}
}

// Load starts from Default, applies the YAML file at path (if any), then the
// environment. A missing envFile is not an error, and neither is a missing
// DefaultConfigFile.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readYAML(path); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		var err error
		dotenv, err = godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) readYAML(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFile {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv(lookup func(key string) (string, bool)) error {
	if value, ok := lookup(EnvHTTPAddr); ok {
		cfg.HTTPAddr = value
	}
	if value, ok := lookup(EnvQUICAddr); ok {
		cfg.QUICAddr = value
	}
	if value, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = value
	}
	if value, ok := lookup(EnvLogFile); ok {
		cfg.LogFile = value
	}
	if value, ok := lookup(EnvStepInterval); ok {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStepInterval, err)
		}
		cfg.StepInterval = interval
	}
	if value, ok := lookup(EnvElevators); ok {
		count, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvElevators, err)
		}
		cfg.Elevators = count
	}
	return nil
}

func (cfg Config) Validate() error {
	if cfg.HTTPAddr == "" && cfg.QUICAddr == "" {
		return errors.New("config: at least one of http_addr and quic_addr must be set")
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.StepInterval < 0 {
		return fmt.Errorf("config: step_interval %v is negative", cfg.StepInterval)
	}
	if cfg.Elevators < 0 {
		return fmt.Errorf("config: elevators %d is negative", cfg.Elevators)
	}
	return nil
}
