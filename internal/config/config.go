package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). Every field has a
// default, so an empty or missing file yields a runnable setup.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Irradiance IrradianceConfig `yaml:"irradiance"`
	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	TLSCert         string        `yaml:"tls_cert"`
	TLSKey          string        `yaml:"tls_key"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Per-IP token bucket for the /api tree.
	RateLimit   float64       `yaml:"rate_limit"`
	RateBurst   int           `yaml:"rate_burst"`
	CORSOrigins []string      `yaml:"cors_origins"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	// Insecure serves plain HTTP and drops the Secure cookie flag.
	Insecure bool   `yaml:"insecure"`
	TokenKey string `yaml:"-"`
}

// MemoryDatabase as the URL keeps users and sites in process memory.
const MemoryDatabase = "memory"

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type IrradianceConfig struct {
	BaseURL           string        `yaml:"base_url"`
	ReferenceYear     int           `yaml:"reference_year"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

type OptimizerConfig struct {
	MinValidMonths int     `yaml:"min_valid_months"`
	StepDeg        int     `yaml:"step_deg"`
	MaxDeg         int     `yaml:"max_deg"`
	Albedo         float64 `yaml:"albedo"`
	Concurrency    int     `yaml:"concurrency"`
}

type LogConfig struct {
	Debug      bool   `yaml:"debug"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8443",
			ShutdownTimeout: 5 * time.Second,
			RateLimit:       1,
			RateBurst:       3,
			CORSOrigins:     []string{"*"},
			TokenTTL:        30 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			URL: "user=postgres dbname=postgres password=password sslmode=disable",
		},
		Irradiance: IrradianceConfig{
			BaseURL:           "https://archive-api.open-meteo.com",
			ReferenceYear:     2023,
			Timeout:           15 * time.Second,
			MaxAttempts:       4,
			BaseDelay:         500 * time.Millisecond,
			RequestsPerSecond: 8,
			CacheTTL:          6 * time.Hour,
		},
		Optimizer: OptimizerConfig{
			MinValidMonths: 10,
			StepDeg:        5,
			MaxDeg:         90,
			Albedo:         0.2,
			Concurrency:    12,
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// .env file (if present) and environment overrides. An empty path skips the
// file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// .env is optional outside of the deployed server.
	_ = godotenv.Load()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HELIO_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TOKEN_KEY"); v != "" {
		c.Server.TokenKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("HELIO_IRRADIANCE_URL"); v != "" {
		c.Irradiance.BaseURL = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Irradiance.BaseURL == "" {
		return errors.New("irradiance.base_url is required")
	}
	if c.Irradiance.MaxAttempts < 1 {
		return errors.New("irradiance.max_attempts must be >= 1")
	}
	if c.Irradiance.BaseDelay < 0 {
		return errors.New("irradiance.base_delay must be >= 0")
	}
	if c.Irradiance.ReferenceYear < 1940 {
		return fmt.Errorf("irradiance.reference_year %d predates the archive", c.Irradiance.ReferenceYear)
	}
	if c.Optimizer.MinValidMonths < 1 || c.Optimizer.MinValidMonths > 12 {
		return errors.New("optimizer.min_valid_months must be in [1, 12]")
	}
	if c.Optimizer.StepDeg < 1 {
		return errors.New("optimizer.step_deg must be >= 1")
	}
	if c.Optimizer.MaxDeg < 0 || c.Optimizer.MaxDeg > 90 {
		return errors.New("optimizer.max_deg must be in [0, 90]")
	}
	if c.Optimizer.Albedo < 0 || c.Optimizer.Albedo > 1 {
		return errors.New("optimizer.albedo must be in [0, 1]")
	}
	if !c.Server.Insecure && (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return errors.New("server.rate_limit and server.rate_burst must be positive")
	}
	return nil
}
