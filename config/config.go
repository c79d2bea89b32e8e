// Package config reads the pcs configuration: a YAML file, then environment
// variables, optionally loaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/portfoy/portfolio"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvConfig      = "PCS_CONFIG"
	EnvStoreDriver = "PCS_STORE_DRIVER"
	EnvStorePath   = "PCS_STORE_PATH"
	EnvLogLevel    = "PCS_LOG_LEVEL"
	EnvServerAddr  = "PCS_SERVER_ADDR"
	EnvServerBurst = "PCS_SERVER_BURST"
	EnvForexURL    = "PCS_FOREX_URL"
	EnvLanguage    = "PCS_LANGUAGE"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	Store struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Rates struct {
		// Defaults are used until rates are set or refreshed.
		Defaults map[string]string `yaml:"defaults"`
	} `yaml:"rates"`
	Forex struct {
		URL               string `yaml:"url"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
		CacheDir          string `yaml:"cache_dir"`
	} `yaml:"forex"`
	Agent struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
		Top      int    `yaml:"top"`
	} `yaml:"agent"`
	Server struct {
		Addr              string        `yaml:"addr"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		ReadTimeout       time.Duration `yaml:"read_timeout"`
		WriteTimeout      time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file is given. Data lives
// in dir.
func Default(dir string) *Config {
	c := &Config{}
	c.Store.Driver = DriverFile
	c.Store.Path = dir
	c.Log.Level = "info"
	c.Rates.Defaults = map[string]string{"USD": "32.50", "EUR": "35.20", "GBP": "41.10"}
	c.Forex.URL = "https://open.er-api.com"
	c.Forex.RequestsPerMinute = 60
	c.Agent.Model = "gemini-2.5-flash"
	c.Agent.Language = "Turkish"
	c.Agent.Top = 10
	c.Server.Addr = "localhost:8080"
	c.Server.RequestsPerSecond = 10
	c.Server.Burst = 30
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	return c
}

// DefaultDir is the data folder when none is configured: ~/.pcs, or .pcs
// when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pcs"
	}
	return filepath.Join(home, ".pcs")
}

// Load reads the YAML file at path on top of the defaults, then applies the
// environment. An empty path is PCS_CONFIG, or ~/.pcs/config.yaml which may
// be missing. A .env file in the working directory is loaded first when
// present, without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}
	c := Default(DefaultDir())
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = filepath.Join(DefaultDir(), "config.yaml")
		if err := c.readFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else if err := c.readFile(path); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("invalid config %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Store.Driver = getEnv(EnvStoreDriver, c.Store.Driver)
	c.Store.Path = getEnv(EnvStorePath, c.Store.Path)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Server.Addr = getEnv(EnvServerAddr, c.Server.Addr)
	c.Forex.URL = getEnv(EnvForexURL, c.Forex.URL)
	c.Agent.Language = getEnv(EnvLanguage, c.Agent.Language)
	if v, ok := os.LookupEnv(EnvServerBurst); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvServerBurst, v, err)
		}
		c.Server.Burst = burst
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Validate checks every field and reports all the problems at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", DriverFile, DriverSQLite, c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store.path cannot be empty"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.DefaultRates(); err != nil {
		errs = append(errs, fmt.Errorf("rates.defaults: %w", err))
	}
	if c.Forex.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("forex.requests_per_minute must be positive, got %d", c.Forex.RequestsPerMinute))
	}
	if c.Agent.Top <= 0 {
		errs = append(errs, fmt.Errorf("agent.top must be positive, got %d", c.Agent.Top))
	}
	if c.Server.RequestsPerSecond <= 0 || c.Server.Burst <= 0 {
		errs = append(errs, fmt.Errorf("server.requests_per_second and server.burst must be positive, got %g and %d", c.Server.RequestsPerSecond, c.Server.Burst))
	}
	return errors.Join(errs...)
}

// DSN returns the data source name understood by store.Open.
func (c *Config) DSN() string {
	if c.Store.Driver == DriverSQLite {
		path := c.Store.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "portfolio.db")
		}
		return "sqlite:" + path
	}
	return c.Store.Path
}

// DefaultRates parses the configured default rates.
func (c *Config) DefaultRates() (portfolio.RateTable, error) {
	var errs []error
	rates := portfolio.RateTable{}
	for code, raw := range c.Rates.Defaults {
		cur, err := portfolio.ParseCurrency(code)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r, err := portfolio.ParseRate(cur, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rates, err = rates.With(cur, r); err != nil {
			errs = append(errs, err)
		}
	}
	return rates, errors.Join(errs...)
}

// Logger returns a logger writing text to stderr at the configured level.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(level)
	}
	return log
}
