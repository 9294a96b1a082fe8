package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Classes  ClassesConfig  `yaml:"classes"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds the local HTTP API configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// BackendConfig describes how to reach the Fitness Prime REST API.
type BackendConfig struct {
	BaseURL        string            `yaml:"base_url"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Timeout        time.Duration     `yaml:"-"`
	HTTPProxy      string            `yaml:"http_proxy"`
	Headers        map[string]string `yaml:"headers"`
	AdminToken     string            `yaml:"admin_token"`
}

// ClassesConfig tunes the class listing pipeline.
type ClassesConfig struct {
	Timezone               string        `yaml:"timezone"`
	BookingLeadMinutes     int           `yaml:"booking_lead_minutes"`
	BookingLead            time.Duration `yaml:"-"`
	LoadTimeoutSeconds     int           `yaml:"load_timeout_seconds"`
	LoadTimeout            time.Duration `yaml:"-"`
	RefreshIntervalSeconds int           `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the local database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path. A .env file in the
// working directory and FITPRIME_* environment variables are applied on top.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v, ok := os.LookupEnv("FITPRIME_BACKEND_URL"); ok {
		cfg.Backend.BaseURL = v
	}
	if v, ok := os.LookupEnv("FITPRIME_ADMIN_TOKEN"); ok {
		cfg.Backend.AdminToken = v
	}
	if v, ok := os.LookupEnv("FITPRIME_DB_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := os.LookupEnv("FITPRIME_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &envError{key: "FITPRIME_PORT", value: v, err: err}
		}
		cfg.Server.Port = port
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:5500"
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}
	cfg.Backend.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	if cfg.Classes.Timezone == "" {
		cfg.Classes.Timezone = "America/Argentina/Buenos_Aires"
	}
	if cfg.Classes.BookingLeadMinutes <= 0 {
		cfg.Classes.BookingLeadMinutes = 30
	}
	cfg.Classes.BookingLead = time.Duration(cfg.Classes.BookingLeadMinutes) * time.Minute
	if cfg.Classes.LoadTimeoutSeconds <= 0 {
		cfg.Classes.LoadTimeoutSeconds = 20
	}
	cfg.Classes.LoadTimeout = time.Duration(cfg.Classes.LoadTimeoutSeconds) * time.Second
	if cfg.Classes.RefreshIntervalSeconds < 0 {
		cfg.Classes.RefreshIntervalSeconds = 0
	}
	cfg.Classes.RefreshInterval = time.Duration(cfg.Classes.RefreshIntervalSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		log.Printf("database.dsn is not set; defaulting to ./fitprime.db")
		cfg.Database.DSN = "./fitprime.db"
	}
}

type envError struct {
	key   string
	value string
	err   error
}

func (e *envError) Error() string {
	return "env " + e.key + " value " + strconv.Quote(e.value) + " is invalid: " + e.err.Error()
}

func (e *envError) Unwrap() error { return e.err }
