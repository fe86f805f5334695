// Package config loads and validates the gateway configuration. The source
// of truth is a TOML file; a .env file and a small set of environment
// variables override it for the deployment-specific knobs (upstream URL and
// token, CORS origin and headers).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Version is the supported config file format version.
const Version = "0.1.0"

// Supported database drivers.
const (
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"
)

// Environment variables overriding the config file.
const (
	EnvUpstreamURL   = "TRADEGATE_UPSTREAM_URL"
	EnvUpstreamToken = "TRADEGATE_UPSTREAM_TOKEN"
	EnvCORSOrigin    = "TRADEGATE_CORS_ORIGIN"
	EnvCORSHeaders   = "TRADEGATE_CORS_HEADERS"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultCORSOrigin         = "*"
	DefaultCORSHeaders        = "authorization,apikey,content-type"
	DefaultMaxRequestBodySize = 10 << 20
	DefaultRequestTimeout     = "30s"
)

// UpstreamConfig holds the classification backend settings. URL may be left
// empty; the proxy then rejects requests with a 500 until it is configured.
type UpstreamConfig struct {
	URL   string `toml:"url"`   // base URL of the classification backend
	Token string `toml:"token"` // bearer token; attached only when set
}

// CORSConfig holds the browser-facing CORS settings.
type CORSConfig struct {
	AllowOrigin  string `toml:"allow_origin"`  // Access-Control-Allow-Origin value
	AllowHeaders string `toml:"allow_headers"` // Access-Control-Allow-Headers value
}

// ConfigParam holds all configuration parameters for the gateway service.
type ConfigParam struct {
	// Configuration version
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	// Server configuration
	ServerHostName     string `toml:"server_hostname"`       // Hostname for the server
	ServerPort         string `toml:"server_port"`           // Port for the server
	HandleCORS         bool   `toml:"handle_cors"`           // Whether to handle CORS on the API surface
	MaxRequestBodySize int64  `toml:"max_request_body_size"` // Maximum size of request body in bytes
	RequestTimeout     string `toml:"request_timeout"`       // Timeout for session bookkeeping routes

	// Upstream classification backend
	Upstream UpstreamConfig `toml:"upstream"`

	// CORS configuration
	CORS CORSConfig `toml:"cors"`

	// Database configuration
	DB struct {
		Driver   string `toml:"driver"`   // postgres or memory
		Host     string `toml:"host"`     // Database host
		Port     int    `toml:"port"`     // Database port
		DBName   string `toml:"dbname"`   // Database name
		User     string `toml:"user"`     // Database user
		Password string `toml:"password"` // Database password
		SSLMode  string `toml:"sslmode"`  // SSL mode for database connection
	} `toml:"db"`
}

var cfg *ConfigParam

// Config returns the current configuration.
func Config() *ConfigParam {
	return cfg
}

// DSN returns the database connection string.
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// GetRequestTimeout returns the bookkeeping route timeout as time.Duration.
func (c *ConfigParam) GetRequestTimeout() (time.Duration, error) {
	return ParseDuration(c.RequestTimeout)
}

// GetRequestTimeoutOrDefault returns the bookkeeping route timeout or panics
// if the configured value is invalid.
func (c *ConfigParam) GetRequestTimeoutOrDefault() time.Duration {
	duration, err := c.GetRequestTimeout()
	if err != nil {
		panic(fmt.Sprintf("invalid request timeout: %v", err))
	}
	return duration
}

// ParseDuration parses a duration string in the format "<number><unit>"
// where unit can be:
// - y: years
// - d: days
// - h: hours
// - m: minutes
// - s: seconds
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "s":
		duration = time.Duration(value) * time.Second
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "y":
		// Assuming 1 year = 365 days for simplicity
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// ValidateConfig checks if all required configuration values are present and valid.
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateUpstreamConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	if cfg.FormatVersion != Version {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = DefaultMaxRequestBodySize
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if _, err := ParseDuration(cfg.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %v", err)
	}
	return nil
}

func validateUpstreamConfig(cfg *ConfigParam) error {
	// An empty URL is allowed at boot; the proxy answers 500 per request
	// until one is configured.
	if cfg.Upstream.URL != "" {
		u, err := url.Parse(cfg.Upstream.URL)
		if err != nil {
			return fmt.Errorf("invalid upstream.url: %v", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("upstream.url must be http or https")
		}
	}
	if cfg.CORS.AllowOrigin == "" {
		cfg.CORS.AllowOrigin = DefaultCORSOrigin
	}
	if cfg.CORS.AllowHeaders == "" {
		cfg.CORS.AllowHeaders = DefaultCORSHeaders
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	switch cfg.DB.Driver {
	case DBDriverMemory:
		return nil
	case DBDriverPostgres:
	case "":
		return fmt.Errorf("db.driver is required")
	default:
		return fmt.Errorf("unsupported db.driver: %s", cfg.DB.Driver)
	}
	if cfg.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.Password == "" {
		return fmt.Errorf("db.password is required")
	}
	if cfg.DB.SSLMode == "" {
		return fmt.Errorf("db.sslmode is required")
	}
	return nil
}

// applyEnvOverrides folds the deployment environment over the file values.
func applyEnvOverrides(cfg *ConfigParam) {
	if v := os.Getenv(EnvUpstreamURL); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv(EnvUpstreamToken); v != "" {
		cfg.Upstream.Token = v
	}
	if v := os.Getenv(EnvCORSOrigin); v != "" {
		cfg.CORS.AllowOrigin = v
	}
	if v := os.Getenv(EnvCORSHeaders); v != "" {
		cfg.CORS.AllowHeaders = v
	}
}

// LoadConfig loads configuration from a file, overlays the environment, and
// validates the result.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	// A .env next to the binary seeds the environment; absence is fine.
	_ = godotenv.Load()

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	c := &ConfigParam{}
	if _, err := toml.Decode(string(content), c); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	applyEnvOverrides(c)

	if err := ValidateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	cfg = c
	return nil
}

var isTest = false

// IsTest reports whether the process runs under TestInit.
func IsTest() bool {
	return isTest
}

// SetTestMode toggles test mode.
func SetTestMode(test bool) {
	isTest = test
}

// TestInit loads the repo-root config for tests and forces the in-memory
// store so tests never need a database.
func TestInit() {
	isTest = true
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	projectRoot := wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}
	if err := LoadConfig(filepath.Join(projectRoot, "tradegatesrv.conf")); err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}
	cfg.DB.Driver = DBDriverMemory
}
