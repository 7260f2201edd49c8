// Package config loads the server configuration from YAML with environment
// variable expansion and `env` tag overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Log formats. FormatAuto picks text on a terminal and JSON otherwise.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the full server configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Auth   AuthConfig   `yaml:"auth"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Audit  AuditConfig  `yaml:"audit"`
}

// APIConfig configures the Devopness API client.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" env:"DEVOPNESS_API_URL"`
	WebURL     string        `yaml:"web_url" env:"DEVOPNESS_WEB_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"DEVOPNESS_API_TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"DEVOPNESS_API_MAX_RETRIES"`
	Debug      bool          `yaml:"debug" env:"DEVOPNESS_DEBUG"`
}

// AuthConfig holds the account the server logs in with.
type AuthConfig struct {
	Email    string `yaml:"email" env:"DEVOPNESS_USER_EMAIL"`
	Password string `yaml:"password" env:"DEVOPNESS_USER_PASSWORD"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name             string        `yaml:"name"`
	Version          string        `yaml:"version"`
	Transport        string        `yaml:"transport" env:"OPSY_TRANSPORT"`
	Addr             string        `yaml:"addr" env:"OPSY_ADDR"`
	AuthToken        string        `yaml:"auth_token" env:"OPSY_AUTH_TOKEN"`
	OperationTimeout time.Duration `yaml:"operation_timeout" env:"OPSY_OPERATION_TIMEOUT"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"OPSY_LOG_LEVEL"`
	Format string `yaml:"format" env:"OPSY_LOG_FORMAT"`
}

// AuditConfig configures the operation journal. An empty path disables it.
type AuditConfig struct {
	Path string `yaml:"path" env:"OPSY_AUDIT_PATH"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://api.devopness.com",
			WebURL:     "https://app.devopness.com",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Name:      "devopness",
			Version:   "dev",
			Transport: TransportStdio,
			Addr:      ":8000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatAuto,
		},
	}
}

// Load reads the YAML file at path over Default(), then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default() with environment overrides
// when path is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}
	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, errors.New("api.max_retries must not be negative"))
	}
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Addr == "" {
			errs = append(errs, errors.New("server.addr is required for the http transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("server.transport %q must be %s or %s", c.Server.Transport, TransportStdio, TransportHTTP))
	}
	if c.Server.OperationTimeout < 0 {
		errs = append(errs, errors.New("server.operation_timeout must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case FormatAuto, FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be auto, text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level (debug, info, warn, error).
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return level, nil
}

var durationType = reflect.TypeFor[time.Duration]()

// applyEnvOverrides sets struct fields from the non-empty environment variables
// named by their `env` tags, recursing into nested structs.
func applyEnvOverrides(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	t := val.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fieldVal := val.Field(i)

		if fieldVal.Kind() == reflect.Struct {
			if err := applyEnvOverrides(fieldVal.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		envTag := field.Tag.Get("env")
		if envTag == "" || !fieldVal.CanSet() {
			continue
		}
		envVal := os.Getenv(envTag)
		if envVal == "" {
			continue
		}

		switch {
		case fieldVal.Type() == durationType:
			d, err := time.ParseDuration(envVal)
			if err != nil {
				return fmt.Errorf("env %s: %w", envTag, err)
			}
			fieldVal.SetInt(int64(d))
		case fieldVal.Kind() == reflect.String:
			fieldVal.SetString(envVal)
		case fieldVal.Kind() == reflect.Int:
			var n int64
			if _, err := fmt.Sscanf(envVal, "%d", &n); err != nil {
				return fmt.Errorf("env %s: %q is not an integer", envTag, envVal)
			}
			fieldVal.SetInt(n)
		case fieldVal.Kind() == reflect.Bool:
			fieldVal.SetBool(strings.EqualFold(envVal, "true") || envVal == "1")
		}
	}
	return nil
}
