// Package config loads courier client configuration from YAML files,
// environment variables, and in-process defaults, in that priority order
// (environment highest).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-courier/session"
)

// EnvPrefix namespaces the environment variables read by Load.
// COURIER_CLIENT_TIMEOUT_REQUEST maps to client.timeout.request.
const EnvPrefix = "COURIER_"

// Config is the root configuration document.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Client ClientConfig `koanf:"client"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty"`
}

// ClientConfig mirrors session.Config for file-based setup.
type ClientConfig struct {
	Host      string        `koanf:"host" validate:"omitempty,url"`
	Timeout   TimeoutConfig `koanf:"timeout"`
	TLS       TLSConfig     `koanf:"tls"`
	Retry     RetryConfig   `koanf:"retry"`
	Category  string        `koanf:"category"`
	LogPrefix string        `koanf:"logprefix"`
	Verbose   bool          `koanf:"verbose"`

	// RaiseForStatus left unset keeps the session default of true.
	RaiseForStatus *bool `koanf:"raiseforstatus"`

	Headers   map[string]string `koanf:"headers"`
	Auth      AuthConfig        `koanf:"auth"`
	UserAgent UserAgentConfig   `koanf:"useragent"`

	TraceServiceName string `koanf:"traceservicename"`
}

// TimeoutConfig bounds request execution and connection establishment.
type TimeoutConfig struct {
	Request time.Duration `koanf:"request" validate:"min=0"`
	Connect time.Duration `koanf:"connect" validate:"min=0"`
}

// TLSConfig controls certificate verification.
type TLSConfig struct {
	InsecureSkipVerify bool   `koanf:"insecureskipverify"`
	CABundle           string `koanf:"cabundle"`
}

// RetryConfig controls the retry budget.
type RetryConfig struct {
	Max int `koanf:"max" validate:"min=0"`

	// RetriableClientErrors lists extra 4xx codes to retry on top of 408.
	RetriableClientErrors []int `koanf:"retriableclienterrors" validate:"dive,min=400,max=499"`
}

// AuthConfig holds default basic-auth credentials.
type AuthConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// UserAgentConfig sets the user-agent either verbatim (Raw) or assembled
// from components.
type UserAgentConfig struct {
	Raw          string `koanf:"raw"`
	ServiceName  string `koanf:"servicename"`
	Version      string `koanf:"version"`
	Organization string `koanf:"organization"`
	Environment  string `koanf:"environment"`
	SysInfo      string `koanf:"sysinfo"`
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The named YAML file, when path is non-empty
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return finish(k)
}

// LoadBytes parses an in-memory YAML document over the defaults. It skips
// the environment, which keeps test fixtures hermetic.
func LoadBytes(doc []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(doc), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"log.level":  "info",
		"log.pretty": false,

		"client.timeout.request": "10s",
		"client.timeout.connect": "0s",
		"client.retry.max":       0,
		"client.logprefix":       session.DefaultLogPrefix,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// SessionConfig converts the file-level client section into the runtime
// configuration consumed by session.New.
func (c *ClientConfig) SessionConfig() *session.Config {
	cfg := &session.Config{
		Host:                  c.Host,
		Timeout:               c.Timeout.Request,
		ConnectTimeout:        c.Timeout.Connect,
		InsecureSkipVerify:    c.TLS.InsecureSkipVerify,
		CABundle:              c.TLS.CABundle,
		MaxRetries:            c.Retry.Max,
		VerboseLogging:        c.Verbose,
		Category:              c.Category,
		RaiseForStatus:        c.RaiseForStatus,
		LogPrefix:             c.LogPrefix,
		Headers:               c.Headers,
		UserAgent:             c.UserAgent.Raw,
		RetriableClientErrors: c.Retry.RetriableClientErrors,
		TraceServiceName:      c.TraceServiceName,
	}

	if c.Auth.Username != "" || c.Auth.Password != "" {
		cfg.Auth = &session.BasicAuth{
			Username: c.Auth.Username,
			Password: c.Auth.Password,
		}
	}
	if c.UserAgent.Raw == "" && c.UserAgent.ServiceName != "" {
		cfg.UserAgentComponents = &session.UserAgentComponents{
			ServiceName:  c.UserAgent.ServiceName,
			Version:      c.UserAgent.Version,
			Organization: c.UserAgent.Organization,
			Environment:  c.UserAgent.Environment,
			SysInfo:      c.UserAgent.SysInfo,
		}
	}
	return cfg
}
