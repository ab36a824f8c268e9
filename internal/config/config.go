// Package config loads and validates application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fetch modes supported by the fetch layer.
const (
	FetchModeHTTP     = "http"
	FetchModeHeadless = "headless"
)

// Notification transports supported by the notify layer.
const (
	NotifyTransportEmail  = "email"
	NotifyTransportPubSub = "pubsub"
)

// State backends supported by the state layer.
const (
	StateBackendFile     = "file"
	StateBackendMemory   = "memory"
	StateBackendPostgres = "postgres"
	StateBackendGCS      = "gcs"
)

// Config is the root configuration for the application.
type Config struct {
	Monitor MonitorConfig `mapstructure:"monitor"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	State   StateConfig   `mapstructure:"state"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Server  ServerConfig  `mapstructure:"server"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MonitorConfig describes the page being watched and the match to fire on.
type MonitorConfig struct {
	URL       string `mapstructure:"url"`
	Year      string `mapstructure:"year"`
	Keyword   string `mapstructure:"keyword"`
	Recipient string `mapstructure:"recipient"`
	Subject   string `mapstructure:"subject"`
}

// FetchConfig selects and tunes the page fetcher.
type FetchConfig struct {
	Mode      string        `mapstructure:"mode"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// StateConfig selects and tunes the notification state store.
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	Name    string `mapstructure:"name"`
	Bucket  string `mapstructure:"bucket"`
	Object  string `mapstructure:"object"`
}

// NotifyConfig selects the alert transport.
type NotifyConfig struct {
	Transport string `mapstructure:"transport"`
}

// SMTPConfig carries credentials for the email notifier.
type SMTPConfig struct {
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// PubSubConfig carries settings for the Pub/Sub notifier.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig tunes the status HTTP server used in watch mode.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// WatchConfig tunes the periodic polling loop.
type WatchConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	ExitWhenDone bool          `mapstructure:"exit_when_done"`
}

// LoggingConfig tunes the logger.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from the given file path, applying defaults
// and PUBWATCH_* environment overrides. Path may be empty, in which case
// pubwatch.yaml is searched for in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PUBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pubwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("monitor.subject", "Publication alert")
	v.SetDefault("fetch.mode", FetchModeHTTP)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("state.backend", StateBackendFile)
	v.SetDefault("state.path", "state.json")
	v.SetDefault("state.name", "default")
	v.SetDefault("state.object", "state.json")
	v.SetDefault("notify.transport", NotifyTransportEmail)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("server.port", 8080)
	v.SetDefault("watch.interval", 6*time.Hour)
	v.SetDefault("watch.exit_when_done", false)
	v.SetDefault("logging.development", false)
}

// Validate checks that required fields are present and enum fields carry
// known values.
func (c *Config) Validate() error {
	if c.Monitor.URL == "" {
		return fmt.Errorf("monitor.url is required")
	}
	if c.Monitor.Year == "" {
		return fmt.Errorf("monitor.year is required")
	}
	if c.Monitor.Keyword == "" {
		return fmt.Errorf("monitor.keyword is required")
	}

	switch c.Fetch.Mode {
	case FetchModeHTTP, FetchModeHeadless:
	default:
		return fmt.Errorf("fetch.mode %q is not one of %q, %q", c.Fetch.Mode, FetchModeHTTP, FetchModeHeadless)
	}

	switch c.State.Backend {
	case StateBackendFile:
		if c.State.Path == "" {
			return fmt.Errorf("state.path is required for the file backend")
		}
	case StateBackendMemory:
	case StateBackendPostgres:
		if c.State.DSN == "" {
			return fmt.Errorf("state.dsn is required for the postgres backend")
		}
	case StateBackendGCS:
		if c.State.Bucket == "" {
			return fmt.Errorf("state.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("state.backend %q is not one of %q, %q, %q, %q",
			c.State.Backend, StateBackendFile, StateBackendMemory, StateBackendPostgres, StateBackendGCS)
	}

	switch c.Notify.Transport {
	case NotifyTransportEmail:
		if c.SMTP.Server == "" {
			return fmt.Errorf("smtp.server is required for the email transport")
		}
	case NotifyTransportPubSub:
		if c.PubSub.ProjectID == "" || c.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for the pubsub transport")
		}
	default:
		return fmt.Errorf("notify.transport %q is not one of %q, %q",
			c.Notify.Transport, NotifyTransportEmail, NotifyTransportPubSub)
	}

	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	return nil
}
