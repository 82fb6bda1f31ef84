package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	// Embedded zone database so Timezone resolves on minimal images.
	_ "time/tzdata"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Records   RecordsConfig     `yaml:"records"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Analytics AnalyticsConfig   `yaml:"analytics"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Records.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Analytics.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// Timezone is the IANA zone the office works in. Time windows and
	// monthly buckets are evaluated in it.
	Timezone string `yaml:"timezone"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			_, err := time.LoadLocation(c.Timezone)
			return err
		})),
	)
}

// Location resolves Timezone. Call after Validate.
func (c *ApplicationConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RecordsConfig holds the path to the YAML records directory.
type RecordsConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the records configuration.
func (c *RecordsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// AnalyticsConfig tunes the dashboard defaults.
type AnalyticsConfig struct {
	// RankingWindowDays narrows top-N rankings to the most recent days when
	// a request does not say otherwise. 0 ranks the whole filtered set.
	RankingWindowDays int `yaml:"ranking_window_days"`
	TopN              int `yaml:"top_n"`
}

// Validate validates the analytics configuration.
func (c *AnalyticsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RankingWindowDays, validation.Min(0), validation.Max(3660)),
		validation.Field(&c.TopN, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig holds SSE settings.
type EventsConfig struct {
	RefreshThrottle time.Duration `yaml:"refresh_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	if c.RefreshThrottle < 0 {
		return errors.New("events: refresh_throttle must not be negative")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Timezone: "Asia/Manila",
		},
		Records: RecordsConfig{
			Dir: "./records",
		},
		SQLite: SQLiteConfig{
			Path: "./bantay.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Analytics: AnalyticsConfig{
			TopN: 5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Events: EventsConfig{
			RefreshThrottle: 2 * time.Second,
		},
	}
}
