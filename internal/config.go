package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/postcraft/internal/richtext"
	"github.com/starford/postcraft/internal/scheduler"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Outbox    OutboxConfig      `yaml:"outbox"`
	Inbox     InboxConfig       `yaml:"inbox"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Post      PostConfig        `yaml:"post"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.SQLite, &c.Auth, &c.Outbox, &c.Inbox, &c.Scheduler, &c.Post,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
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

// OutboxConfig points at the directory published posts are written to.
type OutboxConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the outbox configuration.
func (c *OutboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// InboxConfig controls the drop directory for importing drafts.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// SchedulerConfig controls the background publisher for scheduled drafts.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// Validate validates the scheduler configuration.
func (c *SchedulerConfig) Validate() error {
	if c.Spec == "" {
		c.Spec = scheduler.DefaultSpec
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Spec, validation.When(c.Enabled, validation.By(func(v any) error {
			return scheduler.ValidateSpec(v.(string))
		}))),
	)
}

// PostConfig holds limits applied to outgoing posts.
type PostConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// Validate validates the post configuration.
func (c *PostConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxChars, validation.Required, validation.Min(1), validation.Max(richtext.MaxPostChars)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./data/postcraft.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Outbox: OutboxConfig{
			Path: "./data/outbox",
		},
		Inbox: InboxConfig{
			Path: "./data/inbox",
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Spec:    scheduler.DefaultSpec,
		},
		Post: PostConfig{
			MaxChars: richtext.MaxPostChars,
		},
	}
}
