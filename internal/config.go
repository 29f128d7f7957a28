package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Auth     AuthConfig        `yaml:"auth"`
	Business BusinessConfig    `yaml:"business"`
	Uploads  UploadsConfig     `yaml:"uploads"`
	SMTP     SMTPConfig        `yaml:"smtp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Business.Validate(); err != nil {
		return err
	}
	if err := c.Uploads.Validate(); err != nil {
		return err
	}
	return c.SMTP.Validate()
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

// StoreConfig selects and configures the persistence backend.
//
// Mode is fixed for the process lifetime:
//   - "local" (default): flat-file JSON store at DataFile.
//   - "remote": managed MongoDB database; a failed remote init falls back
//     to local mode with a warning rather than refusing to start.
type StoreConfig struct {
	Mode     string      `yaml:"mode"`
	DataFile string      `yaml:"data_file"`
	Mongo    MongoConfig `yaml:"mongo"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = store.ModeLocal
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(store.ModeLocal, store.ModeRemote)),
		validation.Field(&c.DataFile, validation.Required),
	); err != nil {
		return err
	}
	if c.Mode == store.ModeRemote {
		return c.Mongo.Validate()
	}
	return nil
}

// Options maps the config to store factory options.
func (c *StoreConfig) Options() store.Options {
	return store.Options{
		Mode:          c.Mode,
		DataFile:      c.DataFile,
		MongoURI:      c.Mongo.URI,
		MongoDatabase: c.Mongo.Database,
	}
}

// MongoConfig holds the remote document-store connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Validate validates the Mongo configuration.
func (c *MongoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

// AuthConfig holds admin authentication configuration.
//
// Mode controls how the admin surface is protected:
//   - "disabled" (default): no authentication, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty, and
//     AdminEmail/AdminPassword gate the login endpoint that hands the
//     token out.
type AuthConfig struct {
	Mode          string `yaml:"mode"`
	Token         string `yaml:"token"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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

// BusinessConfig holds dealership identity used for SEO, lead emails, and
// analytics city labelling.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	City     string `yaml:"city"`
	Address  string `yaml:"address"`
	WhatsApp string `yaml:"whatsapp"`
	BaseURL  string `yaml:"base_url"`
}

// Validate validates the business configuration.
func (c *BusinessConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
	)
}

// UploadsConfig holds the image upload pipeline settings.
type UploadsConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.MaxBytes, validation.Min(int64(1))),
	)
}

// SMTPConfig holds lead-notification mail settings. Leaving Host empty
// disables notifications; the remaining fields are required once set.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Password string `yaml:"password"`
	NotifyTo string `yaml:"notify_to"`
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.From, validation.Required, is.Email),
		validation.Field(&c.NotifyTo, validation.Required, is.Email),
	)
}

// Enabled reports whether lead notifications are configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
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
		Store: StoreConfig{
			Mode:     store.ModeLocal,
			DataFile: "./data/seed.json",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Business: BusinessConfig{
			Name:    "ASAP Food Trailer",
			City:    "Houston",
			BaseURL: "https://asapfoodtrailer.com",
		},
		Uploads: UploadsConfig{
			Dir:      "./uploads",
			MaxBytes: 5 << 20,
		},
		SMTP: SMTPConfig{
			Port: 465,
		},
	}
}
