package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/site"
)

var httpURL = regexp.MustCompile(`^https?://[^\s/$.?#][^\s]*$`)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Site      SiteConfig        `yaml:"site"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Generator GeneratorConfig   `yaml:"generator"`
	Photos    PhotosConfig      `yaml:"photos"`
	Images    ImagesConfig      `yaml:"images"`
	History   HistoryConfig     `yaml:"history"`
	Assets    AssetsConfig      `yaml:"assets"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Site, &c.SQLite, &c.Auth, &c.Generator, &c.Photos, &c.Images, &c.History, &c.Assets,
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
	// ProgressThrottle is the minimum interval between progress events of
	// the same phase on the SSE stream.
	ProgressThrottle time.Duration `yaml:"progress_throttle"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ProgressThrottle, validation.Min(time.Duration(0))),
	)
}

// SiteConfig locates the site directory holding site.json and assets/.
type SiteConfig struct {
	Path string `yaml:"path"`
	// Watch enables reloading site.json on external edits.
	Watch bool `yaml:"watch"`
}

// ConfigPath returns the path of site.json.
func (c *SiteConfig) ConfigPath() string {
	return filepath.Join(c.Path, site.ConfigFile)
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
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
	// Normalise empty mode to "disabled".
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

// GeneratorConfig configures the text generation endpoint. An empty
// endpoint makes every rebuild fail with a generation error.
type GeneratorConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Validate validates the generator configuration.
func (c *GeneratorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Match(httpURL)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// PhotosConfig configures the stock photo search. Without an access key
// every lookup falls back to a placeholder image.
type PhotosConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"access_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Validate validates the photos configuration.
func (c *PhotosConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Match(httpURL)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// ImagesConfig configures the image generation endpoint.
type ImagesConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Match(httpURL)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

// AssetsConfig bounds concurrent asset resolution.
type AssetsConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(32)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:             8080,
				ProgressThrottle: 250 * time.Millisecond,
			},
		},
		Site: SiteConfig{
			Path:  "./site",
			Watch: true,
		},
		SQLite: SQLiteConfig{
			Path: "./sitewright.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Generator: GeneratorConfig{
			Timeout: 2 * time.Minute,
		},
		Photos: PhotosConfig{
			Endpoint: "https://api.unsplash.com",
			Timeout:  10 * time.Second,
		},
		Images: ImagesConfig{
			Timeout: time.Minute,
		},
		History: HistoryConfig{
			Limit: history.DefaultLimit,
		},
		Assets: AssetsConfig{
			Concurrency: assets.DefaultConcurrency,
		},
	}
}
