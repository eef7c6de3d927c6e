package internal

import (
	"io"

	"github.com/starford/sitewright/internal/rebuild"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator rebuild.Generator
	out       io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator replaces the configured text generation client.
func WithGenerator(g rebuild.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}

// WithOutput sets where one-shot commands print their results.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
