package internal

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	registry  *prometheus.Registry
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *application) {
		a.registry = reg
	}
}

// WithLogOutput redirects the JSON log stream. The MCP command uses it to
// keep stdout free for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
