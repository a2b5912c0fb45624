// Package app provides the application context and dependency wiring for
// the registryd CLI. It centralizes configuration, logging, and store
// lifecycle so commands stay thin.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/playerregistry/internal/config"
	"github.com/agentstation/playerregistry/internal/storage/sqlite"
	"github.com/agentstation/playerregistry/pkg/errors"
)

// App represents the registryd application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *config.Config

	// Logger
	logger *zerolog.Logger

	// Store (lazy-initialized, singleton)
	mu    sync.Mutex
	store *sqlite.Store
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, errors.WrapResource(err, "load", "config", "")
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Store returns the registry store, opening it lazily on first use.
func (a *App) Store() (*sqlite.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}

	store, err := sqlite.Open(a.config.DatabasePath)
	if err != nil {
		return nil, errors.WrapResource(err, "open", "store", a.config.DatabasePath)
	}
	a.store = store
	return store, nil
}

// Close releases the store if it was opened.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close store")
		}
		a.store = nil
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
