package types

import (
	"context"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/config"
)

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version  string
	Logger   *zap.Logger
	Settings *config.Settings
	// Ctx is cancelled on interrupt
	Ctx context.Context
}

// VersionOrDefault returns the version, tolerating a nil context
func (a *AppContext) VersionOrDefault() string {
	if a == nil || a.Version == "" {
		return DefaultVersion
	}
	return a.Version
}

// Context returns the run context, tolerating a nil AppContext
func (a *AppContext) Context() context.Context {
	if a == nil || a.Ctx == nil {
		return context.Background()
	}
	return a.Ctx
}

// Log returns the logger, tolerating a nil AppContext
func (a *AppContext) Log() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Config returns the loaded settings or the defaults
func (a *AppContext) Config() *config.Settings {
	if a == nil || a.Settings == nil {
		return config.Default()
	}
	return a.Settings
}
