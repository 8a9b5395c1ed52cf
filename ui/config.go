package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	ShowLineNumbers bool
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool
	TOCMaxLevel     int

	// File shown by the pager. When empty, Content is shown instead and
	// live reload is off.
	Path    string
	Content string

	// Minimum time between two reloads triggered by file events.
	ReloadInterval time.Duration `env:"TINO_RELOAD_INTERVAL" envDefault:"250ms"`

	// For debugging the UI
	GlamourEnabled bool `env:"TINO_ENABLE_GLAMOUR" envDefault:"true"`
}
