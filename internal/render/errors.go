package render

import "errors"

var (
	// ErrConversion wraps failures of the markdown to HTML engine.
	ErrConversion = errors.New("markdown conversion failed")

	// ErrUnknownTheme is returned for a theme that is not registered.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrExport wraps failures writing an exported document.
	ErrExport = errors.New("export failed")
)
