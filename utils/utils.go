// Package utils holds small helpers shared by the CLI and the pager.
package utils

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"
)

// MarkdownExtensions lists the file extensions treated as markdown.
var MarkdownExtensions = []string{".md", ".markdown", ".mdown", ".mkd", ".mkdown"}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// IsMarkdownFile returns whether the filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext != "" && slices.Contains(MarkdownExtensions, ext)
}

// SearchPatterns returns MarkdownExtensions as glob patterns.
func SearchPatterns() []string {
	patterns := make([]string, len(MarkdownExtensions))
	for i, ext := range MarkdownExtensions {
		patterns[i] = "*" + ext
	}
	return patterns
}

// ResolveStyle turns the "auto" glamour style into the render theme that
// matches the terminal background. Other styles are returned unchanged.
func ResolveStyle(style string) string {
	if style != styles.AutoStyle {
		return style
	}
	if termenv.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

// ThemeForStyle picks the render theme (dark or light) that goes with a
// glamour style.
func ThemeForStyle(style string) string {
	if ResolveStyle(style) == styles.LightStyle {
		return "light"
	}
	return "dark"
}

// GlamourStyle returns a glamour.TermRendererOption based on the given style:
// a built-in style name, "auto", or a path to a JSON style file.
func GlamourStyle(style string) glamour.TermRendererOption {
	name := ResolveStyle(style)
	if _, ok := styles.DefaultStyles[name]; ok {
		return glamour.WithStandardStyle(name)
	}
	return glamour.WithStylePath(ExpandPath(style))
}
