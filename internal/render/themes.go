package render

import (
	"slices"
	"strings"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DefaultTheme = ThemeDark
)

// Theme bundles everything that changes with the color scheme.
type Theme struct {
	Name         string
	CodeStyle    string // chroma style for fenced code
	GlamourStyle string // glamour style for terminal preview
	CSS          string // stylesheet for standalone export
}

var themes = map[string]Theme{
	ThemeDark: {
		Name:         ThemeDark,
		CodeStyle:    "monokai",
		GlamourStyle: "dark",
		CSS: baseCSS(cssColors{
			background: "#1e1e1e",
			text:       "#d4d4d4",
			heading:    "#ffffff",
			border:     "#404040",
			code:       "#2d2d30",
			quote:      "#b3b3b3",
		}),
	},
	ThemeLight: {
		Name:         ThemeLight,
		CodeStyle:    "github",
		GlamourStyle: "light",
		CSS: baseCSS(cssColors{
			background: "#ffffff",
			text:       "#333333",
			heading:    "#000000",
			border:     "#e0e0e0",
			code:       "#f8f8f8",
			quote:      "#666666",
		}),
	},
}

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(name)]
	return t, ok
}

// AvailableThemes returns the registered theme names, sorted.
func AvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type cssColors struct {
	background, text, heading, border, code, quote string
}

func baseCSS(c cssColors) string {
	r := strings.NewReplacer(
		"$bg", c.background,
		"$text", c.text,
		"$heading", c.heading,
		"$border", c.border,
		"$code", c.code,
		"$quote", c.quote,
	)
	return r.Replace(`
body {
    background-color: $bg;
    color: $text;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 2rem;
}
h1, h2, h3, h4, h5, h6 { color: $heading; margin-top: 2rem; margin-bottom: 1rem; }
h1 { border-bottom: 2px solid $border; padding-bottom: 0.5rem; }
h2 { border-bottom: 1px solid $border; padding-bottom: 0.3rem; }
code {
    background-color: $code;
    padding: 0.2em 0.4em;
    border-radius: 3px;
    font-family: 'Consolas', 'Monaco', monospace;
}
pre { background-color: $code; padding: 1rem; border-radius: 5px; overflow-x: auto; }
pre code { padding: 0; background: none; }
blockquote { border-left: 4px solid #007acc; margin: 0; padding-left: 1rem; color: $quote; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid $border; padding: 0.5rem; text-align: left; }
th { background-color: $code; font-weight: bold; }
a { color: #007acc; text-decoration: none; }
a:hover { text-decoration: underline; }
`)
}
